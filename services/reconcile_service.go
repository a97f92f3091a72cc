package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/database"
	"github.com/Batussaii/BANT3D/models"
	"github.com/Batussaii/BANT3D/sender"
)

// ReconcileService turns verified payment-completion events into exactly one
// order notification per provider transaction id.
type ReconcileService interface {
	Reconcile(ctx context.Context, source string, order *models.PaidOrder) *ServiceError
}

type reconcileServiceImpl struct {
	store    database.ProcessedPaymentStore
	mailer   sender.EmailSender
	to       string
	currency string
	logger   *zap.Logger
}

// NewReconcileService creates a new ReconcileService.
func NewReconcileService(
	store database.ProcessedPaymentStore,
	mailer sender.EmailSender,
	to string,
	currency string,
	logger *zap.Logger,
) ReconcileService {
	return &reconcileServiceImpl{
		store:    store,
		mailer:   mailer,
		to:       to,
		currency: currency,
		logger:   logger,
	}
}

// Reconcile is idempotent per transaction id: a given id moves from unseen
// to processed exactly once, and only that transition dispatches the order
// email. Webhook redeliveries after that are no-ops.
func (s *reconcileServiceImpl) Reconcile(ctx context.Context, source string, order *models.PaidOrder) *ServiceError {
	if order == nil || len(order.Items) == 0 {
		return nil
	}

	if order.ProviderID != "" {
		first, err := s.store.MarkProcessed(ctx, order.ProviderID)
		if err != nil {
			// Without the dedup guarantee a notification could go out
			// twice; fail before notifying and let the provider retry.
			s.logger.Error("processed-payment store unavailable",
				zap.String("source", source),
				zap.String("provider_id", order.ProviderID),
				zap.Error(err),
			)
			return NewNotificationError("No se pudo registrar el pago.")
		}
		if !first {
			s.logger.Info("duplicate payment event ignored",
				zap.String("source", source),
				zap.String("provider_id", order.ProviderID),
			)
			return nil
		}
	}

	currency := order.Currency
	if currency == "" {
		currency = s.currency
	}
	total := order.Total
	if total.IsZero() {
		for _, item := range order.Items {
			total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	subject := fmt.Sprintf("Pedido pagado (%s)", orDash(source))
	textBody, htmlBody := orderEmailBodies(source, order.ProviderID, currency, total, order.Items)

	if _, err := s.mailer.SendEmail(ctx, s.to, subject, textBody, htmlBody, nil); err != nil {
		// The payment stays marked as processed: a missed notification
		// beats a duplicate one. This needs operator attention.
		s.logger.Error("order notification dispatch failed",
			zap.String("source", source),
			zap.String("provider_id", order.ProviderID),
			zap.Error(err),
		)
		return NewNotificationError("No se pudo enviar la notificación del pedido.")
	}

	s.logger.Info("order notification sent",
		zap.String("source", source),
		zap.String("provider_id", order.ProviderID),
		zap.String("total", formatMoney(total, currency)),
	)
	return nil
}

func orderEmailBodies(source, providerID, currency string, total decimal.Decimal, items []models.OrderItem) (string, string) {
	var text strings.Builder
	fmt.Fprintf(&text, "Metodo: %s\n", orDash(source))
	fmt.Fprintf(&text, "Referencia: %s\n", orDash(providerID))
	fmt.Fprintf(&text, "Moneda: %s\n", orDash(currency))
	fmt.Fprintf(&text, "Total: %s\n\n", formatMoney(total, currency))
	text.WriteString("Productos:\n")
	for _, item := range items {
		text.WriteString("- " + itemLine(item, currency) + "\n")
	}

	var htm strings.Builder
	htm.WriteString("<h2>Pedido pagado</h2>")
	fmt.Fprintf(&htm, "<p><strong>Metodo:</strong> %s</p>", html.EscapeString(orDash(source)))
	fmt.Fprintf(&htm, "<p><strong>Referencia:</strong> %s</p>", html.EscapeString(orDash(providerID)))
	fmt.Fprintf(&htm, "<p><strong>Moneda:</strong> %s</p>", html.EscapeString(orDash(currency)))
	fmt.Fprintf(&htm, "<p><strong>Total:</strong> %s</p>", formatMoney(total, currency))
	htm.WriteString("<h3>Productos</h3><ul>")
	for _, item := range items {
		fmt.Fprintf(&htm, "<li>%s</li>", html.EscapeString(itemLine(item, currency)))
	}
	htm.WriteString("</ul>")

	return strings.TrimSpace(text.String()), htm.String()
}

func itemLine(item models.OrderItem, currency string) string {
	name := item.Name
	if item.Description != "" {
		name += " (" + item.Description + ")"
	}
	return fmt.Sprintf("%s x%d -> %s", name, item.Quantity, formatMoney(item.UnitPrice, currency))
}

func formatMoney(value decimal.Decimal, currency string) string {
	return value.StringFixed(2) + " " + currency
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
