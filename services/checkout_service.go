package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/models"
	"github.com/Batussaii/BANT3D/providers"
)

// CheckoutService validates a cart and customer, builds a provider-agnostic
// order intent and hands it to the selected payment provider.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, providerName string, req *models.CheckoutRequest) (string, *ServiceError)
}

type checkoutServiceImpl struct {
	providers map[string]providers.PaymentProvider
	currency  string
	baseURL   string
	logger    *zap.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(
	provs map[string]providers.PaymentProvider,
	currency string,
	baseURL string,
	logger *zap.Logger,
) CheckoutService {
	return &checkoutServiceImpl{
		providers: provs,
		currency:  currency,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// InitiateCheckout runs the fail-fast validation chain and, only when it
// passes, submits the order intent to the provider. The cart itself is never
// mutated here; clearing is the caller's job after the redirect.
func (s *checkoutServiceImpl) InitiateCheckout(ctx context.Context, providerName string, req *models.CheckoutRequest) (string, *ServiceError) {
	provider, ok := s.providers[providerName]
	if !ok {
		return "", ErrUnknownProvider
	}

	items := sanitizeItems(req.Items)
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	customer := req.Customer
	customer.Normalize(HomeCountry)
	if !customer.Complete() {
		return "", ErrIncompleteCustomer
	}

	// The minimum-order gate applies to the raw subtotal, pre-discount.
	subtotal := Subtotal(items)
	if customer.Country != HomeCountry && subtotal.LessThan(InternationalMinOrder) {
		return "", ErrBelowMinimumOrder
	}

	coupon, _ := LookupCoupon(req.CouponCode)
	totals := Quote(items, customer.Country, coupon)

	intent := s.buildIntent(items, customer, totals, req)

	session, err := provider.CreateSession(ctx, intent)
	if err != nil {
		s.logger.Error("provider session creation failed",
			zap.String("provider", providerName),
			zap.Error(err),
		)
		return "", NewProviderError(err.Error())
	}

	s.logger.Info("checkout session created",
		zap.String("provider", providerName),
		zap.String("session_id", session.ID),
		zap.String("country", customer.Country),
		zap.String("total", totals.Total.StringFixed(2)),
	)
	return session.URL, nil
}

func (s *checkoutServiceImpl) buildIntent(
	items []models.LineItem,
	customer models.CustomerInfo,
	totals models.Totals,
	req *models.CheckoutRequest,
) *models.OrderIntent {
	orderItems := make([]models.OrderItem, 0, len(items)+1)
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItem{
			Name:        item.DisplayName(),
			Description: item.ColorLabel(),
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	// Computed shipping rides along as its own line item. Free shipping and
	// quoted international shipping add nothing.
	if totals.Shipping.Cost != nil && totals.Shipping.Cost.IsPositive() {
		orderItems = append(orderItems, models.OrderItem{
			Name:        "Envío",
			Description: "Gastos de envío",
			UnitPrice:   *totals.Shipping.Cost,
			Quantity:    1,
		})
	}

	successURL := req.SuccessURL
	if successURL == "" {
		successURL = s.baseURL + "/tienda.html?payment=success"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.baseURL + "/tienda.html?payment=cancel"
	}

	return &models.OrderIntent{
		Items:      orderItems,
		Customer:   customer,
		Currency:   s.currency,
		SuccessURL: successURL,
		CancelURL:  cancelURL,
	}
}

// sanitizeItems drops entries a provider would reject: blank names,
// non-positive prices or quantities.
func sanitizeItems(items []models.LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" || !item.UnitPrice.IsPositive() || item.Quantity <= 0 {
			continue
		}
		out = append(out, item)
	}
	return out
}
