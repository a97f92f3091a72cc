package controllers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/providers"
	"github.com/Batussaii/BANT3D/services"
)

// stripeSessionCompleted is the only Stripe event that completes an order.
const stripeSessionCompleted = "checkout.session.completed"

type WebhookController struct {
	stripe     providers.PaymentProvider
	paypal     providers.PaymentProvider
	reconciler services.ReconcileService
	logger     *zap.Logger
}

func NewWebhookController(
	stripe providers.PaymentProvider,
	paypal providers.PaymentProvider,
	reconciler services.ReconcileService,
	logger *zap.Logger,
) *WebhookController {
	return &WebhookController{
		stripe:     stripe,
		paypal:     paypal,
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleStripe processes POST /webhooks/stripe.
func (wc *WebhookController) HandleStripe(c *gin.Context) {
	wc.handle(c, wc.stripe, stripeSessionCompleted)
}

// HandlePayPal processes POST /webhooks/paypal.
func (wc *WebhookController) HandlePayPal(c *gin.Context) {
	wc.handle(c, wc.paypal, providers.EventCaptureCompleted)
}

// handle verifies the delivery, filters on the completion event type,
// fetches the full order and reconciles it. Verification failures are
// rejected outright with no reconciliation side effects.
func (wc *WebhookController) handle(c *gin.Context, provider providers.PaymentProvider, completedType string) {
	if provider == nil {
		c.String(http.StatusInternalServerError, "Pasarela no configurada")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "Webhook error")
		return
	}

	event, err := provider.VerifyWebhook(c.Request.Context(), c.Request.Header, body)
	if err != nil {
		wc.logger.Warn("webhook verification rejected",
			zap.String("provider", provider.Name()),
			zap.String("client_ip", c.ClientIP()),
			zap.Error(err),
		)
		c.String(http.StatusBadRequest, "Webhook no verificado")
		return
	}

	if event.Type != completedType || event.TransactionID == "" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	order, err := provider.FetchOrder(c.Request.Context(), event.TransactionID)
	if err != nil {
		// Dedup has not been touched yet, so a provider redelivery is safe.
		wc.logger.Warn("order fetch failed",
			zap.String("provider", provider.Name()),
			zap.String("transaction_id", event.TransactionID),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "Error webhook")
		return
	}

	if svcErr := wc.reconciler.Reconcile(c.Request.Context(), provider.Name(), order); svcErr != nil {
		c.String(svcErr.StatusCode, svcErr.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
