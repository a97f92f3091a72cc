package providers

import (
	"context"
	"net/http"

	"github.com/Batussaii/BANT3D/models"
)

// CheckoutSession is a provider-issued payment session.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a verified inbound provider event. TransactionID is only
// set for events that reference a payment.
type WebhookEvent struct {
	Type          string
	TransactionID string
}

// PaymentProvider abstracts a payment gateway behind a single capability
// interface so the checkout and reconciliation flows never touch
// provider-specific wire formats.
type PaymentProvider interface {
	Name() string

	// CreateSession submits an order intent and returns the redirect URL
	// the customer completes the payment on.
	CreateSession(ctx context.Context, intent *models.OrderIntent) (*CheckoutSession, error)

	// VerifyWebhook authenticates an inbound webhook delivery and decodes
	// the event. Unverified deliveries return an error and must be
	// rejected outright.
	VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error)

	// FetchOrder retrieves the completed order referenced by a webhook.
	FetchOrder(ctx context.Context, orderID string) (*models.PaidOrder, error)
}
