package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Batussaii/BANT3D/models"
)

const stripeBaseURL = "https://api.stripe.com"

// stripeSignatureTolerance bounds how old a signed webhook may be.
const stripeSignatureTolerance = 5 * time.Minute

// StripeProvider implements PaymentProvider against the Stripe Checkout
// Sessions API.
type StripeProvider struct {
	secretKey     string
	webhookSecret string
	baseURL       string
	httpClient    *http.Client
}

// NewStripeProvider creates a new StripeProvider.
func NewStripeProvider(secretKey, webhookSecret string) (*StripeProvider, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("STRIPE_SECRET_KEY not set")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("STRIPE_WEBHOOK_SECRET not set")
	}
	return &StripeProvider{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       stripeBaseURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (s *StripeProvider) Name() string { return "stripe" }

// ---- Stripe API response structs ----

type stripeSession struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Currency    string `json:"currency"`
	AmountTotal int64  `json:"amount_total"`
}

type stripeLineItems struct {
	Data []struct {
		Description string `json:"description"`
		Quantity    int    `json:"quantity"`
		Price       struct {
			UnitAmount int64 `json:"unit_amount"`
		} `json:"price"`
	} `json:"data"`
}

type stripeError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateSession creates a Checkout Session and returns its redirect URL.
func (s *StripeProvider) CreateSession(ctx context.Context, intent *models.OrderIntent) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("payment_method_types[0]", "card")
	form.Set("success_url", intent.SuccessURL)
	form.Set("cancel_url", intent.CancelURL)

	currency := strings.ToLower(intent.Currency)
	for i, item := range intent.Items {
		prefix := fmt.Sprintf("line_items[%d]", i)
		form.Set(prefix+"[price_data][currency]", currency)
		form.Set(prefix+"[price_data][product_data][name]", item.Name)
		if item.Description != "" {
			form.Set(prefix+"[price_data][product_data][description]", item.Description)
		}
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(toCents(item.UnitPrice), 10))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	var session stripeSession
	if err := s.doForm(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, fmt.Errorf("stripe CreateSession: %w", err)
	}
	if session.URL == "" {
		return nil, fmt.Errorf("stripe CreateSession: no redirect url in response")
	}
	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

// VerifyWebhook checks the Stripe-Signature header (HMAC-SHA256 over
// "<timestamp>.<payload>") before trusting the event body.
func (s *StripeProvider) VerifyWebhook(_ context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	header := headers.Get("Stripe-Signature")
	if header == "" {
		return nil, fmt.Errorf("missing Stripe-Signature header")
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			timestamp = v
		case "v1":
			signatures = append(signatures, v)
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return nil, fmt.Errorf("malformed Stripe-Signature header")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed signature timestamp")
	}
	if age := time.Since(time.Unix(ts, 0)); age > stripeSignatureTolerance || age < -stripeSignatureTolerance {
		return nil, fmt.Errorf("signature timestamp outside tolerance")
	}

	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	verified := false
	for _, sig := range signatures {
		if hmac.Equal([]byte(expected), []byte(sig)) {
			verified = true
			break
		}
	}
	if !verified {
		return nil, fmt.Errorf("signature mismatch")
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID string `json:"id"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	return &WebhookEvent{Type: event.Type, TransactionID: event.Data.Object.ID}, nil
}

// FetchOrder loads the session and its line items. Stripe webhooks carry a
// thin session reference, so the itemized order needs this follow-up fetch.
func (s *StripeProvider) FetchOrder(ctx context.Context, sessionID string) (*models.PaidOrder, error) {
	var session stripeSession
	if err := s.doGet(ctx, "/v1/checkout/sessions/"+url.PathEscape(sessionID), &session); err != nil {
		return nil, fmt.Errorf("stripe FetchOrder: %w", err)
	}

	var lineItems stripeLineItems
	path := "/v1/checkout/sessions/" + url.PathEscape(sessionID) + "/line_items?limit=100"
	if err := s.doGet(ctx, path, &lineItems); err != nil {
		return nil, fmt.Errorf("stripe FetchOrder line items: %w", err)
	}

	items := make([]models.OrderItem, 0, len(lineItems.Data))
	for _, li := range lineItems.Data {
		name := li.Description
		if name == "" {
			name = "Producto"
		}
		qty := li.Quantity
		if qty <= 0 {
			qty = 1
		}
		items = append(items, models.OrderItem{
			Name:      name,
			UnitPrice: fromCents(li.Price.UnitAmount),
			Quantity:  qty,
		})
	}

	return &models.PaidOrder{
		ProviderID: session.ID,
		Currency:   strings.ToUpper(session.Currency),
		Total:      fromCents(session.AmountTotal),
		Items:      items,
	}, nil
}

// ---- HTTP helpers ----

func (s *StripeProvider) doForm(ctx context.Context, path string, form url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, out)
}

func (s *StripeProvider) doGet(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return err
	}
	return s.do(req, out)
}

func (s *StripeProvider) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+s.secretKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr stripeError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%s", apiErr.Error.Message)
		}
		return fmt.Errorf("stripe returned status %d", resp.StatusCode)
	}
	return json.Unmarshal(data, out)
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
