package providers

import (
	"bytes"
	"context"
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

const (
	paypalLiveBaseURL    = "https://api-m.paypal.com"
	paypalSandboxBaseURL = "https://api-m.sandbox.paypal.com"

	// EventCaptureCompleted is the only PayPal event that completes an order.
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
)

// PayPalProvider implements PaymentProvider against the PayPal Orders v2 API.
// Webhook authenticity is delegated to PayPal's verify-webhook-signature
// endpoint.
type PayPalProvider struct {
	clientID     string
	clientSecret string
	webhookID    string
	baseURL      string
	httpClient   *http.Client
}

// NewPayPalProvider creates a new PayPalProvider. env selects the live or
// sandbox API host.
func NewPayPalProvider(clientID, clientSecret, webhookID, env string) (*PayPalProvider, error) {
	if clientID == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_ID not set")
	}
	if clientSecret == "" {
		return nil, fmt.Errorf("PAYPAL_CLIENT_SECRET not set")
	}
	baseURL := paypalSandboxBaseURL
	if env == "live" {
		baseURL = paypalLiveBaseURL
	}
	return &PayPalProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		webhookID:    webhookID,
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (p *PayPalProvider) Name() string { return "paypal" }

// ---- PayPal API request/response structs ----

type paypalAmount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type paypalItem struct {
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	UnitAmount  paypalAmount `json:"unit_amount"`
	Quantity    string       `json:"quantity"`
}

type paypalPurchaseUnit struct {
	Amount paypalAmount `json:"amount"`
	Items  []paypalItem `json:"items,omitempty"`
}

type paypalOrder struct {
	ID            string               `json:"id"`
	Status        string               `json:"status"`
	PurchaseUnits []paypalPurchaseUnit `json:"purchase_units"`
	Links         []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

type paypalWebhookEvent struct {
	EventType string `json:"event_type"`
	Resource  struct {
		ID                string `json:"id"`
		SupplementaryData struct {
			RelatedIDs struct {
				OrderID string `json:"order_id"`
			} `json:"related_ids"`
		} `json:"supplementary_data"`
	} `json:"resource"`
}

// CreateSession creates a CAPTURE order and returns the approval link.
func (p *PayPalProvider) CreateSession(ctx context.Context, intent *models.OrderIntent) (*CheckoutSession, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal CreateSession: %w", err)
	}

	currency := strings.ToUpper(intent.Currency)
	total := decimal.Zero
	items := make([]paypalItem, 0, len(intent.Items))
	for _, item := range intent.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		items = append(items, paypalItem{
			Name:        item.Name,
			Description: item.Description,
			UnitAmount:  paypalAmount{CurrencyCode: currency, Value: item.UnitPrice.StringFixed(2)},
			Quantity:    strconv.Itoa(item.Quantity),
		})
	}

	body := map[string]interface{}{
		"intent": "CAPTURE",
		"purchase_units": []map[string]interface{}{
			{
				"amount": map[string]interface{}{
					"currency_code": currency,
					"value":         total.StringFixed(2),
					"breakdown": map[string]interface{}{
						"item_total": paypalAmount{CurrencyCode: currency, Value: total.StringFixed(2)},
					},
				},
				"items": items,
			},
		},
		"application_context": map[string]interface{}{
			"brand_name":   "Bant3D",
			"landing_page": "LOGIN",
			"user_action":  "PAY_NOW",
			"return_url":   intent.SuccessURL,
			"cancel_url":   intent.CancelURL,
		},
	}

	var order paypalOrder
	if err := p.doJSON(ctx, http.MethodPost, "/v2/checkout/orders", token, body, &order); err != nil {
		return nil, fmt.Errorf("paypal CreateSession: %w", err)
	}

	for _, link := range order.Links {
		if link.Rel == "approve" && link.Href != "" {
			return &CheckoutSession{ID: order.ID, URL: link.Href}, nil
		}
	}
	return nil, fmt.Errorf("paypal CreateSession: no approval link in response")
}

// VerifyWebhook calls PayPal's verification API with the transmission
// headers. Anything other than an explicit SUCCESS is rejected.
func (p *PayPalProvider) VerifyWebhook(ctx context.Context, headers http.Header, body []byte) (*WebhookEvent, error) {
	if p.webhookID == "" {
		return nil, fmt.Errorf("PAYPAL_WEBHOOK_ID not set")
	}
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal VerifyWebhook: %w", err)
	}

	var event paypalWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}

	payload := map[string]interface{}{
		"auth_algo":         headers.Get("Paypal-Auth-Algo"),
		"cert_url":          headers.Get("Paypal-Cert-Url"),
		"transmission_id":   headers.Get("Paypal-Transmission-Id"),
		"transmission_sig":  headers.Get("Paypal-Transmission-Sig"),
		"transmission_time": headers.Get("Paypal-Transmission-Time"),
		"webhook_id":        p.webhookID,
		"webhook_event":     json.RawMessage(body),
	}

	var result struct {
		VerificationStatus string `json:"verification_status"`
	}
	if err := p.doJSON(ctx, http.MethodPost, "/v1/notifications/verify-webhook-signature", token, payload, &result); err != nil {
		return nil, fmt.Errorf("paypal VerifyWebhook: %w", err)
	}
	if result.VerificationStatus != "SUCCESS" {
		return nil, fmt.Errorf("verification status %q", result.VerificationStatus)
	}

	// Capture events reference the order through supplementary data.
	orderID := event.Resource.SupplementaryData.RelatedIDs.OrderID
	if orderID == "" {
		orderID = event.Resource.ID
	}
	return &WebhookEvent{Type: event.EventType, TransactionID: orderID}, nil
}

// FetchOrder retrieves the full order, flattening items across purchase
// units.
func (p *PayPalProvider) FetchOrder(ctx context.Context, orderID string) (*models.PaidOrder, error) {
	token, err := p.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("paypal FetchOrder: %w", err)
	}

	var order paypalOrder
	if err := p.doJSON(ctx, http.MethodGet, "/v2/checkout/orders/"+url.PathEscape(orderID), token, nil, &order); err != nil {
		return nil, fmt.Errorf("paypal FetchOrder: %w", err)
	}

	paid := &models.PaidOrder{ProviderID: order.ID}
	if len(order.PurchaseUnits) > 0 {
		unit := order.PurchaseUnits[0]
		paid.Currency = unit.Amount.CurrencyCode
		paid.Total = parseAmount(unit.Amount.Value)
	}
	for _, unit := range order.PurchaseUnits {
		for _, item := range unit.Items {
			qty, err := strconv.Atoi(item.Quantity)
			if err != nil || qty <= 0 {
				qty = 1
			}
			name := item.Name
			if name == "" {
				name = "Producto"
			}
			paid.Items = append(paid.Items, models.OrderItem{
				Name:        name,
				Description: item.Description,
				UnitPrice:   parseAmount(item.UnitAmount.Value),
				Quantity:    qty,
			})
		}
	}
	return paid, nil
}

// ---- HTTP helpers ----

func (p *PayPalProvider) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("token request returned status %d", resp.StatusCode)
	}
	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("empty access token")
	}
	return result.AccessToken, nil
}

func (p *PayPalProvider) doJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("paypal returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func parseAmount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}
