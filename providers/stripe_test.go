package providers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Batussaii/BANT3D/models"
)

func newTestStripe(t *testing.T, baseURL string) *StripeProvider {
	t.Helper()
	p, err := NewStripeProvider("sk_test_123", "whsec_test")
	assert.NoError(t, err)
	if baseURL != "" {
		p.baseURL = baseURL
	}
	return p
}

func stripeSignature(secret, body string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, body)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeVerifyWebhook_ValidSignature(t *testing.T) {
	p := newTestStripe(t, "")
	body := `{"type":"checkout.session.completed","data":{"object":{"id":"cs_99"}}}`

	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("whsec_test", body, time.Now().Unix()))

	event, err := p.VerifyWebhook(context.Background(), headers, []byte(body))
	assert.NoError(t, err)
	if assert.NotNil(t, event) {
		assert.Equal(t, "checkout.session.completed", event.Type)
		assert.Equal(t, "cs_99", event.TransactionID)
	}
}

func TestStripeVerifyWebhook_WrongSecretRejected(t *testing.T) {
	p := newTestStripe(t, "")
	body := `{"type":"checkout.session.completed"}`

	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("whsec_other", body, time.Now().Unix()))

	_, err := p.VerifyWebhook(context.Background(), headers, []byte(body))
	assert.Error(t, err)
}

func TestStripeVerifyWebhook_TamperedBodyRejected(t *testing.T) {
	p := newTestStripe(t, "")
	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("whsec_test", `{"a":1}`, time.Now().Unix()))

	_, err := p.VerifyWebhook(context.Background(), headers, []byte(`{"a":2}`))
	assert.Error(t, err)
}

func TestStripeVerifyWebhook_StaleTimestampRejected(t *testing.T) {
	p := newTestStripe(t, "")
	body := `{"type":"checkout.session.completed"}`
	stale := time.Now().Add(-time.Hour).Unix()

	headers := http.Header{}
	headers.Set("Stripe-Signature", stripeSignature("whsec_test", body, stale))

	_, err := p.VerifyWebhook(context.Background(), headers, []byte(body))
	assert.Error(t, err)
}

func TestStripeVerifyWebhook_MissingHeaderRejected(t *testing.T) {
	p := newTestStripe(t, "")

	_, err := p.VerifyWebhook(context.Background(), http.Header{}, []byte(`{}`))
	assert.Error(t, err)
}

func TestStripeCreateSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "payment", r.PostForm.Get("mode"))
		assert.Equal(t, "eur", r.PostForm.Get("line_items[0][price_data][currency]"))
		assert.Equal(t, "Maceta (grande)", r.PostForm.Get("line_items[0][price_data][product_data][name]"))
		assert.Equal(t, "2000", r.PostForm.Get("line_items[0][price_data][unit_amount]"))
		assert.Equal(t, "295", r.PostForm.Get("line_items[1][price_data][unit_amount]"))
		assert.Equal(t, "1", r.PostForm.Get("line_items[1][quantity]"))

		fmt.Fprint(w, `{"id":"cs_1","url":"https://checkout.stripe.com/pay/cs_1"}`)
	}))
	defer srv.Close()

	p := newTestStripe(t, srv.URL)
	intent := &models.OrderIntent{
		Items: []models.OrderItem{
			{Name: "Maceta (grande)", Description: "Colores: rojo", UnitPrice: decimal.NewFromInt(20), Quantity: 1},
			{Name: "Envío", Description: "Gastos de envío", UnitPrice: decimal.RequireFromString("2.95"), Quantity: 1},
		},
		Currency:   "EUR",
		SuccessURL: "https://bant3d.example/tienda.html?payment=success",
		CancelURL:  "https://bant3d.example/tienda.html?payment=cancel",
	}

	session, err := p.CreateSession(context.Background(), intent)
	assert.NoError(t, err)
	if assert.NotNil(t, session) {
		assert.Equal(t, "cs_1", session.ID)
		assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", session.URL)
	}
}

func TestStripeCreateSession_APIErrorMessageSurfaced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"Invalid currency: xyz"}}`)
	}))
	defer srv.Close()

	p := newTestStripe(t, srv.URL)
	_, err := p.CreateSession(context.Background(), &models.OrderIntent{
		Items:    []models.OrderItem{{Name: "Maceta", UnitPrice: decimal.NewFromInt(5), Quantity: 1}},
		Currency: "XYZ",
	})

	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Invalid currency: xyz")
	}
}

func TestStripeFetchOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/checkout/sessions/cs_1":
			fmt.Fprint(w, `{"id":"cs_1","currency":"eur","amount_total":2295}`)
		case "/v1/checkout/sessions/cs_1/line_items":
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			fmt.Fprint(w, `{"data":[
				{"description":"Maceta (grande)","quantity":1,"price":{"unit_amount":2000}},
				{"description":"","quantity":0,"price":{"unit_amount":295}}
			]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := newTestStripe(t, srv.URL)
	order, err := p.FetchOrder(context.Background(), "cs_1")
	assert.NoError(t, err)
	if assert.NotNil(t, order) {
		assert.Equal(t, "cs_1", order.ProviderID)
		assert.Equal(t, "EUR", order.Currency)
		assert.Equal(t, "22.95", order.Total.StringFixed(2))
		if assert.Len(t, order.Items, 2) {
			assert.Equal(t, "Maceta (grande)", order.Items[0].Name)
			assert.Equal(t, "20.00", order.Items[0].UnitPrice.StringFixed(2))
			// blank descriptions and zero quantities are defaulted
			assert.Equal(t, "Producto", order.Items[1].Name)
			assert.Equal(t, 1, order.Items[1].Quantity)
		}
	}
}

func TestCentsConversionRoundTrips(t *testing.T) {
	for _, amount := range []string{"0.00", "2.95", "4.95", "14.95", "1999.99"} {
		d := decimal.RequireFromString(amount)
		assert.Equal(t, amount, fromCents(toCents(d)).StringFixed(2), "amount=%s", amount)
	}
	assert.EqualValues(t, 2000, toCents(decimal.RequireFromString("20")))
}
