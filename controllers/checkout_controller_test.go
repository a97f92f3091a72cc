package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Batussaii/BANT3D/controllers"
	"github.com/Batussaii/BANT3D/models"
	"github.com/Batussaii/BANT3D/services"
)

// ---- mock checkout service ----

type mockCheckoutSvc struct {
	providerSeen string
	reqSeen      *models.CheckoutRequest
	url          string
	svcErr       *services.ServiceError
}

func (m *mockCheckoutSvc) InitiateCheckout(_ context.Context, provider string, req *models.CheckoutRequest) (string, *services.ServiceError) {
	m.providerSeen = provider
	m.reqSeen = req
	if m.svcErr != nil {
		return "", m.svcErr
	}
	return m.url, nil
}

func checkoutRouter(svc services.CheckoutService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cc := controllers.NewCheckoutController(svc)
	r.POST("/api/checkout/:provider", cc.CreateSession)
	return r
}

// ---- tests ----

func TestCreateSession_Success(t *testing.T) {
	svc := &mockCheckoutSvc{url: "https://pay.example/s"}
	r := checkoutRouter(svc)

	payload := `{"items":[{"product_id":"p1","name":"Maceta","unit_price":"20","quantity":1}],` +
		`"customer":{"name":"Ana","address":"Calle Mayor 1","phone":"600000000","country":"ES"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/stripe", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, "https://pay.example/s", resp["url"])
	assert.Equal(t, "stripe", svc.providerSeen)
	if assert.NotNil(t, svc.reqSeen) {
		assert.Len(t, svc.reqSeen.Items, 1)
	}
}

func TestCreateSession_InvalidJSON(t *testing.T) {
	svc := &mockCheckoutSvc{url: "https://pay.example/s"}
	r := checkoutRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/checkout/stripe", bytes.NewReader([]byte(`{invalid`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.reqSeen, "service must not be called")
}

func TestCreateSession_ServiceErrorMapped(t *testing.T) {
	svc := &mockCheckoutSvc{svcErr: services.ErrBelowMinimumOrder}
	r := checkoutRouter(svc)

	payload := `{"items":[{"product_id":"p1","name":"Maceta","unit_price":"20","quantity":1}],` +
		`"customer":{"name":"Ana","address":"Calle Mayor 1","phone":"600000000","country":"FR"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/checkout/paypal", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, services.ErrBelowMinimumOrder.Message, resp["error"])
}
