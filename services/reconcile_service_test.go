package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Batussaii/BANT3D/database"
	"github.com/Batussaii/BANT3D/models"
	"github.com/Batussaii/BANT3D/sender"
	"github.com/Batussaii/BANT3D/services"
)

// --- Mock mailer ---

type mockMailer struct {
	mu      sync.Mutex
	sent    []sentMail
	sendErr error
}

type sentMail struct {
	to      string
	subject string
	text    string
	html    string
}

func (m *mockMailer) SendEmail(_ context.Context, to, subject, textBody, htmlBody string, _ []sender.Attachment) (sender.SendResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return sender.SendResult{}, m.sendErr
	}
	m.sent = append(m.sent, sentMail{to, subject, textBody, htmlBody})
	return sender.SendResult{MessageID: "msg-1"}, nil
}

func (m *mockMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- Mock store ---

type failingStore struct{}

func (failingStore) MarkProcessed(_ context.Context, _ string) (bool, error) {
	return false, fmt.Errorf("redis unavailable")
}

// --- Helpers ---

func newTestReconciler(store database.ProcessedPaymentStore, mailer *mockMailer) services.ReconcileService {
	logger, _ := zap.NewDevelopment()
	return services.NewReconcileService(store, mailer, "pedidos@bant3d.example", "EUR", logger)
}

func paidOrder(id string) *models.PaidOrder {
	return &models.PaidOrder{
		ProviderID: id,
		Currency:   "EUR",
		Total:      decimal.RequireFromString("22.95"),
		Items: []models.OrderItem{
			{Name: "Maceta hexagonal (grande)", Description: "Colores: rojo", UnitPrice: decimal.NewFromInt(20), Quantity: 1},
			{Name: "Envío", Description: "Gastos de envío", UnitPrice: decimal.RequireFromString("2.95"), Quantity: 1},
		},
	}
}

// --- Tests ---

func TestReconcile_SendsOneNotification(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestReconciler(database.NewMemoryProcessedStore(), mailer)

	svcErr := svc.Reconcile(context.Background(), "stripe", paidOrder("cs_1"))

	assert.Nil(t, svcErr)
	if assert.Equal(t, 1, mailer.count()) {
		mail := mailer.sent[0]
		assert.Equal(t, "pedidos@bant3d.example", mail.to)
		assert.Equal(t, "Pedido pagado (stripe)", mail.subject)
		assert.Contains(t, mail.text, "Referencia: cs_1")
		assert.Contains(t, mail.text, "Total: 22.95 EUR")
		assert.Contains(t, mail.text, "Maceta hexagonal (grande) (Colores: rojo) x1 -> 20.00 EUR")
		assert.Contains(t, mail.html, "<h2>Pedido pagado</h2>")
	}
}

func TestReconcile_DuplicateDeliveryIsNoOp(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestReconciler(database.NewMemoryProcessedStore(), mailer)

	assert.Nil(t, svc.Reconcile(context.Background(), "paypal", paidOrder("ord_7")))
	assert.Nil(t, svc.Reconcile(context.Background(), "paypal", paidOrder("ord_7")))

	assert.Equal(t, 1, mailer.count())
}

func TestReconcile_ConcurrentDeliveriesNotifyOnce(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestReconciler(database.NewMemoryProcessedStore(), mailer)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Reconcile(context.Background(), "stripe", paidOrder("cs_race"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, mailer.count())
}

func TestReconcile_EmptyItemsIsNoOp(t *testing.T) {
	mailer := &mockMailer{}
	store := database.NewMemoryProcessedStore()
	svc := newTestReconciler(store, mailer)

	order := &models.PaidOrder{ProviderID: "cs_empty", Currency: "EUR"}
	assert.Nil(t, svc.Reconcile(context.Background(), "stripe", order))
	assert.Zero(t, mailer.count())

	// the id was not consumed: a later full delivery still notifies
	assert.Nil(t, svc.Reconcile(context.Background(), "stripe", paidOrder("cs_empty")))
	assert.Equal(t, 1, mailer.count())
}

func TestReconcile_MailFailureKeepsProcessedMark(t *testing.T) {
	mailer := &mockMailer{sendErr: fmt.Errorf("relay down")}
	store := database.NewMemoryProcessedStore()
	svc := newTestReconciler(store, mailer)

	svcErr := svc.Reconcile(context.Background(), "stripe", paidOrder("cs_9"))
	if assert.NotNil(t, svcErr) {
		assert.Equal(t, "notification_error", svcErr.Code)
	}

	// redelivery must not produce a late duplicate notification
	mailer.sendErr = nil
	assert.Nil(t, svc.Reconcile(context.Background(), "stripe", paidOrder("cs_9")))
	assert.Zero(t, mailer.count())
}

func TestReconcile_StoreFailureBlocksNotification(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestReconciler(failingStore{}, mailer)

	svcErr := svc.Reconcile(context.Background(), "paypal", paidOrder("ord_err"))

	assert.NotNil(t, svcErr)
	assert.Zero(t, mailer.count(), "must not notify without the dedup guarantee")
}

func TestReconcile_ZeroTotalComputedFromItems(t *testing.T) {
	mailer := &mockMailer{}
	svc := newTestReconciler(database.NewMemoryProcessedStore(), mailer)

	order := paidOrder("cs_total")
	order.Total = decimal.Zero
	assert.Nil(t, svc.Reconcile(context.Background(), "stripe", order))

	if assert.Equal(t, 1, mailer.count()) {
		assert.Contains(t, mailer.sent[0].text, "Total: 22.95 EUR")
	}
}
