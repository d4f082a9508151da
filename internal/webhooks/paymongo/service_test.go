package paymongowebhook

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/internal/orders"
	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

type stubOrdersRepo struct {
	order   *models.Order
	payment *models.OrderPayment

	paymentUpdates    []map[string]any
	orderStatusWrites []enums.OrderStatus
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (s *stubOrdersRepo) CreateOrderBooks(ctx context.Context, items []models.OrderBook) error {
	return nil
}

func (s *stubOrdersRepo) CreatePayment(ctx context.Context, payment *models.OrderPayment) (*models.OrderPayment, error) {
	return payment, nil
}

func (s *stubOrdersRepo) CreateShippingAddress(ctx context.Context, address *models.OrderShippingAddress) error {
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.order == nil || s.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter orders.ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, filter orders.ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrdersRepo) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	return false, nil
}

func (s *stubOrdersRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	s.orderStatusWrites = append(s.orderStatusWrites, status)
	if s.order != nil && s.order.ID == id {
		s.order.Status = status
	}
	return nil
}

func (s *stubOrdersRepo) FindPaymentBySessionID(ctx context.Context, sessionID string, forUpdate bool) (*models.OrderPayment, error) {
	if s.payment == nil || s.payment.CheckoutSessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.payment
	return &copied, nil
}

func (s *stubOrdersRepo) FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID, forUpdate bool) (*models.OrderPayment, error) {
	if s.payment == nil || s.payment.OrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.payment
	return &copied, nil
}

func (s *stubOrdersRepo) UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.paymentUpdates = append(s.paymentUpdates, updates)
	if s.payment != nil && s.payment.ID == id {
		if status, ok := updates["status"].(enums.PaymentStatus); ok {
			s.payment.Status = status
		}
	}
	return nil
}

func (s *stubOrdersRepo) FirstOrCreateCourier(ctx context.Context, courier *models.OrderCourier) (*models.OrderCourier, error) {
	return courier, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (s *memoryStore) Get(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[key], nil
}

func (s *memoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *memoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("bh:idempotency:%s:%s", scope, id)
}

func (s *memoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func newTestService(t *testing.T, repo *stubOrdersRepo) (*Service, *memoryStore) {
	t.Helper()

	store := newMemoryStore()
	guard, err := NewIdempotencyGuard(store, time.Minute, "paymongo-webhook")
	require.NoError(t, err)

	svc, err := NewService(ServiceParams{
		OrdersRepo:        repo,
		TransactionRunner: stubTxRunner{},
		Guard:             guard,
		Logger:            logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return svc, store
}

func pendingFixture() *stubOrdersRepo {
	orderID := uuid.New()
	return &stubOrdersRepo{
		order: &models.Order{
			ID:          orderID,
			UserID:      uuid.New(),
			OrderNumber: "ORD-TESTTESTTES1",
			Status:      enums.OrderStatusToPay,
			TotalAmount: decimal.NewFromInt(499),
		},
		payment: &models.OrderPayment{
			ID:                uuid.New(),
			OrderID:           orderID,
			CheckoutSessionID: "cs_test_123",
			Status:            enums.PaymentStatusPending,
			Amount:            decimal.NewFromInt(499),
			Currency:          enums.CurrencyPHP,
		},
	}
}

func paidEvent(id string) *Event {
	return &Event{
		ID:                id,
		Type:              EventTypePaymentPaid,
		PaymentReference:  "pay_abc",
		CheckoutSessionID: "cs_test_123",
		PaymentMethod:     "qrph",
	}
}

func failedEvent(id string) *Event {
	return &Event{
		ID:                id,
		Type:              EventTypePaymentFailed,
		CheckoutSessionID: "cs_test_123",
	}
}

func TestHandleEvent_paidAdvancesOrder(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_1")))

	assert.Equal(t, enums.PaymentStatusPaid, repo.payment.Status)
	assert.Equal(t, enums.OrderStatusPreparing, repo.order.Status)
	require.Len(t, repo.paymentUpdates, 1)
	assert.Equal(t, "pay_abc", repo.paymentUpdates[0]["payment_reference"])
}

func TestHandleEvent_duplicateDeliveryIsDropped(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_dup")))
	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_dup")))

	assert.Len(t, repo.paymentUpdates, 1)
	assert.Len(t, repo.orderStatusWrites, 1)
}

func TestHandleEvent_redeliveryAfterPaidIsNoop(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_a")))
	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_b")))

	assert.Len(t, repo.paymentUpdates, 1)
	assert.Equal(t, enums.PaymentStatusPaid, repo.payment.Status)
}

func TestHandleEvent_failedThenPaidEndsPaid(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), failedEvent("evt_f")))
	assert.Equal(t, enums.PaymentStatusFailed, repo.payment.Status)
	assert.Equal(t, enums.OrderStatusToPay, repo.order.Status)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_p")))
	assert.Equal(t, enums.PaymentStatusPaid, repo.payment.Status)
	assert.Equal(t, enums.OrderStatusPreparing, repo.order.Status)
}

func TestHandleEvent_paidThenFailedStaysPaid(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_p")))
	require.NoError(t, svc.HandleEvent(context.Background(), failedEvent("evt_f")))

	assert.Equal(t, enums.PaymentStatusPaid, repo.payment.Status)
	assert.Len(t, repo.paymentUpdates, 1)
}

func TestHandleEvent_paidAfterCancelLeavesBothRowsUntouched(t *testing.T) {
	// Cancellation already forced the payment to failed; a late paid event
	// must not resurrect the order or flip the payment back.
	repo := pendingFixture()
	repo.order.Status = enums.OrderStatusCancelled
	repo.payment.Status = enums.PaymentStatusFailed
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), paidEvent("evt_late")))

	assert.Equal(t, enums.PaymentStatusFailed, repo.payment.Status)
	assert.Equal(t, enums.OrderStatusCancelled, repo.order.Status)
	assert.Empty(t, repo.paymentUpdates)
	assert.Empty(t, repo.orderStatusWrites)
}

func TestHandleEvent_failedLeavesOrderAlone(t *testing.T) {
	repo := pendingFixture()
	svc, _ := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), failedEvent("evt_f")))

	assert.Equal(t, enums.PaymentStatusFailed, repo.payment.Status)
	assert.Equal(t, enums.OrderStatusToPay, repo.order.Status)
	assert.Empty(t, repo.orderStatusWrites)
}

func TestHandleEvent_unknownSessionReleasesMark(t *testing.T) {
	repo := pendingFixture()
	svc, store := newTestService(t, repo)

	event := paidEvent("evt_unknown")
	event.CheckoutSessionID = "cs_never_seen"

	err := svc.HandleEvent(context.Background(), event)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	// The mark must be released so the provider's retry reprocesses the event.
	assert.Empty(t, store.data)
	assert.Empty(t, repo.paymentUpdates)
}

func TestHandleEvent_unknownTypeIgnored(t *testing.T) {
	repo := pendingFixture()
	svc, store := newTestService(t, repo)

	require.NoError(t, svc.HandleEvent(context.Background(), &Event{
		ID:   "evt_other",
		Type: "source.chargeable",
	}))

	assert.Empty(t, repo.paymentUpdates)
	assert.Empty(t, store.data)
}
