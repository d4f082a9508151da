package orders

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

type fakeRepo struct {
	order   *models.Order
	payment *models.OrderPayment
	courier *models.OrderCourier

	courierCreates int
	paymentUpdates []map[string]any
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	return order, nil
}

func (f *fakeRepo) CreateOrderBooks(ctx context.Context, items []models.OrderBook) error { return nil }

func (f *fakeRepo) CreatePayment(ctx context.Context, payment *models.OrderPayment) (*models.OrderPayment, error) {
	return payment, nil
}

func (f *fakeRepo) CreateShippingAddress(ctx context.Context, address *models.OrderShippingAddress) error {
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if f.order == nil || f.order.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.order
	return &copied, nil
}

func (f *fakeRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeRepo) ListAll(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeRepo) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	return false, nil
}

func (f *fakeRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if f.order != nil && f.order.ID == id {
		f.order.Status = status
	}
	return nil
}

func (f *fakeRepo) FindPaymentBySessionID(ctx context.Context, sessionID string, forUpdate bool) (*models.OrderPayment, error) {
	if f.payment == nil || f.payment.CheckoutSessionID != sessionID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakeRepo) FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID, forUpdate bool) (*models.OrderPayment, error) {
	if f.payment == nil || f.payment.OrderID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *f.payment
	return &copied, nil
}

func (f *fakeRepo) UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	f.paymentUpdates = append(f.paymentUpdates, updates)
	if f.payment != nil && f.payment.ID == id {
		if status, ok := updates["status"].(enums.PaymentStatus); ok {
			f.payment.Status = status
		}
	}
	return nil
}

func (f *fakeRepo) FirstOrCreateCourier(ctx context.Context, courier *models.OrderCourier) (*models.OrderCourier, error) {
	if f.courier != nil {
		return f.courier, nil
	}
	f.courierCreates++
	f.courier = courier
	return courier, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeExpirer struct {
	expired []string
	err     error
}

func (f *fakeExpirer) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	f.expired = append(f.expired, sessionID)
	return f.err
}

func newFakeService(t *testing.T, repo *fakeRepo, expirer SessionExpirer) Service {
	t.Helper()

	svc, err := NewService(repo, fakeTxRunner{}, expirer, logger.New(logger.Options{ServiceName: "test", Output: io.Discard}))
	require.NoError(t, err)
	return svc
}

func unpaidOrderFixture() *fakeRepo {
	orderID := uuid.New()
	return &fakeRepo{
		order: &models.Order{
			ID:          orderID,
			UserID:      uuid.New(),
			OrderNumber: "ORD-SVCTESTSVC01",
			Status:      enums.OrderStatusToPay,
			TotalAmount: decimal.NewFromInt(499),
		},
		payment: &models.OrderPayment{
			ID:                uuid.New(),
			OrderID:           orderID,
			CheckoutSessionID: "cs_cancel_me",
			Status:            enums.PaymentStatusPending,
			Amount:            decimal.NewFromInt(499),
			Currency:          enums.CurrencyPHP,
		},
	}
}

func errCode(t *testing.T, err error) pkgerrors.Code {
	t.Helper()

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	return typed.Code()
}

func TestCancel_unpaidOrder(t *testing.T) {
	repo := unpaidOrderFixture()
	expirer := &fakeExpirer{}
	svc := newFakeService(t, repo, expirer)

	require.NoError(t, svc.Cancel(context.Background(), repo.order.UserID, repo.order.ID))

	assert.Equal(t, enums.OrderStatusCancelled, repo.order.Status)
	assert.Equal(t, enums.PaymentStatusFailed, repo.payment.Status)
	assert.Equal(t, []string{"cs_cancel_me"}, expirer.expired)
}

func TestCancel_expirerFailureIsBestEffort(t *testing.T) {
	repo := unpaidOrderFixture()
	expirer := &fakeExpirer{err: pkgerrors.New(pkgerrors.CodeDependency, "provider down")}
	svc := newFakeService(t, repo, expirer)

	require.NoError(t, svc.Cancel(context.Background(), repo.order.UserID, repo.order.ID))
	assert.Equal(t, enums.OrderStatusCancelled, repo.order.Status)
}

func TestCancel_paidOrderConflicts(t *testing.T) {
	repo := unpaidOrderFixture()
	repo.order.Status = enums.OrderStatusPreparing
	svc := newFakeService(t, repo, nil)

	err := svc.Cancel(context.Background(), repo.order.UserID, repo.order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, errCode(t, err))
	assert.Equal(t, enums.OrderStatusPreparing, repo.order.Status)
	assert.Empty(t, repo.paymentUpdates)
}

func TestCancel_foreignOrderHidden(t *testing.T) {
	repo := unpaidOrderFixture()
	svc := newFakeService(t, repo, nil)

	err := svc.Cancel(context.Background(), uuid.New(), repo.order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, errCode(t, err))
	assert.Equal(t, enums.OrderStatusToPay, repo.order.Status)
}

func TestGetMine_foreignOrderHidden(t *testing.T) {
	repo := unpaidOrderFixture()
	svc := newFakeService(t, repo, nil)

	_, err := svc.GetMine(context.Background(), uuid.New(), repo.order.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, errCode(t, err))
}

func TestAdminUpdateStatus_shippingRequiresCourier(t *testing.T) {
	repo := unpaidOrderFixture()
	repo.order.Status = enums.OrderStatusPreparing
	svc := newFakeService(t, repo, nil)

	err := svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusShipping,
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, errCode(t, err))
	assert.Equal(t, enums.OrderStatusPreparing, repo.order.Status)
}

func TestAdminUpdateStatus_preparingToShipping(t *testing.T) {
	repo := unpaidOrderFixture()
	repo.order.Status = enums.OrderStatusPreparing
	svc := newFakeService(t, repo, nil)

	require.NoError(t, svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID:        repo.order.ID,
		Status:         enums.OrderStatusShipping,
		CourierName:    "LBC",
		TrackingNumber: "LBC-001",
	}))

	assert.Equal(t, enums.OrderStatusShipping, repo.order.Status)
	require.NotNil(t, repo.courier)
	assert.Equal(t, "LBC", repo.courier.CourierName)
	assert.Equal(t, 1, repo.courierCreates)
}

func TestAdminUpdateStatus_repeatShippingKeepsCourier(t *testing.T) {
	repo := unpaidOrderFixture()
	repo.order.Status = enums.OrderStatusPreparing
	svc := newFakeService(t, repo, nil)

	require.NoError(t, svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID:        repo.order.ID,
		Status:         enums.OrderStatusShipping,
		CourierName:    "LBC",
		TrackingNumber: "LBC-001",
	}))

	// Same-status repeat is a no-op and must not reassign the courier.
	require.NoError(t, svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID:        repo.order.ID,
		Status:         enums.OrderStatusShipping,
		CourierName:    "JRS",
		TrackingNumber: "JRS-999",
	}))

	assert.Equal(t, "LBC", repo.courier.CourierName)
	assert.Equal(t, 1, repo.courierCreates)
}

func TestAdminUpdateStatus_shippingToDelivered(t *testing.T) {
	repo := unpaidOrderFixture()
	repo.order.Status = enums.OrderStatusShipping
	svc := newFakeService(t, repo, nil)

	require.NoError(t, svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID: repo.order.ID,
		Status:  enums.OrderStatusDelivered,
	}))
	assert.Equal(t, enums.OrderStatusDelivered, repo.order.Status)
}

func TestAdminUpdateStatus_illegalTransition(t *testing.T) {
	repo := unpaidOrderFixture()
	svc := newFakeService(t, repo, nil)

	err := svc.AdminUpdateStatus(context.Background(), AdminStatusInput{
		OrderID:        repo.order.ID,
		Status:         enums.OrderStatusShipping,
		CourierName:    "LBC",
		TrackingNumber: "LBC-001",
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, errCode(t, err))
	assert.Equal(t, enums.OrderStatusToPay, repo.order.Status)
}
