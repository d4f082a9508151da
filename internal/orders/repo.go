package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	"github.com/bookhavenph/bookhaven-backend/pkg/pagination"
)

// Repository exposes order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderBooks(ctx context.Context, items []models.OrderBook) error
	CreatePayment(ctx context.Context, payment *models.OrderPayment) (*models.OrderPayment, error)
	CreateShippingAddress(ctx context.Context, address *models.OrderShippingAddress) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, error)
	ListAll(ctx context.Context, filter ListFilter) ([]models.Order, error)
	OrderNumberExists(ctx context.Context, orderNumber string) (bool, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	FindPaymentBySessionID(ctx context.Context, sessionID string, forUpdate bool) (*models.OrderPayment, error)
	FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID, forUpdate bool) (*models.OrderPayment, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FirstOrCreateCourier(ctx context.Context, courier *models.OrderCourier) (*models.OrderCourier, error)
}

// ListFilter narrows order listings.
type ListFilter struct {
	Status *enums.OrderStatus
	Limit  int
	Cursor *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) CreateOrderBooks(ctx context.Context, items []models.OrderBook) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.OrderPayment) (*models.OrderPayment, error) {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return nil, err
	}
	return payment, nil
}

func (r *repository) CreateShippingAddress(ctx context.Context, address *models.OrderShippingAddress) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Books").
		Preload("Payment").
		Preload("ShippingAddress").
		Preload("Courier").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Books").
		Preload("Payment").
		Where("user_id = ?", userID)
	return r.list(query, filter)
}

func (r *repository) ListAll(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Books").
		Preload("Payment").
		Preload("Courier")
	return r.list(query, filter)
}

func (r *repository) list(query *gorm.DB, filter ListFilter) ([]models.Order, error) {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID,
		)
	}

	var orders []models.Order
	err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) OrderNumberExists(ctx context.Context, orderNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_number = ?", orderNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) FindPaymentBySessionID(ctx context.Context, sessionID string, forUpdate bool) (*models.OrderPayment, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payment models.OrderPayment
	err := query.
		Where("checkout_session_id = ?", sessionID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindPaymentByOrderID(ctx context.Context, orderID uuid.UUID, forUpdate bool) (*models.OrderPayment, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var payment models.OrderPayment
	err := query.
		Where("order_id = ?", orderID).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePayment(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderPayment{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FirstOrCreateCourier keeps the original courier assignment when one already
// exists for the order.
func (r *repository) FirstOrCreateCourier(ctx context.Context, courier *models.OrderCourier) (*models.OrderCourier, error) {
	var existing models.OrderCourier
	err := r.db.WithContext(ctx).
		Where("order_id = ?", courier.OrderID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Create(courier).Error; err != nil {
		return nil, err
	}
	return courier, nil
}
