package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
)

// Order is the buyer-facing aggregate. Its status advances through the
// fulfillment lifecycle while the money trail lives on OrderPayment.
type Order struct {
	ID          uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	OrderNumber string            `gorm:"column:order_number;not null;uniqueIndex"`
	Status      enums.OrderStatus `gorm:"column:status;type:text;not null;default:'to_pay'"`
	TotalAmount decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	Books           []OrderBook           `gorm:"foreignKey:OrderID"`
	Payment         *OrderPayment         `gorm:"foreignKey:OrderID"`
	ShippingAddress *OrderShippingAddress `gorm:"foreignKey:OrderID"`
	Courier         *OrderCourier         `gorm:"foreignKey:OrderID"`
}
