package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderCourier holds the shipment assignment an admin records when an order
// moves to shipping.
type OrderCourier struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CourierName    string    `gorm:"column:courier_name;not null"`
	TrackingNumber string    `gorm:"column:tracking_number;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
