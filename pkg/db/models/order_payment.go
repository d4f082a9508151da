package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
)

// OrderPayment tracks the hosted checkout session and its settlement state.
// CheckoutSessionID is the correlation key webhook deliveries are matched on.
type OrderPayment struct {
	ID                uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID                `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	CheckoutSessionID string                   `gorm:"column:checkout_session_id;not null;uniqueIndex"`
	CheckoutURL       string                   `gorm:"column:checkout_url;not null"`
	Status            enums.PaymentStatus      `gorm:"column:status;type:text;not null;default:'pending'"`
	Amount            decimal.Decimal          `gorm:"column:amount;type:numeric(10,2);not null"`
	Currency          enums.Currency           `gorm:"column:currency;type:text;not null;default:'PHP'"`
	PaymentReference  *string                  `gorm:"column:payment_reference"`
	PaymentMethod     *enums.PaymentMethodType `gorm:"column:payment_method;type:text"`
	PaidAt            *time.Time               `gorm:"column:paid_at"`
	FailedAt          *time.Time               `gorm:"column:failed_at"`
	CreatedAt         time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
