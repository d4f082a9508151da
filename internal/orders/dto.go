package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
)

// Summary is the order listing projection.
type Summary struct {
	ID          uuid.UUID         `json:"id"`
	OrderNumber string            `json:"order_number"`
	Status      enums.OrderStatus `json:"status"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
	Payment     *PaymentView      `json:"payment,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// LineView is one purchased book snapshot.
type LineView struct {
	BookID    *uuid.UUID      `json:"book_id,omitempty"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// PaymentView exposes the settlement state without provider internals.
type PaymentView struct {
	Status           enums.PaymentStatus      `json:"status"`
	CheckoutURL      string                   `json:"checkout_url,omitempty"`
	PaymentReference *string                  `json:"payment_reference,omitempty"`
	PaymentMethod    *enums.PaymentMethodType `json:"payment_method,omitempty"`
	PaidAt           *time.Time               `json:"paid_at,omitempty"`
}

// AddressView mirrors the frozen shipping snapshot.
type AddressView struct {
	RecipientName string  `json:"recipient_name"`
	Phone         string  `json:"phone"`
	Line1         string  `json:"line1"`
	Line2         *string `json:"line2,omitempty"`
	City          string  `json:"city"`
	Province      string  `json:"province"`
	PostalCode    string  `json:"postal_code"`
}

// CourierView is the shipment assignment shown once an order ships.
type CourierView struct {
	CourierName    string `json:"courier_name"`
	TrackingNumber string `json:"tracking_number"`
}

// Detail is the full order projection.
type Detail struct {
	Summary
	Books           []LineView   `json:"books"`
	ShippingAddress *AddressView `json:"shipping_address,omitempty"`
	Courier         *CourierView `json:"courier,omitempty"`
}

// ListResult carries one page of orders plus the next cursor.
type ListResult struct {
	Items      []Summary `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func summaryFromModel(order models.Order) Summary {
	summary := Summary{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		TotalAmount: order.TotalAmount,
		ItemCount:   len(order.Books),
		CreatedAt:   order.CreatedAt,
	}
	if order.Payment != nil {
		summary.Payment = paymentViewFromModel(*order.Payment)
	}
	return summary
}

func paymentViewFromModel(payment models.OrderPayment) *PaymentView {
	view := &PaymentView{
		Status:           payment.Status,
		PaymentReference: payment.PaymentReference,
		PaymentMethod:    payment.PaymentMethod,
		PaidAt:           payment.PaidAt,
	}
	// The hosted checkout URL is only actionable while payment is pending.
	if payment.Status == enums.PaymentStatusPending {
		view.CheckoutURL = payment.CheckoutURL
	}
	return view
}

func detailFromModel(order models.Order) Detail {
	detail := Detail{
		Summary: summaryFromModel(order),
		Books:   make([]LineView, 0, len(order.Books)),
	}
	for _, line := range order.Books {
		detail.Books = append(detail.Books, LineView{
			BookID:    line.BookID,
			Title:     line.Title,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal,
		})
	}
	if addr := order.ShippingAddress; addr != nil {
		detail.ShippingAddress = &AddressView{
			RecipientName: addr.RecipientName,
			Phone:         addr.Phone,
			Line1:         addr.Line1,
			Line2:         addr.Line2,
			City:          addr.City,
			Province:      addr.Province,
			PostalCode:    addr.PostalCode,
		}
	}
	if courier := order.Courier; courier != nil {
		detail.Courier = &CourierView{
			CourierName:    courier.CourierName,
			TrackingNumber: courier.TrackingNumber,
		}
	}
	return detail
}
