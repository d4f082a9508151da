package checkout

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/internal/books"
	"github.com/bookhavenph/bookhaven-backend/internal/cart"
	"github.com/bookhavenph/bookhaven-backend/internal/orders"
	"github.com/bookhavenph/bookhaven-backend/pkg/config"
	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
	"github.com/bookhavenph/bookhaven-backend/pkg/metrics"
	"github.com/bookhavenph/bookhaven-backend/pkg/paymongo"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SessionCreator opens a hosted checkout session at the payment provider.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, req paymongo.CreateCheckoutSessionRequest) (*paymongo.CheckoutSession, error)
}

// Service turns a cart into an order with a hosted checkout session.
type Service interface {
	Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error)
}

// InitiateInput is the checkout request: the buyer plus the delivery snapshot.
type InitiateInput struct {
	UserID        uuid.UUID
	RecipientName string
	Phone         string
	Line1         string
	Line2         *string
	City          string
	Province      string
	PostalCode    string
}

// InitiateResult points the buyer at the hosted checkout page.
type InitiateResult struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	CheckoutURL string    `json:"checkout_url"`
}

// ServiceParams wires the checkout dependencies.
type ServiceParams struct {
	OrdersRepo orders.Repository
	CartRepo   cart.Repository
	BooksRepo  books.Repository
	TxRunner   txRunner
	Sessions   SessionCreator
	Config     config.CheckoutConfig
	Metrics    *metrics.PaymentMetrics
	Logger     *logger.Logger
}

type service struct {
	ordersRepo orders.Repository
	cartRepo   cart.Repository
	booksRepo  books.Repository
	tx         txRunner
	sessions   SessionCreator
	cfg        config.CheckoutConfig
	metrics    *metrics.PaymentMetrics
	logg       *logger.Logger
}

// NewService builds the checkout service.
func NewService(params ServiceParams) (Service, error) {
	if params.OrdersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.BooksRepo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session creator required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		ordersRepo: params.OrdersRepo,
		cartRepo:   params.CartRepo,
		booksRepo:  params.BooksRepo,
		tx:         params.TxRunner,
		sessions:   params.Sessions,
		cfg:        params.Config,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// Initiate runs the whole checkout inside one transaction: snapshots, stock
// decrements, the provider call, and the payment row all commit together, so a
// provider failure leaves no partial order behind.
func (s *service) Initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	started := time.Now()
	result, err := s.initiate(ctx, input)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.IncCheckoutSession(outcome)
	s.metrics.ObserveCheckoutDuration(outcome, time.Since(started))
	return result, err
}

func (s *service) initiate(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if err := validateAddress(input); err != nil {
		return nil, err
	}

	var result InitiateResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		booksRepo := s.booksRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		items, err := cartRepo.FindByUser(ctx, input.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		wanted := make(map[uuid.UUID]int, len(items))
		for _, item := range items {
			wanted[item.BookID] += item.Quantity
		}

		byID, err := books.ResolveForPurchase(ctx, booksRepo, wanted)
		if err != nil {
			return err
		}

		orderNumber, err := generateOrderNumber(ctx, ordersRepo)
		if err != nil {
			return err
		}

		total := decimal.Zero
		lines := make([]models.OrderBook, 0, len(items))
		lineItems := make([]paymongo.LineItem, 0, len(items))
		for _, item := range items {
			book := byID[item.BookID]
			subtotal := book.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)

			bookID := book.ID
			lines = append(lines, models.OrderBook{
				BookID:    &bookID,
				Title:     book.Title,
				UnitPrice: book.Price,
				Quantity:  item.Quantity,
				Subtotal:  subtotal,
			})
			lineItems = append(lineItems, paymongo.LineItem{
				Name:     book.Title,
				Amount:   centavos(book.Price),
				Currency: enums.CurrencyPHP.String(),
				Quantity: item.Quantity,
			})
		}

		order, err := ordersRepo.CreateOrder(ctx, &models.Order{
			UserID:      input.UserID,
			OrderNumber: orderNumber,
			Status:      enums.OrderStatusToPay,
			TotalAmount: total,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		for i := range lines {
			lines[i].OrderID = order.ID
		}
		if err := ordersRepo.CreateOrderBooks(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order snapshots")
		}

		for bookID, qty := range wanted {
			ok, err := booksRepo.DecrementStock(ctx, bookID, qty)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
			}
			if !ok {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient stock")
			}
		}

		address := &models.OrderShippingAddress{
			OrderID:       order.ID,
			RecipientName: input.RecipientName,
			Phone:         input.Phone,
			Line1:         input.Line1,
			Line2:         input.Line2,
			City:          input.City,
			Province:      input.Province,
			PostalCode:    input.PostalCode,
		}
		if err := ordersRepo.CreateShippingAddress(ctx, address); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shipping address")
		}

		session, err := s.sessions.CreateCheckoutSession(ctx, paymongo.CreateCheckoutSessionRequest{
			LineItems:          lineItems,
			PaymentMethodTypes: s.cfg.PaymentMethodTypes,
			SuccessURL:         s.cfg.SuccessURL,
			CancelURL:          cancelURLFor(s.cfg.CancelURL, order.ID),
			ReferenceNumber:    orderNumber,
			Description:        fmt.Sprintf("BookHaven order %s", orderNumber),
		})
		if err != nil {
			return err
		}

		if _, err := ordersRepo.CreatePayment(ctx, &models.OrderPayment{
			OrderID:           order.ID,
			CheckoutSessionID: session.ID,
			CheckoutURL:       session.CheckoutURL,
			Status:            enums.PaymentStatusPending,
			Amount:            total,
			Currency:          enums.CurrencyPHP,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		if err := cartRepo.DeleteByUser(ctx, input.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}

		result = InitiateResult{
			OrderID:     order.ID,
			OrderNumber: orderNumber,
			CheckoutURL: session.CheckoutURL,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, result.OrderID.String()), "checkout session created")
	return &result, nil
}

func validateAddress(input InitiateInput) error {
	required := map[string]string{
		"recipient name": input.RecipientName,
		"phone":          input.Phone,
		"address line":   input.Line1,
		"city":           input.City,
		"province":       input.Province,
		"postal code":    input.PostalCode,
	}
	for field, value := range required {
		if value == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, field+" is required")
		}
	}
	return nil
}

// centavos converts a peso amount to the integer minor units the provider expects.
func centavos(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// cancelURLFor appends the order id to the configured cancel URL. The cancel
// page needs it to run the to_pay cancellation flow for the abandoned order.
func cancelURLFor(base string, orderID uuid.UUID) string {
	parsed, err := url.Parse(base)
	if err != nil {
		return base
	}
	query := parsed.Query()
	query.Set("order_id", orderID.String())
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
