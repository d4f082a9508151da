package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/pkg/db/models"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
	"github.com/bookhavenph/bookhaven-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SessionExpirer invalidates a hosted checkout session at the provider.
type SessionExpirer interface {
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
}

// Service defines order-level operations for buyers and admins.
type Service interface {
	ListMine(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) error
	AdminList(ctx context.Context, input ListInput) (*ListResult, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*Detail, error)
	AdminUpdateStatus(ctx context.Context, input AdminStatusInput) error
}

// ListInput carries listing filters from controllers.
type ListInput struct {
	Status string
	Limit  int
	Cursor string
}

// AdminStatusInput advances an order through the fulfillment lifecycle.
type AdminStatusInput struct {
	OrderID        uuid.UUID
	Status         enums.OrderStatus
	CourierName    string
	TrackingNumber string
}

type service struct {
	repo    Repository
	tx      txRunner
	expirer SessionExpirer
	logg    *logger.Logger
}

// NewService builds the orders service. The session expirer is optional: when
// absent, cancelled sessions are left to expire at the provider.
func NewService(repo Repository, tx txRunner, expirer SessionExpirer, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		expirer: expirer,
		logg:    logg,
	}, nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, input ListInput) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.FindByUser(ctx, userID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildListResult(rows, filter.Limit), nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*Detail, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	detail := detailFromModel(*order)
	return &detail, nil
}

// Cancel lets a buyer back out of an unpaid order. The payment row is locked
// so a concurrent webhook for the same session serializes behind the cancel.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var sessionID string
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.Status != enums.OrderStatusToPay {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "only unpaid orders can be cancelled")
		}

		payment, err := repo.FindPaymentByOrderID(ctx, order.ID, true)
		if err != nil && err != gorm.ErrRecordNotFound {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		if payment != nil && payment.Status == enums.PaymentStatusPending {
			now := time.Now().UTC()
			updates := map[string]any{
				"status":    enums.PaymentStatusFailed,
				"failed_at": now,
			}
			if err := repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail payment")
			}
			sessionID = payment.CheckoutSessionID
		}
		return nil
	})
	if err != nil {
		return err
	}

	// Best effort: the order is already cancelled locally, so a provider
	// failure here only leaves a session that expires on its own.
	if sessionID != "" && s.expirer != nil {
		if err := s.expirer.ExpireCheckoutSession(ctx, sessionID); err != nil {
			s.logg.Warn(s.logg.WithOrderID(ctx, orderID.String()), "failed to expire checkout session after cancel")
		}
	}
	return nil
}

func (s *service) AdminList(ctx context.Context, input ListInput) (*ListResult, error) {
	filter, err := buildFilter(input)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return buildListResult(rows, filter.Limit), nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*Detail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	detail := detailFromModel(*order)
	return &detail, nil
}

func (s *service) AdminUpdateStatus(ctx context.Context, input AdminStatusInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if order.Status == input.Status {
			return nil
		}
		if !canTransition(order.Status, input.Status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Status))
		}

		if input.Status == enums.OrderStatusShipping {
			courierName := strings.TrimSpace(input.CourierName)
			trackingNumber := strings.TrimSpace(input.TrackingNumber)
			if courierName == "" || trackingNumber == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "courier name and tracking number are required for shipping")
			}
			courier := &models.OrderCourier{
				OrderID:        order.ID,
				CourierName:    courierName,
				TrackingNumber: trackingNumber,
			}
			if _, err := repo.FirstOrCreateCourier(ctx, courier); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign courier")
			}
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, input.Status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		return nil
	})
}

// canTransition encodes the admin-facing fulfillment lifecycle. Payment-driven
// transitions (to_pay -> preparing) happen in the webhook reconciler, never here.
func canTransition(from, to enums.OrderStatus) bool {
	switch from {
	case enums.OrderStatusPreparing:
		return to == enums.OrderStatusShipping
	case enums.OrderStatusShipping:
		return to == enums.OrderStatusDelivered
	default:
		return false
	}
}

func buildFilter(input ListInput) (ListFilter, error) {
	filter := ListFilter{Limit: pagination.NormalizeLimit(input.Limit)}

	if trimmed := strings.TrimSpace(input.Status); trimmed != "" {
		status, err := enums.ParseOrderStatus(trimmed)
		if err != nil {
			return ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filter.Status = &status
	}

	cursor, err := pagination.ParseCursor(input.Cursor)
	if err != nil {
		return ListFilter{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	filter.Cursor = cursor
	return filter, nil
}

func buildListResult(rows []models.Order, limit int) *ListResult {
	result := &ListResult{Items: make([]Summary, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		result.Items = append(result.Items, summaryFromModel(row))
	}
	if hasMore {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result
}
