package paymongowebhook

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/bookhavenph/bookhaven-backend/internal/orders"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
	"github.com/bookhavenph/bookhaven-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the reconciler dependencies.
type ServiceParams struct {
	OrdersRepo        orders.Repository
	TransactionRunner txRunner
	Guard             *IdempotencyGuard
	Metrics           *metrics.PaymentMetrics
	Logger            *logger.Logger
}

// Service reconciles payment webhook events into order and payment state.
type Service struct {
	ordersRepo orders.Repository
	txRunner   txRunner
	guard      *IdempotencyGuard
	metrics    *metrics.PaymentMetrics
	logg       *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.OrdersRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "idempotency guard required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		ordersRepo: params.OrdersRepo,
		txRunner:   params.TransactionRunner,
		guard:      params.Guard,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

// HandleEvent applies one webhook delivery. Duplicate deliveries are dropped
// via the idempotency guard; on a processing error the mark is released so the
// provider's retry can run the event again.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "webhook event required")
	}

	switch event.Type {
	case EventTypePaymentPaid, EventTypePaymentFailed:
	default:
		s.metrics.IncWebhookEvent(event.Type, "ignored")
		return nil
	}

	if event.CheckoutSessionID == "" {
		s.metrics.IncWebhookEvent(event.Type, "invalid")
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id missing")
	}

	seen, err := s.guard.CheckAndMark(ctx, event.ID)
	if err != nil {
		s.metrics.IncWebhookEvent(event.Type, "error")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency check")
	}
	if seen {
		s.metrics.IncWebhookEvent(event.Type, "duplicate")
		return nil
	}

	if event.Type == EventTypePaymentPaid {
		err = s.reconcilePaid(ctx, event)
	} else {
		err = s.reconcileFailed(ctx, event)
	}
	if err != nil {
		if delErr := s.guard.Delete(ctx, event.ID); delErr != nil {
			s.logg.Warn(ctx, "failed to release idempotency mark after error")
		}
		s.metrics.IncWebhookEvent(event.Type, "error")
		return err
	}

	s.metrics.IncWebhookEvent(event.Type, "applied")
	return nil
}

// reconcilePaid settles the payment and advances the order to preparing. The
// payment row is locked so concurrent deliveries for one session serialize.
func (s *Service) reconcilePaid(ctx context.Context, event *Event) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)

		payment, err := repo.FindPaymentBySessionID(ctx, event.CheckoutSessionID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout session unknown")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if payment.Status == enums.PaymentStatusPaid {
			return nil
		}

		order, err := repo.FindByID(ctx, payment.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		// A cancelled order stays cancelled and its payment stays failed. The
		// charge went through at the provider, so flag the delivery for manual
		// refund instead of resurrecting either row.
		if order.Status == enums.OrderStatusCancelled {
			logCtx := s.logg.WithOrderID(ctx, order.ID.String())
			s.logg.Warn(logCtx, "paid event for cancelled order, manual reconciliation required")
			return nil
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":  enums.PaymentStatusPaid,
			"paid_at": now,
		}
		if event.PaymentReference != "" {
			updates["payment_reference"] = event.PaymentReference
		}
		if event.PaymentMethod != "" {
			updates["payment_method"] = event.PaymentMethod
		}
		if err := repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle payment")
		}

		if order.Status == enums.OrderStatusToPay {
			if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPreparing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order")
			}
		}
		return nil
	})
}

// reconcileFailed marks the payment failed. A payment that already settled is
// never downgraded, and the order is left alone so the buyer can retry or cancel.
func (s *Service) reconcileFailed(ctx context.Context, event *Event) error {
	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.ordersRepo.WithTx(tx)

		payment, err := repo.FindPaymentBySessionID(ctx, event.CheckoutSessionID, true)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "checkout session unknown")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		if payment.Status != enums.PaymentStatusPending {
			return nil
		}

		updates := map[string]any{
			"status":    enums.PaymentStatusFailed,
			"failed_at": time.Now().UTC(),
		}
		if err := repo.UpdatePayment(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fail payment")
		}
		return nil
	})
}
