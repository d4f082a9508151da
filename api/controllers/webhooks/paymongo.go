package webhooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bookhavenph/bookhaven-backend/api/responses"
	paymongowebhook "github.com/bookhavenph/bookhaven-backend/internal/webhooks/paymongo"
	"github.com/bookhavenph/bookhaven-backend/pkg/config"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
	"github.com/bookhavenph/bookhaven-backend/pkg/paymongo"
)

const paymongoSignatureHeader = "Paymongo-Signature"

type PayMongoWebhookService interface {
	HandleEvent(ctx context.Context, event *paymongowebhook.Event) error
}

// PayMongoWebhook verifies and reconciles payment events.
//
// Response codes steer the provider's redelivery: a bad signature or malformed
// payload gets 400 and no retry, a payment for a checkout session we have not
// recorded yet gets 404 so the provider retries after the checkout transaction
// lands, and reconciliation failures on a verified event are acknowledged with
// 200 after logging so a poison event cannot block the queue. Transient
// dependency failures still get 503 so delivery is retried.
func PayMongoWebhook(svc PayMongoWebhookService, pmCfg config.PayMongoConfig, checkoutCfg config.CheckoutConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		// One fixed rejection for a missing header, a malformed header, or a
		// bad digest; the response never reveals which check failed.
		sigHeader := r.Header.Get(paymongoSignatureHeader)
		if err := paymongo.VerifySignature(pmCfg.WebhookSecret(), sigHeader, payload, pmCfg.Environment(), time.Now(), checkoutCfg.WebhookTimestampMax); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid signature"))
			return
		}

		event, err := paymongowebhook.ParseEvent(payload)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if err := svc.HandleEvent(ctx, event); err != nil {
			code := pkgerrors.CodeInternal
			if typed := pkgerrors.As(err); typed != nil {
				code = typed.Code()
			}
			switch code {
			case pkgerrors.CodeNotFound, pkgerrors.CodeDependency:
				responses.WriteError(ctx, logg, w, err)
			default:
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"event_id": event.ID, "event_type": event.Type})
					logg.Error(ctx, "webhook.reconcile_failed", err)
				}
				responses.WriteSuccess(w, nil)
			}
			return
		}

		if logg != nil {
			logg.Info(ctx, fmt.Sprintf("paymongo event %s processed", event.ID))
		}
		responses.WriteSuccess(w, nil)
	}
}
