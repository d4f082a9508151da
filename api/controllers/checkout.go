package controllers

import (
	"net/http"

	"github.com/bookhavenph/bookhaven-backend/api/responses"
	"github.com/bookhavenph/bookhaven-backend/api/validators"
	checkoutsvc "github.com/bookhavenph/bookhaven-backend/internal/checkout"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

type checkoutRequest struct {
	RecipientName string  `json:"recipient_name" validate:"required,max=120"`
	Phone         string  `json:"phone" validate:"required,max=32"`
	Line1         string  `json:"line1" validate:"required,max=255"`
	Line2         *string `json:"line2,omitempty" validate:"omitempty,max=255"`
	City          string  `json:"city" validate:"required,max=120"`
	Province      string  `json:"province" validate:"required,max=120"`
	PostalCode    string  `json:"postal_code" validate:"required,max=12"`
}

// Checkout converts the caller's cart into an order plus a hosted payment page.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := userIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Initiate(r.Context(), checkoutsvc.InitiateInput{
			UserID:        userID,
			RecipientName: payload.RecipientName,
			Phone:         payload.Phone,
			Line1:         payload.Line1,
			Line2:         payload.Line2,
			City:          payload.City,
			Province:      payload.Province,
			PostalCode:    payload.PostalCode,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
