package controllers

import (
	"net/http"

	"github.com/bookhavenph/bookhaven-backend/api/responses"
	"github.com/bookhavenph/bookhaven-backend/api/validators"
	internalorders "github.com/bookhavenph/bookhaven-backend/internal/orders"
	"github.com/bookhavenph/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
	"github.com/bookhavenph/bookhaven-backend/pkg/logger"
)

type adminStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	CourierName    string `json:"courier_name,omitempty" validate:"omitempty,max=120"`
	TrackingNumber string `json:"tracking_number,omitempty" validate:"omitempty,max=120"`
}

// AdminOrderList returns all orders regardless of owner.
func AdminOrderList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		input, err := orderListInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.AdminList(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func AdminOrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuidURLParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.AdminGet(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// AdminOrderStatus advances an order through fulfillment. Shipping requires
// the courier assignment in the same request.
func AdminOrderStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuidURLParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adminStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		if err := svc.AdminUpdateStatus(r.Context(), internalorders.AdminStatusInput{
			OrderID:        orderID,
			Status:         status,
			CourierName:    payload.CourierName,
			TrackingNumber: payload.TrackingNumber,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, nil)
	}
}
