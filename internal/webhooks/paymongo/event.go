package paymongowebhook

import (
	"encoding/json"
	"strings"

	pkgerrors "github.com/bookhavenph/bookhaven-backend/pkg/errors"
)

// Event types the reconciler acts on. Anything else is acknowledged and dropped.
const (
	EventTypePaymentPaid   = "payment.paid"
	EventTypePaymentFailed = "payment.failed"
)

// Event is the normalized webhook delivery.
type Event struct {
	ID                string
	Type              string
	PaymentReference  string
	CheckoutSessionID string
	PaymentMethod     string
}

type envelope struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			Type string `json:"type"`
			Data struct {
				ID         string `json:"id"`
				Attributes struct {
					CheckoutSessionID string `json:"checkout_session_id"`
					Source            struct {
						Type string `json:"type"`
					} `json:"source"`
				} `json:"attributes"`
			} `json:"data"`
		} `json:"attributes"`
	} `json:"data"`
}

// ParseEvent decodes the raw webhook body into a normalized Event.
func ParseEvent(raw []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode webhook payload")
	}

	event := &Event{
		ID:                strings.TrimSpace(env.Data.ID),
		Type:              strings.TrimSpace(env.Data.Attributes.Type),
		PaymentReference:  strings.TrimSpace(env.Data.Attributes.Data.ID),
		CheckoutSessionID: strings.TrimSpace(env.Data.Attributes.Data.Attributes.CheckoutSessionID),
		PaymentMethod:     strings.TrimSpace(env.Data.Attributes.Data.Attributes.Source.Type),
	}
	if event.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event id missing")
	}
	if event.Type == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook event type missing")
	}
	return event, nil
}
