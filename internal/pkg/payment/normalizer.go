package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
)

// Checkout session metadata keys shared with the checkout producer.
const (
	MetadataEmail       = "email"
	MetadataPhone       = "phone"
	MetadataDestination = "destination"
	MetadataCart        = "cart"
	MetadataUserUUID    = "uuid"
)

var validate = validator.New()

// CompletedCheckout is the validated content of a completed checkout session.
// Length limits match the orders table columns.
type CompletedCheckout struct {
	SessionID   string     `validate:"required,max=191"`
	Email       string     `validate:"required,max=200"`
	Phone       string     `validate:"max=50"`
	Destination string     `validate:"required"`
	UserID      *uuid.UUID // nil for guest checkouts
	Cart        Cart
}

// NormalizeCheckoutSession turns a verified session-completed event into a
// CompletedCheckout. Validation happens here once; downstream code trusts
// the result.
func NormalizeCheckoutSession(ev *Event) (*CompletedCheckout, error) {
	if ev == nil || len(ev.Object) == 0 || string(ev.Object) == "null" {
		return nil, fmt.Errorf("%w: event has no object", ErrMalformedEvent)
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(ev.Object, &session); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", ErrMalformedEvent, err)
	}
	sessionID := strings.TrimSpace(session.ID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: checkout session has no id", ErrMalformedEvent)
	}
	if session.Metadata == nil {
		return nil, fmt.Errorf("%w: checkout session %s has no metadata", ErrMalformedEvent, sessionID)
	}
	md := session.Metadata

	out := &CompletedCheckout{
		SessionID:   sessionID,
		Email:       strings.TrimSpace(md[MetadataEmail]),
		Phone:       strings.TrimSpace(md[MetadataPhone]),
		Destination: strings.TrimSpace(md[MetadataDestination]),
		UserID:      parseUserID(sessionID, md[MetadataUserUUID]),
	}
	if err := validate.Struct(out); err != nil {
		return nil, incompleteOrderData(err)
	}

	cart, err := ParseCart(md[MetadataCart])
	if err != nil {
		return nil, err
	}
	out.Cart = cart
	return out, nil
}

// parseUserID treats a malformed uuid as absent: the order is still valid as
// a guest order.
func parseUserID(sessionID, raw string) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		log.Warnf("[Payment] Ignoring malformed user uuid %q on session %s: %v", raw, sessionID, err)
		return nil
	}
	return &id
}

func incompleteOrderData(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrIncompleteOrderData, err)
	}
	var missing, tooLong []string
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if fe.Tag() == "max" {
			tooLong = append(tooLong, fmt.Sprintf("%s exceeds %s characters", field, fe.Param()))
			continue
		}
		missing = append(missing, field)
	}
	problems := tooLong
	if len(missing) > 0 {
		problems = append([]string{strings.Join(missing, ", ") + " is required"}, tooLong...)
	}
	return fmt.Errorf("%w: %s", ErrIncompleteOrderData, strings.Join(problems, "; "))
}
