package payment

import (
	"encoding/json"

	"github.com/stripe/stripe-go/v82"
)

type EventType int

const (
	EventTypeOther EventType = iota
	EventTypeSessionCompleted
	EventTypePaymentFailed
)

func (t EventType) String() string {
	switch t {
	case EventTypeSessionCompleted:
		return "session_completed"
	case EventTypePaymentFailed:
		return "payment_failed"
	default:
		return "other"
	}
}

// Event is a verified provider event. Object holds the raw nested object
// (a checkout session for EventTypeSessionCompleted).
type Event struct {
	ID           string
	Type         EventType
	ProviderType string
	Object       json.RawMessage
}

func eventTypeFromStripe(t stripe.EventType) EventType {
	switch t {
	case stripe.EventTypeCheckoutSessionCompleted:
		return EventTypeSessionCompleted
	case stripe.EventTypePaymentIntentPaymentFailed:
		return EventTypePaymentFailed
	default:
		return EventTypeOther
	}
}
