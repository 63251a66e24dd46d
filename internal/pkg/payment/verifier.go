package payment

import (
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader carries the provider's HMAC signature of the request body.
const SignatureHeader = "Stripe-Signature"

// Verifier checks that webhook payloads were signed with the shared endpoint
// secret.
type Verifier struct {
	secret    string
	tolerance time.Duration
}

func NewVerifier(cfg Config) *Verifier {
	tolerance := cfg.SignatureTolerance
	if tolerance <= 0 {
		tolerance = webhook.DefaultTolerance
	}
	return &Verifier{secret: cfg.WebhookSecret, tolerance: tolerance}
}

// Verify validates the signature header against payload and decodes the
// event envelope. Every failure wraps ErrAuthenticity.
func (v *Verifier) Verify(payload []byte, signatureHeader string) (*Event, error) {
	sig := strings.TrimSpace(signatureHeader)
	if sig == "" {
		return nil, fmt.Errorf("%w: missing %s header", ErrAuthenticity, SignatureHeader)
	}
	if v.secret == "" {
		return nil, fmt.Errorf("%w: webhook secret is not configured", ErrAuthenticity)
	}

	ev, err := webhook.ConstructEventWithOptions(payload, sig, v.secret, webhook.ConstructEventOptions{
		Tolerance:                v.tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticity, err)
	}

	out := &Event{
		ID:           ev.ID,
		Type:         eventTypeFromStripe(ev.Type),
		ProviderType: string(ev.Type),
	}
	if ev.Data != nil {
		out.Object = ev.Data.Raw
	}
	return out, nil
}
