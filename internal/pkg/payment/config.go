package payment

import (
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/ManuelReschke/FoxShop/internal/pkg/env"
)

// Config is built once at startup and read-only afterwards. Rotating the
// webhook secret requires a restart.
type Config struct {
	WebhookSecret      string
	FrontendDomain     string
	SignatureTolerance time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		WebhookSecret:      strings.TrimSpace(env.GetEnv("STRIPE_WEBHOOK_SECRET", "")),
		FrontendDomain:     strings.TrimRight(strings.TrimSpace(env.GetEnv("FRONTEND_DOMAIN", "")), "/"),
		SignatureTolerance: env.GetEnvDuration("STRIPE_SIGNATURE_TOLERANCE", webhook.DefaultTolerance),
	}
}

// SuccessURL is where the provider sends the buyer after payment. The
// provider substitutes the session id placeholder.
func (c Config) SuccessURL() string {
	return c.FrontendDomain + "/orders?checkout=success&session_id={CHECKOUT_SESSION_ID}"
}

func (c Config) CancelURL() string {
	return c.FrontendDomain + "/store"
}
