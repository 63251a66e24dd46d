package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ManuelReschke/FoxShop/internal/pkg/env"
)

func TestConfigFromEnv(t *testing.T) {
	env.Env = map[string]string{
		"STRIPE_WEBHOOK_SECRET":      " whsec_abc ",
		"FRONTEND_DOMAIN":            "https://shop.example.com/",
		"STRIPE_SIGNATURE_TOLERANCE": "2m",
	}
	t.Cleanup(func() { env.Env = nil })

	cfg := ConfigFromEnv()
	assert.Equal(t, "whsec_abc", cfg.WebhookSecret)
	assert.Equal(t, 2*time.Minute, cfg.SignatureTolerance)
	assert.Equal(t, "https://shop.example.com/orders?checkout=success&session_id={CHECKOUT_SESSION_ID}", cfg.SuccessURL())
	assert.Equal(t, "https://shop.example.com/store", cfg.CancelURL())
}
