package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/FoxShop/app/controllers"
	"github.com/ManuelReschke/FoxShop/internal/pkg/constants"
	"github.com/ManuelReschke/FoxShop/internal/pkg/env"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New(limiter.Config{
		Max:        env.GetEnvInt("API_RATE_LIMIT", 300),
		Expiration: time.Minute,
		Storage:    h.deps.Storage,
	}))
	api.Get(constants.PingRoute, controllers.HandlePing)

	if h.deps.Payment != nil {
		api.Post(constants.PaymentWebhookRoute, h.deps.Payment.HandleStripeWebhook)
	}
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
