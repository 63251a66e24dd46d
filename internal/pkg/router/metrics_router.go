package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	"github.com/ManuelReschke/FoxShop/internal/pkg/constants"
	"github.com/ManuelReschke/FoxShop/internal/pkg/env"
)

type MetricsRouter struct {
	deps Dependencies
}

func (h MetricsRouter) InstallRouter(app *fiber.App) {
	metrics := app.Group(constants.MetricsRoute,
		limiter.New(limiter.Config{
			Max:        30,
			Expiration: time.Minute,
			Storage:    h.deps.Storage,
		}),
		basicauth.New(basicauth.Config{
			Users: map[string]string{
				env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "test"),
			},
		}),
	)
	metrics.Get("/", monitor.New())

	if h.deps.Stats != nil {
		metrics.Get(constants.WebhookStatsRoute, h.deps.Stats.HandleWebhookStats)
	}
}

func NewMetricsRouter(deps Dependencies) *MetricsRouter {
	return &MetricsRouter{deps: deps}
}
