package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/FoxShop/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are built once in main and shared by all routers.
type Dependencies struct {
	Payment *controllers.PaymentController
	Stats   *controllers.StatsController
	// Storage backs the rate limiters; nil uses in-memory storage.
	Storage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewApiRouter(deps), NewMetricsRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
