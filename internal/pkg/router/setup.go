package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/tripcraft/planner/app/controllers"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the services the routes are built from
type Dependencies struct {
	Planner       controllers.PlannerService
	Stats         controllers.StatisticsProvider
	DB            *gorm.DB
	CallbackToken string
	// RateLimit is the number of public API requests per client and minute, 0 uses the default
	RateLimit int
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Install HttpRouter first so that the user context middleware runs
	// before any API route.
	setup(app, NewHttpRouter(), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
