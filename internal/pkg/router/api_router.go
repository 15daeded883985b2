package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/tripcraft/planner/app/controllers"
	apiv1 "github.com/tripcraft/planner/internal/api/v1"
	"github.com/tripcraft/planner/internal/pkg/constants"
	"github.com/tripcraft/planner/internal/pkg/middleware"
)

const defaultRateLimit = 30

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute)
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})
	api.Get(constants.HealthRoute, controllers.HandleHealth(h.deps.DB))

	apiServer := apiv1.NewAPIServer(
		controllers.NewPlanController(h.deps.Planner, middleware.UserID),
		controllers.NewCallbackController(h.deps.Planner),
	)

	// API v1 routes
	limit := h.deps.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	v1 := api.Group(constants.APIV1Route, limiter.New(limiter.Config{
		Max:        limit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(controllers.Envelope{Message: "Too many requests"})
		},
	}))
	apiv1.RegisterHandlers(v1, apiServer)
	if h.deps.Stats != nil {
		v1.Get("/stats", controllers.HandleStatistics(h.deps.Stats))
	}

	// Callback routes for the planning backend
	internal := api.Group(constants.InternalRoute, middleware.CallbackTokenMiddleware(h.deps.CallbackToken))
	apiv1.RegisterCallbackHandlers(internal, apiServer)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
