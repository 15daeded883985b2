package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tripcraft/planner/internal/pkg/middleware"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// Apply UserContext middleware globally as first middleware.
	// The session store is created at startup; without one every request is anonymous.
	app.Use(middleware.UserContextMiddleware)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
