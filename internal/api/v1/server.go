package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// ServerInterface is implemented by the public v1 API
type ServerInterface interface {
	// Submit a trip plan and start its generation
	// (POST /plans)
	PostPlans(c *fiber.Ctx) error
	// Stored plan with status, tasks and latest output
	// (GET /plans/{id})
	GetPlan(c *fiber.Ctx, id string) error
	// Restart generation of a stored plan
	// (POST /plans/{id}/retry)
	PostPlanRetry(c *fiber.Ctx, id string) error
	// Current status of a plan
	// (GET /plans/{id}/status)
	GetPlanStatus(c *fiber.Ctx, id string) error
}

// CallbackServerInterface is implemented by the API the planning backend reports to
type CallbackServerInterface interface {
	// (PUT /plans/{id}/status)
	PutPlanStatus(c *fiber.Ctx, id string) error
	// (POST /plans/{id}/tasks)
	PostPlanTask(c *fiber.Ctx, id string) error
	// (POST /plans/{id}/output)
	PostPlanOutput(c *fiber.Ctx, id string) error
	// (POST /tasks/{taskId}/start)
	PostTaskStart(c *fiber.Ctx, taskID int) error
	// (POST /tasks/{taskId}/complete)
	PostTaskComplete(c *fiber.Ctx, taskID int) error
	// (POST /tasks/{taskId}/fail)
	PostTaskFail(c *fiber.Ctx, taskID int) error
}

// ServerInterfaceWrapper converts path parameters before calling the handler
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) PostPlans(c *fiber.Ctx) error {
	return w.Handler.PostPlans(c)
}

func (w *ServerInterfaceWrapper) GetPlan(c *fiber.Ctx) error {
	return w.Handler.GetPlan(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) PostPlanRetry(c *fiber.Ctx) error {
	return w.Handler.PostPlanRetry(c, c.Params("id"))
}

func (w *ServerInterfaceWrapper) GetPlanStatus(c *fiber.Ctx) error {
	return w.Handler.GetPlanStatus(c, c.Params("id"))
}

// RegisterHandlers mounts the public API on router
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	w := &ServerInterfaceWrapper{Handler: si}

	router.Post("/plans", w.PostPlans)
	router.Get("/plans/:id", w.GetPlan)
	router.Post("/plans/:id/retry", w.PostPlanRetry)
	router.Get("/plans/:id/status", w.GetPlanStatus)
}

// CallbackInterfaceWrapper converts path parameters before calling the handler
type CallbackInterfaceWrapper struct {
	Handler CallbackServerInterface
}

func (w *CallbackInterfaceWrapper) PutPlanStatus(c *fiber.Ctx) error {
	return w.Handler.PutPlanStatus(c, c.Params("id"))
}

func (w *CallbackInterfaceWrapper) PostPlanTask(c *fiber.Ctx) error {
	return w.Handler.PostPlanTask(c, c.Params("id"))
}

func (w *CallbackInterfaceWrapper) PostPlanOutput(c *fiber.Ctx) error {
	return w.Handler.PostPlanOutput(c, c.Params("id"))
}

func (w *CallbackInterfaceWrapper) PostTaskStart(c *fiber.Ctx) error {
	return w.withTaskID(c, w.Handler.PostTaskStart)
}

func (w *CallbackInterfaceWrapper) PostTaskComplete(c *fiber.Ctx) error {
	return w.withTaskID(c, w.Handler.PostTaskComplete)
}

func (w *CallbackInterfaceWrapper) PostTaskFail(c *fiber.Ctx) error {
	return w.withTaskID(c, w.Handler.PostTaskFail)
}

func (w *CallbackInterfaceWrapper) withTaskID(c *fiber.Ctx, next func(*fiber.Ctx, int) error) error {
	taskID, err := c.ParamsInt("taskId")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid format for parameter taskId",
		})
	}
	return next(c, taskID)
}

// RegisterCallbackHandlers mounts the callback API on router
func RegisterCallbackHandlers(router fiber.Router, si CallbackServerInterface) {
	w := &CallbackInterfaceWrapper{Handler: si}

	router.Put("/plans/:id/status", w.PutPlanStatus)
	router.Post("/plans/:id/tasks", w.PostPlanTask)
	router.Post("/plans/:id/output", w.PostPlanOutput)
	router.Post("/tasks/:taskId/start", w.PostTaskStart)
	router.Post("/tasks/:taskId/complete", w.PostTaskComplete)
	router.Post("/tasks/:taskId/fail", w.PostTaskFail)
}
