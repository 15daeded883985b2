package apiv1

import (
	"github.com/gofiber/fiber/v2"

	// Delegate to existing controllers to keep behavior consistent
	"github.com/tripcraft/planner/app/controllers"
)

// APIServer implements ServerInterface and CallbackServerInterface
type APIServer struct {
	plans     *controllers.PlanController
	callbacks *controllers.CallbackController
}

// NewAPIServer creates a new API server instance
func NewAPIServer(plans *controllers.PlanController, callbacks *controllers.CallbackController) *APIServer {
	return &APIServer{plans: plans, callbacks: callbacks}
}

func (s *APIServer) PostPlans(c *fiber.Ctx) error {
	return s.plans.HandleCreatePlan(c)
}

// Controllers read the id from route params; the wrapper already checked it exists.
func (s *APIServer) GetPlan(c *fiber.Ctx, id string) error {
	return s.plans.HandleGetPlan(c)
}

func (s *APIServer) PostPlanRetry(c *fiber.Ctx, id string) error {
	return s.plans.HandleRetryPlan(c)
}

func (s *APIServer) GetPlanStatus(c *fiber.Ctx, id string) error {
	return s.plans.HandleGetPlanStatus(c)
}

func (s *APIServer) PutPlanStatus(c *fiber.Ctx, id string) error {
	return s.callbacks.HandleUpdateStatus(c)
}

func (s *APIServer) PostPlanTask(c *fiber.Ctx, id string) error {
	return s.callbacks.HandleCreateTask(c)
}

func (s *APIServer) PostPlanOutput(c *fiber.Ctx, id string) error {
	return s.callbacks.HandleSaveOutput(c)
}

func (s *APIServer) PostTaskStart(c *fiber.Ctx, taskID int) error {
	return s.callbacks.HandleStartTask(c)
}

func (s *APIServer) PostTaskComplete(c *fiber.Ctx, taskID int) error {
	return s.callbacks.HandleCompleteTask(c)
}

func (s *APIServer) PostTaskFail(c *fiber.Ctx, taskID int) error {
	return s.callbacks.HandleFailTask(c)
}
