package controllers

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/internal/pkg/planner"
)

// PlannerService is the planner as seen by the HTTP layer
type PlannerService interface {
	Trigger(ctx context.Context, sub planner.Submission, userID *uint) (*planner.TriggerResult, error)
	Retry(ctx context.Context, tripPlanID string) (json.RawMessage, error)
	GetStatus(ctx context.Context, tripPlanID string) (*models.TripPlanStatus, error)
	GetPlan(ctx context.Context, tripPlanID string) (*planner.PlanDetails, error)
	UpdateStatus(ctx context.Context, tripPlanID string, update models.StatusUpdate) (*models.TripPlanStatus, error)
	CreateTask(ctx context.Context, tripPlanID, taskType string, input datatypes.JSON) (*models.PlanTask, error)
	StartTask(ctx context.Context, taskID uint) error
	CompleteTask(ctx context.Context, taskID uint, output datatypes.JSON) error
	FailTask(ctx context.Context, taskID uint, message string) error
	SaveOutput(ctx context.Context, tripPlanID string, itinerary datatypes.JSON, summary string) (*models.TripPlanOutput, error)
}

// Envelope is the body of every plan API response
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Response   interface{} `json:"response,omitempty"`
	TripPlanID string      `json:"tripPlanId,omitempty"`
}

// PlanController serves the public trip plan endpoints
type PlanController struct {
	planner PlannerService
	userID  func(c *fiber.Ctx) *uint
}

// NewPlanController creates the controller. userID resolves the owning user
// of a request and may be nil, in which case every submission is anonymous.
func NewPlanController(p PlannerService, userID func(c *fiber.Ctx) *uint) *PlanController {
	if userID == nil {
		userID = func(*fiber.Ctx) *uint { return nil }
	}
	return &PlanController{planner: p, userID: userID}
}

// HandleCreatePlan stores a submission and starts its generation
func (pc *PlanController) HandleCreatePlan(c *fiber.Ctx) error {
	var sub planner.Submission
	if err := c.BodyParser(&sub); err != nil {
		log.Warnf("[API] Invalid trip plan body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
	}

	res, err := pc.planner.Trigger(c.UserContext(), sub, pc.userID(c))
	if err != nil {
		id := ""
		if res != nil {
			id = res.TripPlanID
		}
		return respondError(c, err, id)
	}

	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Message:    MsgGenerationStarted,
		Response:   res.Response,
		TripPlanID: res.TripPlanID,
	})
}

// HandleRetryPlan restarts generation of a stored plan
func (pc *PlanController) HandleRetryPlan(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgMissingPlanID})
	}

	resp, err := pc.planner.Retry(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, id)
	}

	return c.Status(fiber.StatusOK).JSON(Envelope{
		Success:    true,
		Message:    MsgRetryStarted,
		Response:   resp,
		TripPlanID: id,
	})
}

// HandleGetPlan returns a plan with its status, tasks and latest output
func (pc *PlanController) HandleGetPlan(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	details, err := pc.planner.GetPlan(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, id)
	}
	return c.JSON(Envelope{Success: true, Message: MsgOK, Response: details, TripPlanID: id})
}

// HandleGetPlanStatus returns the status projection, used for polling
func (pc *PlanController) HandleGetPlanStatus(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	st, err := pc.planner.GetStatus(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, id)
	}
	return c.JSON(Envelope{Success: true, Message: MsgOK, Response: st, TripPlanID: id})
}
