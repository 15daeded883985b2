package controllers

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"

	"github.com/tripcraft/planner/app/models"
)

type statusUpdateRequest struct {
	Status      string     `json:"status"`
	CurrentStep string     `json:"currentStep"`
	Error       string     `json:"error"`
	StartedAt   *time.Time `json:"startedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

type createTaskRequest struct {
	TaskType  string          `json:"taskType"`
	InputData json.RawMessage `json:"inputData"`
}

type completeTaskRequest struct {
	OutputData json.RawMessage `json:"outputData"`
}

type failTaskRequest struct {
	ErrorMessage string `json:"errorMessage"`
}

type outputRequest struct {
	Itinerary json.RawMessage `json:"itinerary"`
	Summary   string          `json:"summary"`
}

// CallbackController serves the endpoints the planning backend uses to
// report progress. Authentication is done by middleware.
type CallbackController struct {
	planner PlannerService
}

func NewCallbackController(p PlannerService) *CallbackController {
	return &CallbackController{planner: p}
}

func (cc *CallbackController) HandleUpdateStatus(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	var req statusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
	}

	st, err := cc.planner.UpdateStatus(c.UserContext(), id, models.StatusUpdate{
		Status:      models.PlanStatus(strings.TrimSpace(req.Status)),
		Step:        req.CurrentStep,
		Error:       req.Error,
		StartedAt:   req.StartedAt,
		CompletedAt: req.CompletedAt,
	})
	if err != nil {
		return respondError(c, err, id)
	}
	return c.JSON(Envelope{Success: true, Message: MsgStatusUpdated, Response: st, TripPlanID: id})
}

func (cc *CallbackController) HandleCreateTask(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
	}

	task, err := cc.planner.CreateTask(c.UserContext(), id, req.TaskType, jsonDocument(req.InputData))
	if err != nil {
		return respondError(c, err, id)
	}
	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success:    true,
		Message:    MsgTaskCreated,
		Response:   fiber.Map{"taskId": task.ID},
		TripPlanID: id,
	})
}

func (cc *CallbackController) HandleStartTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidTaskID})
	}
	if err := cc.planner.StartTask(c.UserContext(), taskID); err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(Envelope{Success: true, Message: MsgTaskUpdated})
}

func (cc *CallbackController) HandleCompleteTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidTaskID})
	}
	var req completeTaskRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
		}
	}
	if err := cc.planner.CompleteTask(c.UserContext(), taskID, jsonDocument(req.OutputData)); err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(Envelope{Success: true, Message: MsgTaskUpdated})
}

func (cc *CallbackController) HandleFailTask(c *fiber.Ctx) error {
	taskID, ok := taskIDParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidTaskID})
	}
	var req failTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
	}
	if err := cc.planner.FailTask(c.UserContext(), taskID, req.ErrorMessage); err != nil {
		return respondError(c, err, "")
	}
	return c.JSON(Envelope{Success: true, Message: MsgTaskUpdated})
}

func (cc *CallbackController) HandleSaveOutput(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	var req outputRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(Envelope{Message: MsgInvalidBody})
	}

	out, err := cc.planner.SaveOutput(c.UserContext(), id, jsonDocument(req.Itinerary), req.Summary)
	if err != nil {
		return respondError(c, err, id)
	}
	return c.Status(fiber.StatusCreated).JSON(Envelope{
		Success:    true,
		Message:    MsgOutputSaved,
		Response:   fiber.Map{"outputId": out.ID},
		TripPlanID: id,
	})
}

func taskIDParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("taskId")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

// jsonDocument treats an absent or null document as empty
func jsonDocument(raw json.RawMessage) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return datatypes.JSON(trimmed)
}
