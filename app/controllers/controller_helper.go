package controllers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/tripcraft/planner/internal/pkg/planner"
)

// Response messages. Error details are logged, never returned.
const (
	MsgOK                = "ok"
	MsgGenerationStarted = "Trip plan created, generation started"
	MsgRetryStarted      = "Trip plan generation restarted"
	MsgStatusUpdated     = "Status updated"
	MsgTaskCreated       = "Task created"
	MsgTaskUpdated       = "Task updated"
	MsgOutputSaved       = "Output saved"
	MsgInvalidBody       = "Invalid request body"
	MsgMissingPlanID     = "Trip plan id is required"
	MsgInvalidTaskID     = "Invalid task id"
	MsgMissingFields     = "Missing or invalid fields: "
	MsgInvalidSubmission = "Invalid submission"
	MsgPlanNotFound      = "Trip plan not found"
	MsgNotFound          = " not found"
	MsgTaskConflict      = "Task is not in a state that allows this change"
	MsgBackendFailed     = "Failed to start trip plan generation"
	MsgStorageFailed     = "Failed to save trip plan"
	MsgInternalError     = "Internal server error"
)

// respondError maps planner errors to a status code and envelope
func respondError(c *fiber.Ctx, err error, tripPlanID string) error {
	var (
		verr *planner.ValidationError
		nerr *planner.NotFoundError
		cerr *planner.ConflictError
		terr *planner.TransportError
		perr *planner.PersistenceError
	)

	status := fiber.StatusInternalServerError
	msg := MsgInternalError
	switch {
	case errors.As(err, &verr):
		status = fiber.StatusBadRequest
		msg = MsgInvalidSubmission
		if len(verr.Fields) > 0 {
			msg = MsgMissingFields + strings.Join(verr.Fields, ", ")
		}
	case errors.As(err, &nerr):
		status = fiber.StatusNotFound
		msg = MsgPlanNotFound
		if nerr.Kind != "" && nerr.Kind != "trip plan" {
			msg = strings.ToUpper(nerr.Kind[:1]) + nerr.Kind[1:] + MsgNotFound
		}
	case errors.As(err, &cerr):
		status = fiber.StatusConflict
		msg = MsgTaskConflict
	case errors.As(err, &terr):
		msg = MsgBackendFailed
	case errors.As(err, &perr):
		msg = MsgStorageFailed
	}

	if status >= fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	} else {
		log.Infof("[API] %s %s rejected: %v", c.Method(), c.Path(), err)
	}

	return c.Status(status).JSON(Envelope{Message: msg, TripPlanID: tripPlanID})
}
