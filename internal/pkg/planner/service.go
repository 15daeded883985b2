package planner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/app/repository"
	"github.com/tripcraft/planner/internal/pkg/backend"
)

// Human readable status steps
const (
	StepQueued            = "queued for generation"
	StepGenerationStarted = "generation started"
	StepTriggerFailed     = "failed to start generation"
	StepRestarting        = "restarting generation"
	StepRetryFailed       = "retry failed: backend unavailable"
	StepUnexpectedFailure = "generation failed: internal error"
)

// Failure reasons stored on the status. They never carry internal details.
const (
	ReasonBackendUnavailable = "planning backend unavailable"
	ReasonInternalError      = "internal error"
)

// bestEffortTimeout bounds status writes that record a failure
const bestEffortTimeout = 5 * time.Second

// Backend triggers plan generation on the external planning service
type Backend interface {
	TriggerPlan(ctx context.Context, req backend.JobRequest) (json.RawMessage, error)
}

// TriggerResult is returned by Trigger. TripPlanID is set whenever the plan
// was stored, even if the backend call failed.
type TriggerResult struct {
	TripPlanID string
	Response   json.RawMessage
}

// PlanDetails is the stored state of one plan
type PlanDetails struct {
	Plan   *models.TripPlan       `json:"plan"`
	Status *models.TripPlanStatus `json:"status"`
	Tasks  []models.PlanTask      `json:"tasks"`
	Output *models.TripPlanOutput `json:"output"`
}

// Service implements the trip plan lifecycle: submission, retry, status
// tracking and the task ledger written by the planning backend.
type Service struct {
	plans    repository.TripPlanRepository
	statuses repository.TripPlanStatusRepository
	tasks    repository.PlanTaskRepository
	outputs  repository.TripPlanOutputRepository
	backend  Backend
}

// NewService creates a planner service from injected repositories and backend.
func NewService(repos *repository.Repositories, b Backend) *Service {
	return &Service{
		plans:    repos.TripPlan,
		statuses: repos.Status,
		tasks:    repos.Task,
		outputs:  repos.Output,
		backend:  b,
	}
}

// Trigger validates and stores a submission, then starts generation on the backend.
// A backend failure does not remove the stored plan; the result still carries its id.
func (s *Service) Trigger(ctx context.Context, sub Submission, userID *uint) (*TriggerResult, error) {
	plan := sub.TripPlan()
	if missing := plan.MissingRequiredFields(); len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}
	plan.UserID = userID
	if err := plan.Validate(); err != nil {
		return nil, newValidationError(err)
	}

	if err := s.plans.CreateWithStatus(ctx, plan, models.PlanStatusQueued, StepQueued); err != nil {
		log.Errorf("[Planner] Failed to store trip plan: %v", err)
		return nil, &PersistenceError{Op: "create trip plan", Err: err}
	}
	log.Infof("[Planner] Trip plan %s created (destination=%s)", plan.ID, plan.Destination)

	result := &TriggerResult{TripPlanID: plan.ID}
	resp, err := s.backend.TriggerPlan(ctx, backend.NewJobRequest(plan))
	if err != nil {
		log.Errorf("[Planner] Backend trigger for %s failed: %v", plan.ID, err)
		s.recordFailure(ctx, plan.ID, StepTriggerFailed, ReasonBackendUnavailable)
		return result, &TransportError{Err: err}
	}

	if _, err := s.statuses.Upsert(ctx, plan.ID, models.StatusUpdate{Status: models.PlanStatusProcessing, Step: StepGenerationStarted}); err != nil {
		log.Errorf("[Planner] Failed to mark %s as processing: %v", plan.ID, err)
	}
	result.Response = resp
	return result, nil
}

// Retry restarts generation for a stored plan using the stored submission.
// The status is set to processing before the backend is called.
func (s *Service) Retry(ctx context.Context, tripPlanID string) (resp json.RawMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Planner] Retry for %s panicked: %v", tripPlanID, r)
			s.recordFailure(ctx, tripPlanID, StepUnexpectedFailure, ReasonInternalError)
			resp = nil
			err = fmt.Errorf("%w: %v", ErrUnexpected, r)
		}
	}()

	plan, err := s.plans.GetByID(ctx, tripPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "trip plan", ID: tripPlanID}
		}
		log.Errorf("[Planner] Failed to load trip plan %s: %v", tripPlanID, err)
		s.recordFailure(ctx, tripPlanID, StepUnexpectedFailure, ReasonInternalError)
		return nil, &PersistenceError{Op: "load trip plan", Err: err}
	}

	if _, err := s.statuses.Upsert(ctx, plan.ID, models.StatusUpdate{Status: models.PlanStatusProcessing, Step: StepRestarting}); err != nil {
		log.Errorf("[Planner] Failed to mark %s as restarting: %v", plan.ID, err)
		s.recordFailure(ctx, plan.ID, StepUnexpectedFailure, ReasonInternalError)
		return nil, &PersistenceError{Op: "update trip plan status", Err: err}
	}
	log.Infof("[Planner] Retrying generation for %s", plan.ID)

	resp, err = s.backend.TriggerPlan(ctx, backend.NewJobRequest(plan))
	if err != nil {
		log.Errorf("[Planner] Backend retry for %s failed: %v", plan.ID, err)
		s.recordFailure(ctx, plan.ID, StepRetryFailed, ReasonBackendUnavailable)
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// recordFailure marks a plan failed. It runs on a detached context so that a
// cancelled request can still record the outcome, and it never returns an error.
func (s *Service) recordFailure(ctx context.Context, tripPlanID, step, reason string) {
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bestEffortTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Planner] Recording failure for %s panicked: %v", tripPlanID, r)
		}
	}()

	update := models.StatusUpdate{Status: models.PlanStatusFailed, Step: step, Error: reason}
	if _, err := s.statuses.Upsert(wctx, tripPlanID, update); err != nil {
		log.Errorf("[Planner] Failed to mark %s as failed: %v", tripPlanID, err)
	}
}

// GetStatus returns the current status projection of a plan
func (s *Service) GetStatus(ctx context.Context, tripPlanID string) (*models.TripPlanStatus, error) {
	st, err := s.statuses.GetByTripPlanID(ctx, tripPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "trip plan status", ID: tripPlanID}
		}
		return nil, &PersistenceError{Op: "load trip plan status", Err: err}
	}
	return st, nil
}

// GetPlan returns a plan together with its status, tasks and latest output
func (s *Service) GetPlan(ctx context.Context, tripPlanID string) (*PlanDetails, error) {
	plan, err := s.plans.GetByID(ctx, tripPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "trip plan", ID: tripPlanID}
		}
		return nil, &PersistenceError{Op: "load trip plan", Err: err}
	}

	details := &PlanDetails{Plan: plan, Tasks: []models.PlanTask{}}

	st, err := s.statuses.GetByTripPlanID(ctx, tripPlanID)
	switch {
	case err == nil:
		details.Status = st
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &PersistenceError{Op: "load trip plan status", Err: err}
	}

	tasks, err := s.tasks.ListByTripPlanID(ctx, tripPlanID)
	if err != nil {
		return nil, &PersistenceError{Op: "list plan tasks", Err: err}
	}
	if tasks != nil {
		details.Tasks = tasks
	}

	out, err := s.outputs.GetLatestByTripPlanID(ctx, tripPlanID)
	switch {
	case err == nil:
		details.Output = out
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, &PersistenceError{Op: "load trip plan output", Err: err}
	}

	return details, nil
}

// UpdateStatus is the out-of-band status write used by the planning backend.
// An error message is only stored for failed plans.
func (s *Service) UpdateStatus(ctx context.Context, tripPlanID string, update models.StatusUpdate) (*models.TripPlanStatus, error) {
	if !update.Status.IsValid() {
		return nil, &ValidationError{Fields: []string{"status"}}
	}
	if update.StartedAt != nil && update.CompletedAt != nil && update.CompletedAt.Before(*update.StartedAt) {
		return nil, &ValidationError{Fields: []string{"completedAt"}}
	}
	if err := s.requirePlan(ctx, tripPlanID); err != nil {
		return nil, err
	}
	update.Step = strings.TrimSpace(update.Step)
	st, err := s.statuses.Upsert(ctx, tripPlanID, update)
	if err != nil {
		return nil, &PersistenceError{Op: "update trip plan status", Err: err}
	}
	log.Infof("[Planner] Status of %s set to %s by backend", tripPlanID, update.Status)
	return st, nil
}

// CreateTask appends a queued task for a plan
func (s *Service) CreateTask(ctx context.Context, tripPlanID, taskType string, input datatypes.JSON) (*models.PlanTask, error) {
	taskType = strings.TrimSpace(taskType)
	if taskType == "" {
		taskType = models.TaskTypePlanGeneration
	}
	if len(input) == 0 {
		input = datatypes.JSON("{}")
	}
	task, err := s.tasks.Create(ctx, tripPlanID, taskType, input)
	if err != nil {
		if errors.Is(err, repository.ErrTripPlanNotFound) {
			return nil, &NotFoundError{Kind: "trip plan", ID: tripPlanID}
		}
		return nil, &PersistenceError{Op: "create plan task", Err: err}
	}
	return task, nil
}

// StartTask marks a queued task as in progress
func (s *Service) StartTask(ctx context.Context, taskID uint) error {
	return s.taskTransition(taskID, s.tasks.MarkInProgress(ctx, taskID))
}

// CompleteTask marks a task successful with its output
func (s *Service) CompleteTask(ctx context.Context, taskID uint, output datatypes.JSON) error {
	if len(output) == 0 {
		output = datatypes.JSON("{}")
	}
	return s.taskTransition(taskID, s.tasks.MarkSuccess(ctx, taskID, output))
}

// FailTask marks a task as errored
func (s *Service) FailTask(ctx context.Context, taskID uint, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return &ValidationError{Fields: []string{"errorMessage"}}
	}
	return s.taskTransition(taskID, s.tasks.MarkError(ctx, taskID, message))
}

// SaveOutput stores a generated itinerary for a plan
func (s *Service) SaveOutput(ctx context.Context, tripPlanID string, itinerary datatypes.JSON, summary string) (*models.TripPlanOutput, error) {
	if len(itinerary) == 0 {
		return nil, &ValidationError{Fields: []string{"itinerary"}}
	}
	out := &models.TripPlanOutput{
		TripPlanID: tripPlanID,
		Itinerary:  itinerary,
		Summary:    strings.TrimSpace(summary),
	}
	if err := s.outputs.Create(ctx, out); err != nil {
		if errors.Is(err, repository.ErrTripPlanNotFound) {
			return nil, &NotFoundError{Kind: "trip plan", ID: tripPlanID}
		}
		return nil, &PersistenceError{Op: "store trip plan output", Err: err}
	}
	return out, nil
}

func (s *Service) taskTransition(taskID uint, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &NotFoundError{Kind: "plan task", ID: fmt.Sprint(taskID)}
	case errors.Is(err, repository.ErrInvalidTransition):
		return &ConflictError{TaskID: taskID, Err: err}
	default:
		return &PersistenceError{Op: "update plan task", Err: err}
	}
}

func (s *Service) requirePlan(ctx context.Context, tripPlanID string) error {
	ok, err := s.plans.Exists(ctx, tripPlanID)
	if err != nil {
		return &PersistenceError{Op: "load trip plan", Err: err}
	}
	if !ok {
		return &NotFoundError{Kind: "trip plan", ID: tripPlanID}
	}
	return nil
}

func newValidationError(err error) *ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Err: err}
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, lowerFirst(fe.Field()))
	}
	return &ValidationError{Fields: fields, Err: err}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
