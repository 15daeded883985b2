package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/internal/pkg/planner"
)

// stubPlanner returns canned results and records its inputs
type stubPlanner struct {
	triggerRes *planner.TriggerResult
	retryResp  json.RawMessage
	status     *models.TripPlanStatus
	details    *planner.PlanDetails
	task       *models.PlanTask
	output     *models.TripPlanOutput
	err        error

	gotSubmission planner.Submission
	gotUserID     *uint
	gotID         string
	gotTaskID     uint
	gotUpdate     models.StatusUpdate
	gotDocument   datatypes.JSON
	gotText       string
}

func (s *stubPlanner) Trigger(_ context.Context, sub planner.Submission, userID *uint) (*planner.TriggerResult, error) {
	s.gotSubmission, s.gotUserID = sub, userID
	return s.triggerRes, s.err
}

func (s *stubPlanner) Retry(_ context.Context, id string) (json.RawMessage, error) {
	s.gotID = id
	return s.retryResp, s.err
}

func (s *stubPlanner) GetStatus(_ context.Context, id string) (*models.TripPlanStatus, error) {
	s.gotID = id
	return s.status, s.err
}

func (s *stubPlanner) GetPlan(_ context.Context, id string) (*planner.PlanDetails, error) {
	s.gotID = id
	return s.details, s.err
}

func (s *stubPlanner) UpdateStatus(_ context.Context, id string, update models.StatusUpdate) (*models.TripPlanStatus, error) {
	s.gotID, s.gotUpdate = id, update
	return s.status, s.err
}

func (s *stubPlanner) CreateTask(_ context.Context, id, taskType string, input datatypes.JSON) (*models.PlanTask, error) {
	s.gotID, s.gotText, s.gotDocument = id, taskType, input
	return s.task, s.err
}

func (s *stubPlanner) StartTask(_ context.Context, taskID uint) error {
	s.gotTaskID = taskID
	return s.err
}

func (s *stubPlanner) CompleteTask(_ context.Context, taskID uint, output datatypes.JSON) error {
	s.gotTaskID, s.gotDocument = taskID, output
	return s.err
}

func (s *stubPlanner) FailTask(_ context.Context, taskID uint, message string) error {
	s.gotTaskID, s.gotText = taskID, message
	return s.err
}

func (s *stubPlanner) SaveOutput(_ context.Context, id string, itinerary datatypes.JSON, summary string) (*models.TripPlanOutput, error) {
	s.gotID, s.gotDocument, s.gotText = id, itinerary, summary
	return s.output, s.err
}

func newPlanApp(p PlannerService, userID func(*fiber.Ctx) *uint) *fiber.App {
	pc := NewPlanController(p, userID)
	app := fiber.New()
	app.Post("/plans", pc.HandleCreatePlan)
	app.Post("/plans/:id/retry", pc.HandleRetryPlan)
	app.Get("/plans/:id", pc.HandleGetPlan)
	app.Get("/plans/:id/status", pc.HandleGetPlanStatus)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestHandleCreatePlan_Success(t *testing.T) {
	stub := &stubPlanner{triggerRes: &planner.TriggerResult{
		TripPlanID: "plan-1",
		Response:   json.RawMessage(`{"status":"accepted"}`),
	}}
	uid := uint(3)
	app := newPlanApp(stub, func(*fiber.Ctx) *uint { return &uid })

	code, body := doJSON(t, app, http.MethodPost, "/plans",
		`{"name":"Trip1","destination":"Tokyo","startingLocation":"NYC","travelDates":{"start":"2024-07-01","end":""},"adults":2}`)

	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "plan-1", body["tripPlanId"])
	assert.Equal(t, map[string]any{"status": "accepted"}, body["response"])

	assert.Equal(t, "Tokyo", stub.gotSubmission.Destination)
	assert.Equal(t, "2024-07-01", stub.gotSubmission.TravelDates.Start)
	require.NotNil(t, stub.gotSubmission.Adults)
	assert.Equal(t, 2, *stub.gotSubmission.Adults)
	assert.Nil(t, stub.gotSubmission.Rooms)
	require.NotNil(t, stub.gotUserID)
	assert.Equal(t, uint(3), *stub.gotUserID)
}

func TestHandleCreatePlan_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		res        *planner.TriggerResult
		err        error
		wantStatus int
		wantID     any
		wantMsg    string
	}{
		{
			name:       "malformed json",
			body:       `{"name":`,
			wantStatus: fiber.StatusBadRequest,
			wantMsg:    MsgInvalidBody,
		},
		{
			name:       "validation",
			body:       `{"name":"x"}`,
			err:        &planner.ValidationError{Fields: []string{"destination", "startingLocation"}},
			wantStatus: fiber.StatusBadRequest,
			wantMsg:    MsgMissingFields + "destination, startingLocation",
		},
		{
			name:       "backend failure keeps id",
			body:       `{"name":"x","destination":"y","startingLocation":"z"}`,
			res:        &planner.TriggerResult{TripPlanID: "plan-2"},
			err:        &planner.TransportError{Err: errors.New("dial tcp: refused")},
			wantStatus: fiber.StatusInternalServerError,
			wantID:     "plan-2",
			wantMsg:    MsgBackendFailed,
		},
		{
			name:       "persistence failure",
			body:       `{"name":"x","destination":"y","startingLocation":"z"}`,
			err:        &planner.PersistenceError{Op: "create trip plan", Err: errors.New("deadlock")},
			wantStatus: fiber.StatusInternalServerError,
			wantMsg:    MsgStorageFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubPlanner{triggerRes: tt.res, err: tt.err}
			code, body := doJSON(t, newPlanApp(stub, nil), http.MethodPost, "/plans", tt.body)

			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.Equal(t, tt.wantID, body["tripPlanId"])
			assert.NotContains(t, body, "response")
		})
	}
}

func TestHandleRetryPlan(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubPlanner{retryResp: json.RawMessage(`{"status":"restarted"}`)}
		code, body := doJSON(t, newPlanApp(stub, nil), http.MethodPost, "/plans/plan-1/retry", "")

		assert.Equal(t, fiber.StatusOK, code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "plan-1", body["tripPlanId"])
		assert.Equal(t, "plan-1", stub.gotID)
	})

	t.Run("not found", func(t *testing.T) {
		stub := &stubPlanner{err: &planner.NotFoundError{Kind: "trip plan", ID: "nope"}}
		code, body := doJSON(t, newPlanApp(stub, nil), http.MethodPost, "/plans/nope/retry", "")

		assert.Equal(t, fiber.StatusNotFound, code)
		assert.Equal(t, MsgPlanNotFound, body["message"])
	})

	t.Run("unexpected", func(t *testing.T) {
		stub := &stubPlanner{err: planner.ErrUnexpected}
		code, body := doJSON(t, newPlanApp(stub, nil), http.MethodPost, "/plans/plan-1/retry", "")

		assert.Equal(t, fiber.StatusInternalServerError, code)
		assert.Equal(t, MsgInternalError, body["message"])
	})
}

func TestHandleGetPlanStatus(t *testing.T) {
	stub := &stubPlanner{status: &models.TripPlanStatus{
		TripPlanID:  "plan-1",
		Status:      models.PlanStatusProcessing,
		CurrentStep: "generation started",
	}}
	code, body := doJSON(t, newPlanApp(stub, nil), http.MethodGet, "/plans/plan-1/status", "")

	assert.Equal(t, fiber.StatusOK, code)
	resp := body["response"].(map[string]any)
	assert.Equal(t, "processing", resp["status"])
	assert.Equal(t, "generation started", resp["current_step"])
}

func TestHandleGetPlan(t *testing.T) {
	stub := &stubPlanner{details: &planner.PlanDetails{
		Plan:  &models.TripPlan{ID: "plan-1", Destination: "Tokyo"},
		Tasks: []models.PlanTask{},
	}}
	code, body := doJSON(t, newPlanApp(stub, nil), http.MethodGet, "/plans/plan-1", "")

	assert.Equal(t, fiber.StatusOK, code)
	resp := body["response"].(map[string]any)
	assert.Equal(t, "Tokyo", resp["plan"].(map[string]any)["destination"])
	assert.Equal(t, []any{}, resp["tasks"])
	assert.Nil(t, resp["output"])
}
