package planner

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/tripcraft/planner/app/models"
	"github.com/tripcraft/planner/app/repository"
	"github.com/tripcraft/planner/internal/pkg/backend"
)

var errStore = errors.New("store unavailable")

type statusWrite struct {
	Status models.PlanStatus
	Step   string
}

// fakeStore implements every repository interface over maps
type fakeStore struct {
	mu       sync.Mutex
	plans    map[string]*models.TripPlan
	statuses map[string]*models.TripPlanStatus
	tasks    map[uint]*models.PlanTask
	outputs  []*models.TripPlanOutput
	writes   []statusWrite
	nextID   uint

	failCreate  bool
	failUpsert  func(status models.PlanStatus) bool
	panicOnLoad bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		plans:    map[string]*models.TripPlan{},
		statuses: map[string]*models.TripPlanStatus{},
		tasks:    map[uint]*models.PlanTask{},
	}
}

func (f *fakeStore) repositories() *repository.Repositories {
	return &repository.Repositories{
		TripPlan: fakePlans{f},
		Status:   fakeStatuses{f},
		Task:     fakeTasks{f},
		Output:   fakeOutputs{f},
	}
}

func (f *fakeStore) status(id string) *models.TripPlanStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[id]
}

func (f *fakeStore) upsert(id string, u models.StatusUpdate) (*models.TripPlanStatus, error) {
	if f.failUpsert != nil && f.failUpsert(u.Status) {
		return nil, errStore
	}
	st := &models.TripPlanStatus{TripPlanID: id, Status: u.Status, CurrentStep: u.Step, UpdatedAt: time.Now()}
	if u.Status == models.PlanStatusFailed && u.Error != "" {
		msg := u.Error
		st.Error = &msg
	}
	f.statuses[id] = st
	f.writes = append(f.writes, statusWrite{Status: u.Status, Step: u.Step})
	return st, nil
}

type fakePlans struct{ f *fakeStore }

func (p fakePlans) CreateWithStatus(_ context.Context, plan *models.TripPlan, status models.PlanStatus, step string) error {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if p.f.failCreate {
		return errStore
	}
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if _, err := p.f.upsert(plan.ID, models.StatusUpdate{Status: status, Step: step}); err != nil {
		return err
	}
	p.f.plans[plan.ID] = plan
	return nil
}

func (p fakePlans) GetByID(_ context.Context, id string) (*models.TripPlan, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	if p.f.panicOnLoad {
		panic("corrupt plan row")
	}
	plan, ok := p.f.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

func (p fakePlans) Exists(_ context.Context, id string) (bool, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	_, ok := p.f.plans[id]
	return ok, nil
}

func (p fakePlans) Count(context.Context) (int64, error) {
	p.f.mu.Lock()
	defer p.f.mu.Unlock()
	return int64(len(p.f.plans)), nil
}

type fakeStatuses struct{ f *fakeStore }

func (s fakeStatuses) Upsert(_ context.Context, id string, u models.StatusUpdate) (*models.TripPlanStatus, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	return s.f.upsert(id, u)
}

func (s fakeStatuses) GetByTripPlanID(_ context.Context, id string) (*models.TripPlanStatus, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	st, ok := s.f.statuses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return st, nil
}

type fakeTasks struct{ f *fakeStore }

func (t fakeTasks) Create(_ context.Context, tripPlanID, taskType string, input datatypes.JSON) (*models.PlanTask, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	if _, ok := t.f.plans[tripPlanID]; !ok {
		return nil, repository.ErrTripPlanNotFound
	}
	t.f.nextID++
	task := &models.PlanTask{
		ID:         t.f.nextID,
		TripPlanID: tripPlanID,
		TaskType:   taskType,
		Status:     models.TaskStatusQueued,
		InputData:  input,
		CreatedAt:  time.Now(),
	}
	t.f.tasks[task.ID] = task
	return task, nil
}

func (t fakeTasks) GetByID(_ context.Context, id uint) (*models.PlanTask, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	task, ok := t.f.tasks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return task, nil
}

func (t fakeTasks) ListByTripPlanID(_ context.Context, tripPlanID string) ([]models.PlanTask, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	var out []models.PlanTask
	for _, task := range t.f.tasks {
		if task.TripPlanID == tripPlanID {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (t fakeTasks) transition(id uint, target models.TaskStatus, apply func(*models.PlanTask)) error {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	task, ok := t.f.tasks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for _, from := range models.AllowedSourceStatuses(target) {
		if task.Status == from {
			task.Status = target
			apply(task)
			return nil
		}
	}
	return repository.ErrInvalidTransition
}

func (t fakeTasks) MarkInProgress(_ context.Context, id uint) error {
	return t.transition(id, models.TaskStatusInProgress, func(*models.PlanTask) {})
}

func (t fakeTasks) MarkSuccess(_ context.Context, id uint, output datatypes.JSON) error {
	return t.transition(id, models.TaskStatusSuccess, func(task *models.PlanTask) { task.OutputData = output })
}

func (t fakeTasks) MarkError(_ context.Context, id uint, message string) error {
	return t.transition(id, models.TaskStatusError, func(task *models.PlanTask) {
		msg := models.TruncateErrorMessage(message)
		task.ErrorMessage = &msg
	})
}

func (t fakeTasks) CountByStatus(_ context.Context, status models.TaskStatus) (int64, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	var n int64
	for _, task := range t.f.tasks {
		if task.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeOutputs struct{ f *fakeStore }

func (o fakeOutputs) Create(_ context.Context, out *models.TripPlanOutput) error {
	o.f.mu.Lock()
	defer o.f.mu.Unlock()
	if _, ok := o.f.plans[out.TripPlanID]; !ok {
		return repository.ErrTripPlanNotFound
	}
	out.ID = uint(len(o.f.outputs) + 1)
	o.f.outputs = append(o.f.outputs, out)
	return nil
}

func (o fakeOutputs) GetLatestByTripPlanID(_ context.Context, tripPlanID string) (*models.TripPlanOutput, error) {
	o.f.mu.Lock()
	defer o.f.mu.Unlock()
	for i := len(o.f.outputs) - 1; i >= 0; i-- {
		if o.f.outputs[i].TripPlanID == tripPlanID {
			return o.f.outputs[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// fakeBackend records job requests and replies with a fixed result
type fakeBackend struct {
	mu       sync.Mutex
	requests []backend.JobRequest
	resp     json.RawMessage
	err      error
}

func (b *fakeBackend) TriggerPlan(_ context.Context, req backend.JobRequest) (json.RawMessage, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	return b.resp, nil
}

func (b *fakeBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}
