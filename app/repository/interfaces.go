package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tripcraft/planner/app/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrTripPlanNotFound is returned when a write references an unknown trip plan
	ErrTripPlanNotFound = errors.New("trip plan not found")
	// ErrInvalidTransition is returned when a task is not in a state that allows the requested move
	ErrInvalidTransition = errors.New("invalid task status transition")
)

// TripPlanRepository defines the interface for trip plan database operations
type TripPlanRepository interface {
	CreateWithStatus(ctx context.Context, plan *models.TripPlan, status models.PlanStatus, step string) error
	GetByID(ctx context.Context, id string) (*models.TripPlan, error)
	Exists(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// TripPlanStatusRepository defines the interface for the status projection
type TripPlanStatusRepository interface {
	Upsert(ctx context.Context, tripPlanID string, update models.StatusUpdate) (*models.TripPlanStatus, error)
	GetByTripPlanID(ctx context.Context, tripPlanID string) (*models.TripPlanStatus, error)
}

// PlanTaskRepository defines the interface for the plan task ledger
type PlanTaskRepository interface {
	Create(ctx context.Context, tripPlanID, taskType string, input datatypes.JSON) (*models.PlanTask, error)
	GetByID(ctx context.Context, id uint) (*models.PlanTask, error)
	ListByTripPlanID(ctx context.Context, tripPlanID string) ([]models.PlanTask, error)
	MarkInProgress(ctx context.Context, id uint) error
	MarkSuccess(ctx context.Context, id uint, output datatypes.JSON) error
	MarkError(ctx context.Context, id uint, message string) error
	CountByStatus(ctx context.Context, status models.TaskStatus) (int64, error)
}

// TripPlanOutputRepository defines the interface for generated itineraries
type TripPlanOutputRepository interface {
	Create(ctx context.Context, output *models.TripPlanOutput) error
	GetLatestByTripPlanID(ctx context.Context, tripPlanID string) (*models.TripPlanOutput, error)
}

// StatusCache is the key/value store used to serve status reads.
// SetNX only writes when the key is absent and reports whether it did.
type StatusCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	TripPlan TripPlanRepository
	Status   TripPlanStatusRepository
	Task     PlanTaskRepository
	Output   TripPlanOutputRepository
}

// NewRepositories creates a new instance of all repositories. A nil cache
// disables status caching.
func NewRepositories(db *gorm.DB, cache StatusCache) *Repositories {
	var status TripPlanStatusRepository = NewTripPlanStatusRepository(db)
	if cache != nil {
		status = NewCachedTripPlanStatusRepository(status, cache, DefaultStatusCacheTTL)
	}
	return &Repositories{
		TripPlan: NewTripPlanRepository(db),
		Status:   status,
		Task:     NewPlanTaskRepository(db),
		Output:   NewTripPlanOutputRepository(db),
	}
}
