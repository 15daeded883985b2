package repository

import (
	"context"
	"errors"

	"github.com/tripcraft/planner/app/models"
	"gorm.io/gorm"
)

// tripPlanRepository implements the TripPlanRepository interface
type tripPlanRepository struct {
	db *gorm.DB
}

// NewTripPlanRepository creates a new trip plan repository instance
func NewTripPlanRepository(db *gorm.DB) TripPlanRepository {
	return &tripPlanRepository{db: db}
}

// CreateWithStatus inserts the plan and its initial status in one transaction,
// so a failed status write leaves no plan row behind.
func (r *tripPlanRepository) CreateWithStatus(ctx context.Context, plan *models.TripPlan, status models.PlanStatus, step string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(plan).Error; err != nil {
			return err
		}
		_, err := models.UpsertTripPlanStatus(tx, plan.ID, models.StatusUpdate{Status: status, Step: step})
		return err
	})
}

// GetByID retrieves a trip plan by its identifier
func (r *tripPlanRepository) GetByID(ctx context.Context, id string) (*models.TripPlan, error) {
	return models.FindTripPlanByID(r.db.WithContext(ctx), id)
}

// Exists reports whether a plan with the given id is stored
func (r *tripPlanRepository) Exists(ctx context.Context, id string) (bool, error) {
	_, err := models.FindTripPlanByID(r.db.WithContext(ctx), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns the total number of plans
func (r *tripPlanRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TripPlan{}).Count(&count).Error
	return count, err
}
