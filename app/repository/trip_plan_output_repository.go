package repository

import (
	"context"

	"github.com/tripcraft/planner/app/models"
	"gorm.io/gorm"
)

type tripPlanOutputRepository struct {
	db *gorm.DB
}

// NewTripPlanOutputRepository creates a new output repository instance
func NewTripPlanOutputRepository(db *gorm.DB) TripPlanOutputRepository {
	return &tripPlanOutputRepository{db: db}
}

func (r *tripPlanOutputRepository) Create(ctx context.Context, output *models.TripPlanOutput) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TripPlan{}).Where("id = ?", output.TripPlanID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTripPlanNotFound
		}
		return tx.Create(output).Error
	})
}

func (r *tripPlanOutputRepository) GetLatestByTripPlanID(ctx context.Context, tripPlanID string) (*models.TripPlanOutput, error) {
	var output models.TripPlanOutput
	err := r.db.WithContext(ctx).
		Where("trip_plan_id = ?", tripPlanID).
		Order("created_at DESC").
		Order("id DESC").
		First(&output).Error
	if err != nil {
		return nil, err
	}
	return &output, nil
}
