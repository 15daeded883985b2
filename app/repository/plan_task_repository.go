package repository

import (
	"context"
	"errors"
	"time"

	"github.com/tripcraft/planner/app/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// planTaskRepository implements the PlanTaskRepository interface
type planTaskRepository struct {
	db *gorm.DB
}

// NewPlanTaskRepository creates a new plan task repository instance
func NewPlanTaskRepository(db *gorm.DB) PlanTaskRepository {
	return &planTaskRepository{db: db}
}

// Create appends a queued task for an existing trip plan
func (r *planTaskRepository) Create(ctx context.Context, tripPlanID, taskType string, input datatypes.JSON) (*models.PlanTask, error) {
	task := &models.PlanTask{
		TripPlanID: tripPlanID,
		TaskType:   taskType,
		Status:     models.TaskStatusQueued,
		InputData:  input,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.TripPlan{}).Where("id = ?", tripPlanID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTripPlanNotFound
		}
		return tx.Create(task).Error
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// GetByID retrieves a task by its ID
func (r *planTaskRepository) GetByID(ctx context.Context, id uint) (*models.PlanTask, error) {
	var task models.PlanTask
	err := r.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByTripPlanID returns all tasks of a plan, newest first
func (r *planTaskRepository) ListByTripPlanID(ctx context.Context, tripPlanID string) ([]models.PlanTask, error) {
	var tasks []models.PlanTask
	err := r.db.WithContext(ctx).
		Where("trip_plan_id = ?", tripPlanID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	return tasks, err
}

// MarkInProgress moves a queued task to in_progress
func (r *planTaskRepository) MarkInProgress(ctx context.Context, id uint) error {
	return r.transition(ctx, id, models.TaskStatusInProgress, map[string]interface{}{})
}

// MarkSuccess finishes a task with its output document
func (r *planTaskRepository) MarkSuccess(ctx context.Context, id uint, output datatypes.JSON) error {
	return r.transition(ctx, id, models.TaskStatusSuccess, map[string]interface{}{
		"output_data":   output,
		"error_message": nil,
	})
}

// MarkError finishes a task with an error message
func (r *planTaskRepository) MarkError(ctx context.Context, id uint, message string) error {
	msg := models.TruncateErrorMessage(message)
	return r.transition(ctx, id, models.TaskStatusError, map[string]interface{}{
		"error_message": msg,
	})
}

// CountByStatus returns the number of tasks in the given status
func (r *planTaskRepository) CountByStatus(ctx context.Context, status models.TaskStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PlanTask{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// transition applies a conditional update so that status and updated_at change
// together and only from an allowed source state.
func (r *planTaskRepository) transition(ctx context.Context, id uint, target models.TaskStatus, fields map[string]interface{}) error {
	fields["status"] = target
	fields["updated_at"] = time.Now()

	db := r.db.WithContext(ctx)
	tx := db.Model(&models.PlanTask{}).
		Where("id = ? AND status IN ?", id, models.AllowedSourceStatuses(target)).
		Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the task is unknown or it is in a state that
	// does not allow the move.
	var task models.PlanTask
	if err := db.Select("id", "status").First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gorm.ErrRecordNotFound
		}
		return err
	}
	return ErrInvalidTransition
}
