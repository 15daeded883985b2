package models

import (
	"time"
	"unicode/utf8"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskStatus defines the possible plan task states
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusSuccess    TaskStatus = "success"
	TaskStatusError      TaskStatus = "error"
)

const (
	TaskTypePlanGeneration = "travel_plan_generation"

	MaxTaskErrorLength = 1000
)

// IsTerminal reports whether no further transition is allowed
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusSuccess || s == TaskStatusError
}

// PlanTask is one unit of backend work for a trip plan. Rows are kept for audit.
type PlanTask struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	TripPlanID   string         `gorm:"type:varchar(36);not null;index:idx_trip_plan_id" json:"trip_plan_id"`
	TaskType     string         `gorm:"type:varchar(100);not null" json:"task_type"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'queued';index:idx_task_status" json:"status"`
	InputData    datatypes.JSON `gorm:"type:json" json:"input_data"`
	OutputData   datatypes.JSON `gorm:"type:json;default:null" json:"output_data"`
	ErrorMessage *string        `gorm:"type:varchar(1000);default:null" json:"error_message"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_task_created_at" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for PlanTask
func (PlanTask) TableName() string {
	return "plan_tasks"
}

// BeforeCreate sets default values before creating a new task record
func (t *PlanTask) BeforeCreate(tx *gorm.DB) error {
	if t.Status == "" {
		t.Status = TaskStatusQueued
	}
	return nil
}

// AllowedSourceStatuses returns the states a task may be in before moving to target.
func AllowedSourceStatuses(target TaskStatus) []TaskStatus {
	switch target {
	case TaskStatusInProgress:
		return []TaskStatus{TaskStatusQueued}
	case TaskStatusSuccess, TaskStatusError:
		return []TaskStatus{TaskStatusQueued, TaskStatusInProgress}
	}
	return nil
}

// TruncateErrorMessage cuts msg to MaxTaskErrorLength characters
func TruncateErrorMessage(msg string) string {
	if utf8.RuneCountInString(msg) <= MaxTaskErrorLength {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:MaxTaskErrorLength])
}
