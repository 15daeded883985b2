package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlanStatus is the current state of a trip plan's generation
type PlanStatus string

const (
	PlanStatusQueued     PlanStatus = "queued"
	PlanStatusProcessing PlanStatus = "processing"
	PlanStatusSuccess    PlanStatus = "success"
	PlanStatusFailed     PlanStatus = "failed"
)

// IsValid reports whether s is one of the known plan statuses
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusQueued, PlanStatusProcessing, PlanStatusSuccess, PlanStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether generation has finished, successfully or not
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusSuccess || s == PlanStatusFailed
}

// TripPlanStatus is the single current-status projection of a TripPlan.
// There is no history; every write replaces the previous state.
type TripPlanStatus struct {
	TripPlanID  string     `gorm:"type:varchar(36);primaryKey" json:"trip_plan_id"`
	Status      PlanStatus `gorm:"type:varchar(20);not null;default:'queued';index:idx_status" json:"status"`
	CurrentStep string     `gorm:"type:varchar(500);not null;default:''" json:"current_step"`
	Error       *string    `gorm:"type:varchar(1000)" json:"error"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// StatusUpdate is one write to the status projection.
// Error is kept for failed plans only. Missing timestamps are filled in
// from the status: processing starts the clock, success and failed stop it.
type StatusUpdate struct {
	Status      PlanStatus
	Step        string
	Error       string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// TableName returns the table name for TripPlanStatus
func (TripPlanStatus) TableName() string {
	return "trip_plan_statuses"
}

// UpsertTripPlanStatus writes u for a plan with a single upsert statement and
// returns the stored row. started_at survives writes that do not set it;
// error and completed_at are replaced on every write.
func UpsertTripPlanStatus(db *gorm.DB, tripPlanID string, u StatusUpdate) (*TripPlanStatus, error) {
	now := time.Now()
	row := &TripPlanStatus{
		TripPlanID:  tripPlanID,
		Status:      u.Status,
		CurrentStep: u.Step,
		StartedAt:   u.StartedAt,
		CompletedAt: u.CompletedAt,
		UpdatedAt:   now,
	}
	if row.StartedAt == nil && u.Status == PlanStatusProcessing {
		row.StartedAt = &now
	}
	if row.CompletedAt == nil && u.Status.IsTerminal() {
		row.CompletedAt = &now
	}
	if msg := strings.TrimSpace(u.Error); msg != "" && u.Status == PlanStatusFailed {
		msg = TruncateErrorMessage(msg)
		row.Error = &msg
	}

	columns := []string{"status", "current_step", "error", "completed_at", "updated_at"}
	if row.StartedAt != nil {
		columns = append(columns, "started_at")
	}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "trip_plan_id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return FindTripPlanStatus(db, tripPlanID)
}

// FindTripPlanStatus loads the status row of a plan
func FindTripPlanStatus(db *gorm.DB, tripPlanID string) (*TripPlanStatus, error) {
	var st TripPlanStatus
	err := db.Where("trip_plan_id = ?", tripPlanID).First(&st).Error
	if err != nil {
		return nil, err
	}
	return &st, nil
}
