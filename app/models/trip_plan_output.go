package models

import (
	"time"

	"gorm.io/datatypes"
)

// TripPlanOutput holds a generated itinerary reported by the planning backend
type TripPlanOutput struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TripPlanID string         `gorm:"type:varchar(36);not null;index:idx_output_trip_plan_id" json:"trip_plan_id"`
	Itinerary  datatypes.JSON `gorm:"type:json" json:"itinerary"`
	Summary    string         `gorm:"type:text" json:"summary"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for TripPlanOutput
func (TripPlanOutput) TableName() string {
	return "trip_plan_outputs"
}
