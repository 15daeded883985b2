package models

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DATE_INPUT_PICKER = "picker"
	DATE_INPUT_TEXT   = "text"

	DefaultAdults         = 1
	DefaultChildren       = 0
	DefaultRooms          = 1
	DefaultBudgetCurrency = "USD"
	DefaultPace           = 3
)

// TripPlan is a submitted travel planning request.
type TripPlan struct {
	ID               string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string                      `gorm:"type:varchar(255);not null" json:"name" validate:"required,max=255"`
	Destination      string                      `gorm:"type:varchar(255);not null" json:"destination" validate:"required,max=255"`
	StartingLocation string                      `gorm:"type:varchar(255);not null" json:"starting_location" validate:"required,max=255"`
	TravelDateStart  string                      `gorm:"type:varchar(100);not null;default:''" json:"travel_date_start" validate:"max=100"`
	TravelDateEnd    string                      `gorm:"type:varchar(100);not null;default:''" json:"travel_date_end" validate:"max=100"`
	DateInputType    string                      `gorm:"type:varchar(20);not null;default:'picker'" json:"date_input_type" validate:"oneof=picker text"`
	Duration         *int                        `gorm:"default:null" json:"duration" validate:"omitempty,gte=0"`
	TravelingWith    string                      `gorm:"type:varchar(100);not null;default:''" json:"traveling_with" validate:"max=100"`
	Adults           int                         `gorm:"not null;default:1" json:"adults" validate:"gte=0"`
	Children         int                         `gorm:"not null;default:0" json:"children" validate:"gte=0"`
	AgeGroups        datatypes.JSONSlice[string] `gorm:"type:json" json:"age_groups"`
	Budget           int                         `gorm:"not null;default:0" json:"budget" validate:"gte=0"`
	BudgetCurrency   string                      `gorm:"type:varchar(10);not null;default:'USD'" json:"budget_currency" validate:"required,max=10"`
	TravelStyle      string                      `gorm:"type:varchar(50);not null;default:''" json:"travel_style" validate:"max=50"`
	BudgetFlexible   bool                        `gorm:"not null;default:false" json:"budget_flexible"`
	Vibes            datatypes.JSONSlice[string] `gorm:"type:json" json:"vibes"`
	Priorities       datatypes.JSONSlice[string] `gorm:"type:json" json:"priorities"`
	Interests        *string                     `gorm:"type:text;default:null" json:"interests"`
	BeenThereBefore  *string                     `gorm:"type:text;default:null" json:"been_there_before"`
	LovedPlaces      *string                     `gorm:"type:text;default:null" json:"loved_places"`
	AdditionalInfo   *string                     `gorm:"type:text;default:null" json:"additional_info"`
	Rooms            int                         `gorm:"not null;default:1" json:"rooms" validate:"gte=0"`
	Pace             datatypes.JSONSlice[int]    `gorm:"type:json" json:"pace"`
	UserID           *uint                       `gorm:"index;default:null" json:"user_id"`
	CreatedAt        time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name for TripPlan
func (TripPlan) TableName() string {
	return "trip_plans"
}

// BeforeCreate assigns a new identifier when none was set
func (tp *TripPlan) BeforeCreate(tx *gorm.DB) error {
	if tp.ID == "" {
		tp.ID = uuid.New().String()
	}
	return nil
}

// MissingRequiredFields returns the json names of required fields that are blank.
func (tp *TripPlan) MissingRequiredFields() []string {
	var missing []string
	if strings.TrimSpace(tp.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(tp.Destination) == "" {
		missing = append(missing, "destination")
	}
	if strings.TrimSpace(tp.StartingLocation) == "" {
		missing = append(missing, "startingLocation")
	}
	return missing
}

// ApplyDefaults fills optional fields that were left empty by the submitter.
// Counts are pointers on the submission side, so zero values here are kept.
func (tp *TripPlan) ApplyDefaults() {
	tp.Name = strings.TrimSpace(tp.Name)
	tp.Destination = strings.TrimSpace(tp.Destination)
	tp.StartingLocation = strings.TrimSpace(tp.StartingLocation)

	if tp.DateInputType == "" {
		tp.DateInputType = DATE_INPUT_PICKER
	}
	if tp.BudgetCurrency == "" {
		tp.BudgetCurrency = DefaultBudgetCurrency
	}
	if tp.AgeGroups == nil {
		tp.AgeGroups = datatypes.JSONSlice[string]{}
	}
	if tp.Vibes == nil {
		tp.Vibes = datatypes.JSONSlice[string]{}
	}
	if tp.Priorities == nil {
		tp.Priorities = datatypes.JSONSlice[string]{}
	}
	if len(tp.Pace) == 0 {
		tp.Pace = datatypes.JSONSlice[int]{DefaultPace}
	}

	tp.Interests = nullIfBlank(tp.Interests)
	tp.BeenThereBefore = nullIfBlank(tp.BeenThereBefore)
	tp.LovedPlaces = nullIfBlank(tp.LovedPlaces)
	tp.AdditionalInfo = nullIfBlank(tp.AdditionalInfo)
}

func (tp *TripPlan) Validate() error {
	v := validator.New()
	return v.Struct(tp)
}

func nullIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

// FindTripPlanByID loads a trip plan by its identifier
func FindTripPlanByID(db *gorm.DB, id string) (*TripPlan, error) {
	var plan TripPlan
	err := db.Where("id = ?", id).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}
