package planner

import (
	"gorm.io/datatypes"

	"github.com/tripcraft/planner/app/models"
)

// TravelDates is the date range as entered by the user
type TravelDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Submission is the trip planning form as posted by the client.
// Numeric fields are pointers so that an omitted value can be told apart from zero.
type Submission struct {
	Name             string      `json:"name"`
	Destination      string      `json:"destination"`
	StartingLocation string      `json:"startingLocation"`
	TravelDates      TravelDates `json:"travelDates"`
	DateInputType    string      `json:"dateInputType"`
	Duration         *int        `json:"duration"`
	TravelingWith    string      `json:"travelingWith"`
	Adults           *int        `json:"adults"`
	Children         *int        `json:"children"`
	AgeGroups        []string    `json:"ageGroups"`
	Budget           int         `json:"budget"`
	BudgetCurrency   string      `json:"budgetCurrency"`
	TravelStyle      string      `json:"travelStyle"`
	BudgetFlexible   bool        `json:"budgetFlexible"`
	Vibes            []string    `json:"vibes"`
	Priorities       []string    `json:"priorities"`
	Interests        *string     `json:"interests"`
	Rooms            *int        `json:"rooms"`
	Pace             []int       `json:"pace"`
	BeenThereBefore  *string     `json:"beenThereBefore"`
	LovedPlaces      *string     `json:"lovedPlaces"`
	AdditionalInfo   *string     `json:"additionalInfo"`
}

// TripPlan converts the submission into an unsaved plan with defaults applied
func (s Submission) TripPlan() *models.TripPlan {
	plan := &models.TripPlan{
		Name:             s.Name,
		Destination:      s.Destination,
		StartingLocation: s.StartingLocation,
		TravelDateStart:  s.TravelDates.Start,
		TravelDateEnd:    s.TravelDates.End,
		DateInputType:    s.DateInputType,
		Duration:         s.Duration,
		TravelingWith:    s.TravelingWith,
		Adults:           intOr(s.Adults, models.DefaultAdults),
		Children:         intOr(s.Children, models.DefaultChildren),
		Budget:           s.Budget,
		BudgetCurrency:   s.BudgetCurrency,
		TravelStyle:      s.TravelStyle,
		BudgetFlexible:   s.BudgetFlexible,
		Interests:        s.Interests,
		Rooms:            intOr(s.Rooms, models.DefaultRooms),
		BeenThereBefore:  s.BeenThereBefore,
		LovedPlaces:      s.LovedPlaces,
		AdditionalInfo:   s.AdditionalInfo,
	}
	if s.AgeGroups != nil {
		plan.AgeGroups = datatypes.JSONSlice[string](s.AgeGroups)
	}
	if s.Vibes != nil {
		plan.Vibes = datatypes.JSONSlice[string](s.Vibes)
	}
	if s.Priorities != nil {
		plan.Priorities = datatypes.JSONSlice[string](s.Priorities)
	}
	if s.Pace != nil {
		plan.Pace = datatypes.JSONSlice[int](s.Pace)
	}
	plan.ApplyDefaults()
	return plan
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
