package backend

import "github.com/tripcraft/planner/app/models"

// JobRequest is the body of POST /api/plan/trigger
type JobRequest struct {
	TripPlanID string     `json:"trip_plan_id"`
	TravelPlan TravelPlan `json:"travel_plan"`
}

type TravelDates struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TravelPlan uses the planning backend's field names. Fields the plan leaves
// empty are sent as the backend's own zero values.
type TravelPlan struct {
	Name             string      `json:"name"`
	Destination      string      `json:"destination"`
	StartingLocation string      `json:"starting_location"`
	TravelDates      TravelDates `json:"travel_dates"`
	DateInputType    string      `json:"date_input_type"`
	Duration         int         `json:"duration"`
	TravelingWith    string      `json:"traveling_with"`
	Adults           int         `json:"adults"`
	Children         int         `json:"children"`
	AgeGroups        []string    `json:"age_groups"`
	Budget           int         `json:"budget"`
	BudgetCurrency   string      `json:"budget_currency"`
	TravelStyle      string      `json:"travel_style"`
	BudgetFlexible   bool        `json:"budget_flexible"`
	Vibes            []string    `json:"vibes"`
	Priorities       []string    `json:"priorities"`
	Interests        string      `json:"interests"`
	Rooms            int         `json:"rooms"`
	Pace             []int       `json:"pace"`
	BeenThereBefore  string      `json:"been_there_before"`
	LovedPlaces      string      `json:"loved_places"`
	AdditionalInfo   string      `json:"additional_info"`
}

// NewJobRequest builds the request for a stored plan. The same plan always
// yields the same request, which is what makes a retry a faithful replay.
func NewJobRequest(plan *models.TripPlan) JobRequest {
	return JobRequest{
		TripPlanID: plan.ID,
		TravelPlan: TravelPlan{
			Name:             plan.Name,
			Destination:      plan.Destination,
			StartingLocation: plan.StartingLocation,
			TravelDates: TravelDates{
				Start: plan.TravelDateStart,
				End:   plan.TravelDateEnd,
			},
			DateInputType:   plan.DateInputType,
			Duration:        derefInt(plan.Duration),
			TravelingWith:   plan.TravelingWith,
			Adults:          plan.Adults,
			Children:        plan.Children,
			AgeGroups:       nonNilStrings(plan.AgeGroups),
			Budget:          plan.Budget,
			BudgetCurrency:  plan.BudgetCurrency,
			TravelStyle:     plan.TravelStyle,
			BudgetFlexible:  plan.BudgetFlexible,
			Vibes:           nonNilStrings(plan.Vibes),
			Priorities:      nonNilStrings(plan.Priorities),
			Interests:       derefString(plan.Interests),
			Rooms:           plan.Rooms,
			Pace:            nonNilInts(plan.Pace),
			BeenThereBefore: derefString(plan.BeenThereBefore),
			LovedPlaces:     derefString(plan.LovedPlaces),
			AdditionalInfo:  derefString(plan.AdditionalInfo),
		},
	}
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}
