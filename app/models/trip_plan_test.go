package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func strPtr(s string) *string { return &s }

func TestTripPlanMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		plan TripPlan
		want []string
	}{
		{name: "complete", plan: TripPlan{Name: "Trip1", Destination: "Tokyo", StartingLocation: "NYC"}, want: nil},
		{name: "blank name", plan: TripPlan{Name: "   ", Destination: "Tokyo", StartingLocation: "NYC"}, want: []string{"name"}},
		{name: "all missing", plan: TripPlan{}, want: []string{"name", "destination", "startingLocation"}},
		{name: "missing start", plan: TripPlan{Name: "Trip1", Destination: "Tokyo"}, want: []string{"startingLocation"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.plan.MissingRequiredFields())
		})
	}
}

func TestTripPlanApplyDefaults(t *testing.T) {
	plan := TripPlan{
		Name:             " Trip1 ",
		Destination:      "Tokyo",
		StartingLocation: "NYC",
		Adults:           2,
		Interests:        strPtr("  "),
		LovedPlaces:      strPtr("Kyoto"),
	}
	plan.ApplyDefaults()

	assert.Equal(t, "Trip1", plan.Name)
	assert.Equal(t, DATE_INPUT_PICKER, plan.DateInputType)
	assert.Equal(t, DefaultBudgetCurrency, plan.BudgetCurrency)
	assert.Equal(t, datatypes.JSONSlice[int]{3}, plan.Pace)
	assert.NotNil(t, plan.AgeGroups)
	assert.Empty(t, plan.AgeGroups)
	assert.NotNil(t, plan.Vibes)
	assert.NotNil(t, plan.Priorities)
	assert.Nil(t, plan.Interests)
	assert.Nil(t, plan.BeenThereBefore)
	require.NotNil(t, plan.LovedPlaces)
	assert.Equal(t, "Kyoto", *plan.LovedPlaces)
	assert.Equal(t, 2, plan.Adults)
}

func TestTripPlanApplyDefaults_KeepsSuppliedValues(t *testing.T) {
	plan := TripPlan{
		Name:             "Trip1",
		Destination:      "Tokyo",
		StartingLocation: "NYC",
		DateInputType:    DATE_INPUT_TEXT,
		BudgetCurrency:   "JPY",
		Pace:             datatypes.JSONSlice[int]{1, 2},
		Vibes:            datatypes.JSONSlice[string]{"relaxing"},
	}
	plan.ApplyDefaults()

	assert.Equal(t, DATE_INPUT_TEXT, plan.DateInputType)
	assert.Equal(t, "JPY", plan.BudgetCurrency)
	assert.Equal(t, datatypes.JSONSlice[int]{1, 2}, plan.Pace)
	assert.Equal(t, datatypes.JSONSlice[string]{"relaxing"}, plan.Vibes)
}

func TestTripPlanValidate(t *testing.T) {
	plan := TripPlan{Name: "Trip1", Destination: "Tokyo", StartingLocation: "NYC", Adults: 1, Rooms: 1}
	plan.ApplyDefaults()
	assert.NoError(t, plan.Validate())

	plan.DateInputType = "calendar"
	assert.Error(t, plan.Validate())

	plan.DateInputType = DATE_INPUT_TEXT
	plan.Children = -1
	assert.Error(t, plan.Validate())
}
