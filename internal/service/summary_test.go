package service_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
)

var summaryEntries = []model.DiaryEntry{
	{Date: "2024-01-08", Meal: "breakfast", Kcal: 300, Protein: 20, Carbs: 30, Fat: 10},
	{Date: "2024-01-10", Meal: "lunch", Kcal: 247, Protein: 46, Carbs: 0, Fat: 5},
	{Date: "2024-01-10", Meal: "breakfast", Kcal: 150.25, Protein: 5.1, Carbs: 20, Fat: 4},
	{Date: "2024-01-10", Meal: "lunch", Kcal: 100, Protein: 1, Carbs: 25, Fat: 0},
}

func TestWeeklySummaryZeroFillsDays(t *testing.T) {
	t.Parallel()
	rows, err := service.WeeklySummary(summaryEntries, "2024-01-10", 3)
	if err != nil {
		t.Fatalf("weekly summary: %v", err)
	}
	want := []service.DaySummary{
		{Date: "2024-01-08", Totals: service.MacroTotals{Kcal: 300, Protein: 20, Carbs: 30, Fat: 10}, Entries: 1},
		{Date: "2024-01-09"},
		{Date: "2024-01-10", Totals: service.MacroTotals{Kcal: 497.3, Protein: 52.1, Carbs: 45, Fat: 9}, Entries: 3},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestMealBreakdownKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()
	got := service.MealBreakdown(summaryEntries[1:])
	if len(got) != 2 || got[0].Meal != "lunch" || got[1].Meal != "breakfast" {
		t.Fatalf("unexpected meal order: %+v", got)
	}
	if got[0].Entries != 2 || got[0].Totals.Kcal != 347 {
		t.Fatalf("unexpected lunch totals: %+v", got[0])
	}
}

func TestMicroGoalProgress(t *testing.T) {
	t.Parallel()
	presets := []service.MicroPreset{
		{ID: "iron", Label: "Hierro", Unit: "mg", Goal: 18},
		{ID: "zinc", Label: "Zinc", Unit: "mg", Goal: 11},
	}
	totals := map[string]service.MicroTotal{
		"iron":    {Amount: 9, Unit: "mg", Label: "Hierro"},
		"Omega 3": {Amount: 1000, Unit: "mg", Label: "Omega 3"},
	}
	want := []service.MicroGoalStatus{
		{Nutrient: "iron", Label: "Hierro", Unit: "mg", Amount: 9, Goal: 18, Percent: 50},
		{Nutrient: "zinc", Label: "Zinc", Unit: "mg", Goal: 11},
		{Nutrient: "Omega 3", Label: "Omega 3", Unit: "mg", Amount: 1000},
	}
	if diff := cmp.Diff(want, service.MicroGoalProgress(totals, presets)); diff != "" {
		t.Fatalf("goal progress mismatch (-want +got):\n%s", diff)
	}
}

func TestStatusForDay(t *testing.T) {
	t.Parallel()
	status := service.StatusForDay("2024-01-10", summaryEntries[1:], model.User{KcalGoal: 2000})
	if status.Totals.Kcal != 497.3 || status.Remaining != 1502.7 || status.Entries != 3 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if got := service.StatusForDay("2024-01-10", nil, model.User{}); got.Remaining != 0 {
		t.Fatalf("expected no remaining without a goal, got %+v", got)
	}
}
