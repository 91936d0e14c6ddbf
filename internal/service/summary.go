package service

import (
	"sort"
	"time"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

type MacroTotals struct {
	Kcal    float64 `json:"kcal"`
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

func (t *MacroTotals) add(e model.DiaryEntry) {
	t.Kcal += e.Kcal
	t.Protein += e.Protein
	t.Carbs += e.Carbs
	t.Fat += e.Fat
}

func (t MacroTotals) rounded() MacroTotals {
	return MacroTotals{
		Kcal:    round1(t.Kcal),
		Protein: round1(t.Protein),
		Carbs:   round1(t.Carbs),
		Fat:     round1(t.Fat),
	}
}

func DayTotals(entries []model.DiaryEntry) MacroTotals {
	var t MacroTotals
	for _, e := range entries {
		t.add(e)
	}
	return t.rounded()
}

type DaySummary struct {
	Date    string      `json:"date"`
	Totals  MacroTotals `json:"totals"`
	Entries int         `json:"entries"`
}

// WeeklySummary returns one row per day of the window ending at endDate,
// oldest first. Days without entries are zero.
func WeeklySummary(entries []model.DiaryEntry, endDate string, days int) ([]DaySummary, error) {
	start, _, err := dateWindow(endDate, days, 7)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = 7
	}
	byDate := make(map[string][]model.DiaryEntry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	first, _ := time.Parse(dateLayout, start)
	out := make([]DaySummary, 0, days)
	for i := 0; i < days; i++ {
		date := first.AddDate(0, 0, i).Format(dateLayout)
		out = append(out, DaySummary{
			Date:    date,
			Totals:  DayTotals(byDate[date]),
			Entries: len(byDate[date]),
		})
	}
	return out, nil
}

type MealTotals struct {
	Meal    string      `json:"meal"`
	Totals  MacroTotals `json:"totals"`
	Entries int         `json:"entries"`
}

// MealBreakdown totals entries per meal in first-seen order.
func MealBreakdown(entries []model.DiaryEntry) []MealTotals {
	index := make(map[string]int)
	out := make([]MealTotals, 0)
	for _, e := range entries {
		i, ok := index[e.Meal]
		if !ok {
			i = len(out)
			index[e.Meal] = i
			out = append(out, MealTotals{Meal: e.Meal})
		}
		out[i].Totals.add(e)
		out[i].Entries++
	}
	for i := range out {
		out[i].Totals = out[i].Totals.rounded()
	}
	return out
}

type MicroGoalStatus struct {
	Nutrient string  `json:"nutrient"`
	Label    string  `json:"label"`
	Unit     string  `json:"unit"`
	Amount   float64 `json:"amount"`
	Goal     float64 `json:"goal"`
	Percent  float64 `json:"percent"`
}

// MicroGoalProgress lists every preset with its total, followed by any
// other nutrient that was logged. Percent is not capped.
func MicroGoalProgress(totals map[string]MicroTotal, presets []MicroPreset) []MicroGoalStatus {
	out := make([]MicroGoalStatus, 0, len(presets)+len(totals))
	seen := make(map[string]bool, len(presets))
	for _, p := range presets {
		seen[p.ID] = true
		status := MicroGoalStatus{Nutrient: p.ID, Label: p.Label, Unit: p.Unit, Goal: p.Goal}
		if t, ok := totals[p.ID]; ok {
			status.Amount = t.Amount
		}
		if p.Goal > 0 {
			status.Percent = round1(status.Amount / p.Goal * 100)
		}
		out = append(out, status)
	}
	extra := make([]string, 0)
	for key := range totals {
		if !seen[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		t := totals[key]
		out = append(out, MicroGoalStatus{Nutrient: key, Label: t.Label, Unit: t.Unit, Amount: t.Amount})
	}
	return out
}

type DayStatus struct {
	Date      string      `json:"date"`
	Totals    MacroTotals `json:"totals"`
	KcalGoal  float64     `json:"kcal_goal"`
	Remaining float64     `json:"remaining"`
	Entries   int         `json:"entries"`
}

// StatusForDay totals a day's entries against the user's calorie goal.
// Remaining is zero when no goal is set and negative when over.
func StatusForDay(date string, entries []model.DiaryEntry, user model.User) DayStatus {
	status := DayStatus{
		Date:     date,
		Totals:   DayTotals(entries),
		KcalGoal: user.KcalGoal,
		Entries:  len(entries),
	}
	if user.KcalGoal > 0 {
		status.Remaining = round1(user.KcalGoal - status.Totals.Kcal)
	}
	return status
}
