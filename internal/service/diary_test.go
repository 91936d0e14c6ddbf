package service_test

import (
	"errors"
	"testing"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
)

func chickenInput() service.FoodEntryInput {
	return service.FoodEntryInput{
		Date:    "2024-01-10",
		Meal:    "lunch",
		Name:    "Chicken 150g",
		Grams:   150,
		Kcal:    247,
		Protein: 46,
		Carbs:   0,
		Fat:     5,
	}
}

func TestDiaryAddAndQuery(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	diary := service.NewDiary(s)

	chicken, err := diary.Add(chickenInput())
	if err != nil {
		t.Fatalf("add chicken: %v", err)
	}
	if chicken.EntryID == "" || chicken.Meal != model.MealLunch {
		t.Fatalf("unexpected entry: %+v", chicken)
	}
	if _, err := diary.Add(service.FoodEntryInput{Date: "2024-01-04", Meal: "Dinner", Name: "Rice", Grams: 200, Kcal: 260}); err != nil {
		t.Fatalf("add rice: %v", err)
	}
	if _, err := diary.Add(service.FoodEntryInput{Date: "2024-01-03", Name: "Old", Grams: 10}); err != nil {
		t.Fatalf("add old: %v", err)
	}

	day, err := diary.Day("2024-01-10")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day) != 1 || day[0].EntryID != chicken.EntryID {
		t.Fatalf("expected only chicken on 2024-01-10, got %+v", day)
	}

	week, err := diary.Week("2024-01-10", 7)
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if len(week) != 2 {
		t.Fatalf("expected 2 entries in [01-04, 01-10], got %d", len(week))
	}

	recent, err := diary.Recent(2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Name != "Old" || recent[1].Name != "Rice" {
		t.Fatalf("expected newest insertions first, got %+v", recent)
	}
	if recent[1].Meal != model.MealDinner {
		t.Fatalf("expected meal normalized to dinner, got %q", recent[1].Meal)
	}
}

func TestDiaryAddValidation(t *testing.T) {
	t.Parallel()
	s, backend := newTestStore(t)
	diary := service.NewDiary(s)

	cases := []struct {
		name  string
		in    service.FoodEntryInput
		field string
	}{
		{"bad date", service.FoodEntryInput{Date: "10/01/2024", Name: "x", Grams: 1}, "date"},
		{"missing name", service.FoodEntryInput{Date: "2024-01-10", Name: " ", Grams: 1}, "name"},
		{"zero grams", service.FoodEntryInput{Date: "2024-01-10", Name: "x"}, "grams"},
		{"negative fat", service.FoodEntryInput{Date: "2024-01-10", Name: "x", Grams: 1, Fat: -1}, "fat"},
		{"bad micro", service.FoodEntryInput{Date: "2024-01-10", Name: "x", Grams: 1, Micros: []service.MicroInput{{Nutrient: "iron"}}}, "amount"},
	}
	for _, tc := range cases {
		_, err := diary.Add(tc.in)
		var verr *service.ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("%s: expected validation error on %s, got %v", tc.name, tc.field, err)
		}
		if !errors.Is(err, service.ErrValidation) {
			t.Fatalf("%s: expected errors.Is ErrValidation", tc.name)
		}
	}
	if backend.Writes != 0 {
		t.Fatalf("validation failures must not write, got %d writes", backend.Writes)
	}

	in := chickenInput()
	in.EntryID = "fixed"
	if _, err := diary.Add(in); err != nil {
		t.Fatalf("add with id: %v", err)
	}
	if _, err := diary.Add(in); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected duplicate entry id to be rejected, got %v", err)
	}
}

func TestDiaryUpdateKeepsIDAndSyncsMicroDates(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	diary := service.NewDiary(s)
	micros := service.NewMicros(s)

	in := chickenInput()
	in.Micros = []service.MicroInput{{Nutrient: "iron", Amount: 1.3, Unit: "mg"}}
	entry, err := diary.Add(in)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(entry.Micros) != 1 || entry.Micros[0].Label != "Hierro" || entry.Micros[0].Kind != model.KindMeal {
		t.Fatalf("expected nested preset micro, got %+v", entry.Micros)
	}

	ok, err := diary.Update(entry.EntryID, service.FoodEntryPatch{Date: ptr("2024-01-11"), Kcal: ptr(250.0)})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	day, err := diary.Day("2024-01-11")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day) != 1 || day[0].EntryID != entry.EntryID || day[0].Kcal != 250 || day[0].Name != "Chicken 150g" {
		t.Fatalf("unexpected updated entry: %+v", day)
	}
	records, err := micros.List("2024-01-11")
	if err != nil {
		t.Fatalf("list micros: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected nested micro to follow the new date, got %d", len(records))
	}

	ok, err = diary.Update("missing", service.FoodEntryPatch{Kcal: ptr(1.0)})
	if err != nil || ok {
		t.Fatalf("expected soft not-found, got ok=%v err=%v", ok, err)
	}
	if _, err := diary.Update(entry.EntryID, service.FoodEntryPatch{Grams: ptr(0.0)}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for zero grams, got %v", err)
	}
}

func TestDiaryDayBackfillsMissingIDs(t *testing.T) {
	t.Parallel()
	s, backend := newTestStore(t)
	if err := s.Save(&model.Document{Diary: []model.DiaryEntry{
		{Date: "2024-01-09", Name: "a", Grams: 1},
		{Date: "2024-01-10", Name: "b", Grams: 1},
	}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	writes := backend.Writes

	day, err := service.NewDiary(s).Day("2024-01-10")
	if err != nil {
		t.Fatalf("day: %v", err)
	}
	if len(day) != 1 || day[0].EntryID == "" {
		t.Fatalf("expected one entry with an id, got %+v", day)
	}
	doc, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for _, e := range doc.Diary {
		if e.EntryID == "" {
			t.Fatalf("expected every entry to have an id after load, got %+v", doc.Diary)
		}
	}
	if backend.Writes-writes != 1 {
		t.Fatalf("expected backfill persisted once, got %d writes", backend.Writes-writes)
	}
}

func TestDiaryDelete(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	diary := service.NewDiary(s)
	entry, err := diary.Add(chickenInput())
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	ok, err := diary.Delete(entry.EntryID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	ok, err = diary.Delete(entry.EntryID)
	if err != nil || ok {
		t.Fatalf("expected second delete to report false, got ok=%v err=%v", ok, err)
	}
}
