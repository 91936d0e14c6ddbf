package service

import (
	"strings"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

// Diary manages food diary entries.
type Diary struct {
	store *store.Store
}

func NewDiary(s *store.Store) *Diary {
	return &Diary{store: s}
}

type FoodEntryInput struct {
	EntryID string
	Date    string
	Meal    string
	Name    string
	Grams   float64
	Kcal    float64
	Protein float64
	Carbs   float64
	Fat     float64
	Food    *model.FoodRef
	Micros  []MicroInput
}

// FoodEntryPatch holds the fields to change. Nil fields are left untouched.
type FoodEntryPatch struct {
	Date    *string
	Meal    *string
	Name    *string
	Grams   *float64
	Kcal    *float64
	Protein *float64
	Carbs   *float64
	Fat     *float64
	Food    *model.FoodRef
}

func normalizeMeal(meal string) string {
	meal = normalizeName(meal)
	if meal == "" {
		return model.MealOther
	}
	return meal
}

func validateMacros(kcal, protein, carbs, fat float64) error {
	for _, f := range []struct {
		name  string
		value float64
	}{{"kcal", kcal}, {"protein", protein}, {"carbs", carbs}, {"fat", fat}} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (in FoodEntryInput) validate() error {
	if err := validateDate("date", in.Date); err != nil {
		return err
	}
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "is required")
	}
	if err := validatePositiveFloat("grams", in.Grams); err != nil {
		return err
	}
	if err := validateMacros(in.Kcal, in.Protein, in.Carbs, in.Fat); err != nil {
		return err
	}
	for _, m := range in.Micros {
		if err := m.validateRecord(); err != nil {
			return err
		}
	}
	return nil
}

func (d *Diary) Add(in FoodEntryInput) (model.DiaryEntry, error) {
	if err := in.validate(); err != nil {
		return model.DiaryEntry{}, err
	}

	var created model.DiaryEntry
	err := d.store.Update(func(doc *model.Document) (bool, error) {
		id := strings.TrimSpace(in.EntryID)
		if id != "" {
			if _, ok := findEntry(doc, id); ok {
				return false, invalid("entry_id", "%q is already used", id)
			}
		} else {
			id = d.store.NewID()
		}

		now := model.NewTimestamp(d.store.Now())
		entry := model.DiaryEntry{
			EntryID: id,
			Date:    in.Date,
			Meal:    normalizeMeal(in.Meal),
			Name:    strings.TrimSpace(in.Name),
			Grams:   in.Grams,
			Kcal:    in.Kcal,
			Protein: in.Protein,
			Carbs:   in.Carbs,
			Fat:     in.Fat,
			Food:    in.Food,
			Micros:  make([]model.MicroEntry, 0, len(in.Micros)),
		}
		for _, m := range in.Micros {
			rec := m.record(d.store.NewID(), now)
			rec.Kind = model.KindMeal
			rec.Date = entry.Date
			rec.MealEntryID = strPtr(entry.EntryID)
			entry.Micros = append(entry.Micros, rec)
		}
		doc.Diary = append(doc.Diary, entry)
		created = entry
		return true, nil
	})
	if err != nil {
		return model.DiaryEntry{}, err
	}
	return created, nil
}

// Day returns the entries logged on date. Entries anywhere in the diary that
// lack an id get one, persisted once.
func (d *Diary) Day(date string) ([]model.DiaryEntry, error) {
	out := make([]model.DiaryEntry, 0)
	err := d.store.Update(func(doc *model.Document) (bool, error) {
		changed := false
		for i := range doc.Diary {
			e := &doc.Diary[i]
			if strings.TrimSpace(e.EntryID) == "" {
				e.EntryID = d.store.NewID()
				changed = true
			}
			if e.Date == date {
				out = append(out, *e)
			}
		}
		if changed {
			d.store.Logger().Debug("assigned missing diary entry ids")
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Recent returns the last limit entries, most recently added first. A
// non-positive limit returns every entry.
func (d *Diary) Recent(limit int) ([]model.DiaryEntry, error) {
	doc, err := d.store.Load()
	if err != nil {
		return nil, err
	}
	n := len(doc.Diary)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.DiaryEntry, 0, n)
	for i := len(doc.Diary) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, doc.Diary[i])
	}
	return out, nil
}

// Week returns entries dated within the days-long window ending at endDate.
func (d *Diary) Week(endDate string, days int) ([]model.DiaryEntry, error) {
	start, end, err := dateWindow(endDate, days, 7)
	if err != nil {
		return nil, err
	}
	doc, err := d.store.Load()
	if err != nil {
		return nil, err
	}
	out := make([]model.DiaryEntry, 0)
	for _, e := range doc.Diary {
		if inWindow(e.Date, start, end) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p FoodEntryPatch) validate() error {
	if p.Date != nil {
		if err := validateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "is required")
	}
	if p.Grams != nil {
		if err := validatePositiveFloat("grams", *p.Grams); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		name  string
		value *float64
	}{{"kcal", p.Kcal}, {"protein", p.Protein}, {"carbs", p.Carbs}, {"fat", p.Fat}} {
		if f.value == nil {
			continue
		}
		if err := validateNonNegativeFloat(f.name, *f.value); err != nil {
			return err
		}
	}
	return nil
}

func (p FoodEntryPatch) apply(e *model.DiaryEntry) {
	if p.Date != nil {
		e.Date = *p.Date
		for i := range e.Micros {
			e.Micros[i].Date = e.Date
		}
	}
	if p.Meal != nil {
		e.Meal = normalizeMeal(*p.Meal)
	}
	if p.Name != nil {
		e.Name = strings.TrimSpace(*p.Name)
	}
	if p.Grams != nil {
		e.Grams = *p.Grams
	}
	if p.Kcal != nil {
		e.Kcal = *p.Kcal
	}
	if p.Protein != nil {
		e.Protein = *p.Protein
	}
	if p.Carbs != nil {
		e.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		e.Fat = *p.Fat
	}
	if p.Food != nil {
		e.Food = p.Food
	}
}

// Update applies patch to the entry with entryID. It reports false when no
// entry matches.
func (d *Diary) Update(entryID string, patch FoodEntryPatch) (bool, error) {
	if err := patch.validate(); err != nil {
		return false, err
	}
	found := false
	err := d.store.Update(func(doc *model.Document) (bool, error) {
		i, ok := findEntry(doc, entryID)
		if !ok {
			return false, nil
		}
		patch.apply(&doc.Diary[i])
		found = true
		return true, nil
	})
	return found, err
}

// Delete removes the entry together with its nested micronutrient records.
func (d *Diary) Delete(entryID string) (bool, error) {
	found := false
	err := d.store.Update(func(doc *model.Document) (bool, error) {
		i, ok := findEntry(doc, entryID)
		if !ok {
			return false, nil
		}
		doc.Diary = append(doc.Diary[:i], doc.Diary[i+1:]...)
		found = true
		return true, nil
	})
	return found, err
}

func findEntry(doc *model.Document, entryID string) (int, bool) {
	if entryID == "" {
		return -1, false
	}
	for i := range doc.Diary {
		if doc.Diary[i].EntryID == entryID {
			return i, true
		}
	}
	return -1, false
}
