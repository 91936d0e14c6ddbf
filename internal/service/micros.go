package service

import (
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

// Micros manages micronutrient records. Meal records live inside their diary
// entry, supplement records in the freestanding list.
type Micros struct {
	store *store.Store
}

func NewMicros(s *store.Store) *Micros {
	return &Micros{store: s}
}

type MicroInput struct {
	Date        string
	Nutrient    string
	Label       string
	Amount      float64
	Unit        string
	Source      string
	Notes       string
	MealEntryID string
	Kind        string
}

// MicroPatch holds the fields to change. A non-nil empty MealEntryID detaches
// the record from its meal.
type MicroPatch struct {
	Nutrient    *string
	Label       *string
	Amount      *float64
	Unit        *string
	Source      *string
	Notes       *string
	Date        *string
	MealEntryID *string
	Kind        *string
}

type MicroTotal struct {
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
	Label  string  `json:"label"`
}

// ParseAmount converts user input into a positive amount. Both "1.5" and
// "1,5" are accepted.
func ParseAmount(value any) (float64, error) {
	if s, ok := value.(string); ok {
		value = strings.Replace(strings.TrimSpace(s), ",", ".", 1)
	}
	f, err := cast.ToFloat64E(value)
	if err != nil {
		return 0, invalid("amount", "must be a number, got %v", value)
	}
	if err := validatePositiveFloat("amount", f); err != nil {
		return 0, err
	}
	return f, nil
}

func (in MicroInput) nutrient() string {
	n := normalizeName(in.Nutrient)
	if n == "" {
		return model.NutrientCustom
	}
	return n
}

func (in MicroInput) label() string {
	if l := strings.TrimSpace(in.Label); l != "" {
		return l
	}
	if p, ok := PresetByID(in.nutrient()); ok {
		return p.Label
	}
	return ""
}

func (in MicroInput) unit() string {
	if u := strings.TrimSpace(in.Unit); u != "" {
		return u
	}
	if p, ok := PresetByID(in.nutrient()); ok {
		return p.Unit
	}
	return ""
}

func (in MicroInput) validateRecord() error {
	if err := validatePositiveFloat("amount", in.Amount); err != nil {
		return err
	}
	if in.label() == "" {
		return invalid("label", "is required for custom nutrients")
	}
	return nil
}

func (in MicroInput) record(id string, now model.Timestamp) model.MicroEntry {
	return model.MicroEntry{
		EntryID:   id,
		Nutrient:  in.nutrient(),
		Label:     in.label(),
		Amount:    in.Amount,
		Unit:      in.unit(),
		Source:    strings.TrimSpace(in.Source),
		Notes:     strings.TrimSpace(in.Notes),
		Date:      in.Date,
		Kind:      model.KindSupplement,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func resolveKind(kind, mealEntryID string) (string, error) {
	k := normalizeName(kind)
	switch k {
	case "":
		if mealEntryID != "" {
			return model.KindMeal, nil
		}
		return model.KindSupplement, nil
	case model.KindMeal:
		if mealEntryID == "" {
			return "", invalid("meal_entry_id", "is required for meal records")
		}
		return k, nil
	case model.KindSupplement:
		return k, nil
	default:
		return "", invalid("kind", "must be %q or %q, got %q", model.KindMeal, model.KindSupplement, kind)
	}
}

func (m *Micros) Add(in MicroInput) (model.MicroEntry, error) {
	if err := in.validateRecord(); err != nil {
		return model.MicroEntry{}, err
	}
	mealID := strings.TrimSpace(in.MealEntryID)
	kind, err := resolveKind(in.Kind, mealID)
	if err != nil {
		return model.MicroEntry{}, err
	}
	if kind == model.KindSupplement {
		if err := validateDate("date", in.Date); err != nil {
			return model.MicroEntry{}, err
		}
	}

	var created model.MicroEntry
	err = m.store.Update(func(doc *model.Document) (bool, error) {
		rec := in.record(m.store.NewID(), model.NewTimestamp(m.store.Now()))
		if kind == model.KindSupplement {
			doc.Micronutrients = append(doc.Micronutrients, rec)
			created = rec
			return true, nil
		}
		i, ok := findEntry(doc, mealID)
		if !ok {
			return false, &ReferenceError{Kind: "meal entry", ID: mealID}
		}
		entry := &doc.Diary[i]
		rec.Kind = model.KindMeal
		rec.MealEntryID = strPtr(entry.EntryID)
		rec.Date = entry.Date
		entry.Micros = append(entry.Micros, rec)
		created = rec
		return true, nil
	})
	if err != nil {
		return model.MicroEntry{}, err
	}
	return created, nil
}

// List returns meal and supplement records sorted by creation time. An empty
// date returns every record. Missing derived fields are filled in and
// persisted once.
func (m *Micros) List(date string) ([]model.MicroEntry, error) {
	out := make([]model.MicroEntry, 0)
	err := m.store.Update(func(doc *model.Document) (bool, error) {
		changed := m.backfill(doc)
		if changed {
			m.store.Logger().Debug("backfilled micronutrient records")
		}
		for _, e := range doc.Diary {
			for _, rec := range e.Micros {
				if date == "" || rec.Date == date {
					out = append(out, rec)
				}
			}
		}
		for _, rec := range doc.Micronutrients {
			if date == "" || rec.Date == date {
				out = append(out, rec)
			}
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
	})
	return out, nil
}

func (m *Micros) backfill(doc *model.Document) bool {
	now := model.NewTimestamp(m.store.Now())
	changed := false
	stamp := func(rec *model.MicroEntry) {
		if strings.TrimSpace(rec.EntryID) == "" {
			rec.EntryID = m.store.NewID()
			changed = true
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
			changed = true
		}
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = rec.CreatedAt
			changed = true
		}
	}
	for i := range doc.Diary {
		e := &doc.Diary[i]
		for j := range e.Micros {
			rec := &e.Micros[j]
			if rec.Date != e.Date {
				rec.Date = e.Date
				changed = true
			}
			if rec.MealEntryID == nil || *rec.MealEntryID != e.EntryID {
				rec.MealEntryID = strPtr(e.EntryID)
				changed = true
			}
			if rec.Kind != model.KindMeal {
				rec.Kind = model.KindMeal
				changed = true
			}
			stamp(rec)
		}
	}
	for i := range doc.Micronutrients {
		rec := &doc.Micronutrients[i]
		if rec.Kind == "" {
			rec.Kind = model.KindSupplement
			changed = true
		}
		stamp(rec)
	}
	return changed
}

type microLocation struct {
	entry int
	index int
}

// locateMicro finds a record by id. entry is -1 for freestanding records.
func locateMicro(doc *model.Document, entryID string) (microLocation, bool) {
	if entryID == "" {
		return microLocation{}, false
	}
	for i := range doc.Diary {
		for j := range doc.Diary[i].Micros {
			if doc.Diary[i].Micros[j].EntryID == entryID {
				return microLocation{entry: i, index: j}, true
			}
		}
	}
	for k := range doc.Micronutrients {
		if doc.Micronutrients[k].EntryID == entryID {
			return microLocation{entry: -1, index: k}, true
		}
	}
	return microLocation{}, false
}

func (p MicroPatch) validate() error {
	if p.Amount != nil {
		if err := validatePositiveFloat("amount", *p.Amount); err != nil {
			return err
		}
	}
	if p.Label != nil && strings.TrimSpace(*p.Label) == "" {
		return invalid("label", "is required")
	}
	if p.Date != nil {
		if err := validateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.Kind != nil {
		switch normalizeName(*p.Kind) {
		case model.KindMeal, model.KindSupplement:
		default:
			return invalid("kind", "must be %q or %q, got %q", model.KindMeal, model.KindSupplement, *p.Kind)
		}
	}
	return nil
}

func (p MicroPatch) applyScalars(rec *model.MicroEntry) {
	if p.Nutrient != nil {
		rec.Nutrient = normalizeName(*p.Nutrient)
		if rec.Nutrient == "" {
			rec.Nutrient = model.NutrientCustom
		}
	}
	if p.Label != nil {
		rec.Label = strings.TrimSpace(*p.Label)
	}
	if p.Amount != nil {
		rec.Amount = *p.Amount
	}
	if p.Unit != nil {
		rec.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Source != nil {
		rec.Source = strings.TrimSpace(*p.Source)
	}
	if p.Notes != nil {
		rec.Notes = strings.TrimSpace(*p.Notes)
	}
	if p.Date != nil {
		rec.Date = *p.Date
	}
}

// target works out where the record belongs after the patch: its kind and,
// for meal records, the owning entry id.
func (p MicroPatch) target(rec model.MicroEntry, nested bool) (string, string, error) {
	kind := rec.Kind
	if kind == "" {
		kind = model.KindSupplement
		if nested {
			kind = model.KindMeal
		}
	}
	mealID := ""
	if rec.MealEntryID != nil {
		mealID = *rec.MealEntryID
	}
	if p.MealEntryID != nil {
		mealID = strings.TrimSpace(*p.MealEntryID)
		if p.Kind == nil {
			kind = model.KindMeal
			if mealID == "" {
				kind = model.KindSupplement
			}
		}
	}
	if p.Kind != nil {
		kind = normalizeName(*p.Kind)
	}
	if kind == model.KindSupplement {
		return kind, "", nil
	}
	if mealID == "" {
		return "", "", invalid("meal_entry_id", "is required for meal records")
	}
	return kind, mealID, nil
}

// Update applies patch to the record with entryID. A kind or meal change
// moves the record to its new location under the same id.
func (m *Micros) Update(entryID string, patch MicroPatch) (bool, error) {
	if err := patch.validate(); err != nil {
		return false, err
	}
	found := false
	err := m.store.Update(func(doc *model.Document) (bool, error) {
		loc, ok := locateMicro(doc, entryID)
		if !ok {
			return false, nil
		}
		nested := loc.entry >= 0
		var rec model.MicroEntry
		if nested {
			rec = doc.Diary[loc.entry].Micros[loc.index]
		} else {
			rec = doc.Micronutrients[loc.index]
		}

		kind, mealID, err := patch.target(rec, nested)
		if err != nil {
			return false, err
		}
		patch.applyScalars(&rec)
		rec.Kind = kind

		target := -1
		if kind == model.KindMeal {
			i, ok := findEntry(doc, mealID)
			if !ok {
				return false, &ReferenceError{Kind: "meal entry", ID: mealID}
			}
			target = i
			rec.MealEntryID = strPtr(doc.Diary[i].EntryID)
			rec.Date = doc.Diary[i].Date
		} else {
			rec.MealEntryID = nil
		}
		rec.UpdatedAt = model.NewTimestamp(m.store.Now())

		switch {
		case target == loc.entry && nested:
			doc.Diary[target].Micros[loc.index] = rec
		case target == -1 && !nested:
			doc.Micronutrients[loc.index] = rec
		default:
			if nested {
				e := &doc.Diary[loc.entry]
				e.Micros = append(e.Micros[:loc.index], e.Micros[loc.index+1:]...)
			} else {
				doc.Micronutrients = append(doc.Micronutrients[:loc.index], doc.Micronutrients[loc.index+1:]...)
			}
			if target >= 0 {
				doc.Diary[target].Micros = append(doc.Diary[target].Micros, rec)
			} else {
				doc.Micronutrients = append(doc.Micronutrients, rec)
			}
		}
		found = true
		return true, nil
	})
	return found, err
}

// Delete removes the first record with entryID, searching meal entries
// before the freestanding list.
func (m *Micros) Delete(entryID string) (bool, error) {
	found := false
	err := m.store.Update(func(doc *model.Document) (bool, error) {
		loc, ok := locateMicro(doc, entryID)
		if !ok {
			return false, nil
		}
		if loc.entry >= 0 {
			e := &doc.Diary[loc.entry]
			e.Micros = append(e.Micros[:loc.index], e.Micros[loc.index+1:]...)
		} else {
			doc.Micronutrients = append(doc.Micronutrients[:loc.index], doc.Micronutrients[loc.index+1:]...)
		}
		found = true
		return true, nil
	})
	return found, err
}

// Totals sums amounts for date per nutrient. Custom nutrients are grouped by
// label. Unit and label come from the first record of each group.
func (m *Micros) Totals(date string) (map[string]MicroTotal, error) {
	records, err := m.List(date)
	if err != nil {
		return nil, err
	}
	return SumMicros(records), nil
}

func SumMicros(records []model.MicroEntry) map[string]MicroTotal {
	totals := make(map[string]MicroTotal)
	for _, rec := range records {
		key := microKey(rec)
		t, ok := totals[key]
		if !ok {
			t = MicroTotal{Unit: rec.Unit, Label: rec.Label}
		}
		t.Amount += rec.Amount
		totals[key] = t
	}
	for key, t := range totals {
		t.Amount = math.Round(t.Amount*1000) / 1000
		totals[key] = t
	}
	return totals
}

func microKey(rec model.MicroEntry) string {
	if rec.Nutrient != "" && rec.Nutrient != model.NutrientCustom {
		return rec.Nutrient
	}
	if label := strings.TrimSpace(rec.Label); label != "" {
		return label
	}
	return model.NutrientCustom
}
