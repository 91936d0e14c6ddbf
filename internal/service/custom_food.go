package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/store"
)

const (
	defaultPortionGrams = 100
	defaultCustomName   = "Custom food"
	customIDPrefix      = "custom-"
)

// CustomFoods manages reusable food definitions. Macros are per portion.
type CustomFoods struct {
	store *store.Store
}

func NewCustomFoods(s *store.Store) *CustomFoods {
	return &CustomFoods{store: s}
}

type CustomFoodInput struct {
	Name        string
	Grams       float64
	Description string
	Kcal        float64
	Protein     float64
	Carbs       float64
	Fat         float64
}

type CustomFoodPatch struct {
	Name        *string
	Grams       *float64
	Description *string
	Kcal        *float64
	Protein     *float64
	Carbs       *float64
	Fat         *float64
}

func formatGrams(g float64) string {
	return strconv.FormatFloat(g, 'f', -1, 64)
}

func defaultPortionDescription(grams float64) string {
	return fmt.Sprintf("per %s g", formatGrams(grams))
}

func normalizePortion(grams float64, description string) model.Portion {
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		grams = defaultPortionGrams
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = defaultPortionDescription(grams)
	}
	return model.Portion{Grams: grams, Description: description}
}

// DescribePortion renders a portion for display.
func DescribePortion(p *model.Portion) string {
	if p == nil {
		return "standard portion"
	}
	if d := strings.TrimSpace(p.Description); d != "" {
		return d
	}
	if p.Grams > 0 {
		return defaultPortionDescription(p.Grams)
	}
	return "standard portion"
}

// ScaleMacros scales the per-portion macros of food to grams. kcal is
// rounded to whole units and the rest to one decimal.
func ScaleMacros(food model.CustomFood, grams float64) model.Macros {
	base := food.Portion.Grams
	if base <= 0 {
		base = defaultPortionGrams
	}
	ratio := grams / base
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	return model.Macros{
		Kcal:    math.Round(food.Macros.Kcal * ratio),
		Protein: round1(food.Macros.Protein * ratio),
		Carbs:   round1(food.Macros.Carbs * ratio),
		Fat:     round1(food.Macros.Fat * ratio),
	}
}

// List returns every custom food, filling in and persisting missing defaults.
func (c *CustomFoods) List() ([]model.CustomFood, error) {
	var out []model.CustomFood
	err := c.store.Update(func(doc *model.Document) (bool, error) {
		changed := false
		for i := range doc.CustomFoods {
			if c.backfill(&doc.CustomFoods[i]) {
				changed = true
			}
		}
		out = append([]model.CustomFood{}, doc.CustomFoods...)
		if changed {
			c.store.Logger().Debug("backfilled custom food defaults", zap.Int("foods", len(doc.CustomFoods)))
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CustomFoods) backfill(f *model.CustomFood) bool {
	changed := false
	if strings.TrimSpace(f.ID) == "" {
		f.ID = customIDPrefix + c.store.NewID()
		changed = true
	}
	if f.Source != model.SourceCustom {
		f.Source = model.SourceCustom
		changed = true
	}
	if strings.TrimSpace(f.Name) == "" {
		f.Name = defaultCustomName
		changed = true
	}
	if portion := normalizePortion(f.Portion.Grams, f.Portion.Description); portion != f.Portion {
		f.Portion = portion
		changed = true
	}
	for _, v := range []*float64{&f.Macros.Kcal, &f.Macros.Protein, &f.Macros.Carbs, &f.Macros.Fat} {
		if math.IsNaN(*v) || *v < 0 {
			*v = 0
			changed = true
		}
	}
	return changed
}

// Get returns nil when no food has id.
func (c *CustomFoods) Get(id string) (*model.CustomFood, error) {
	doc, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if i, ok := findCustomFood(doc, id); ok {
		food := doc.CustomFoods[i]
		return &food, nil
	}
	return nil, nil
}

func (c *CustomFoods) Create(in CustomFoodInput) (model.CustomFood, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return model.CustomFood{}, invalid("name", "is required")
	}
	if err := validateMacros(in.Kcal, in.Protein, in.Carbs, in.Fat); err != nil {
		return model.CustomFood{}, err
	}

	var created model.CustomFood
	err := c.store.Update(func(doc *model.Document) (bool, error) {
		created = model.CustomFood{
			ID:      customIDPrefix + c.store.NewID(),
			Name:    name,
			Source:  model.SourceCustom,
			Portion: normalizePortion(in.Grams, in.Description),
			Macros: model.Macros{
				Kcal:    in.Kcal,
				Protein: in.Protein,
				Carbs:   in.Carbs,
				Fat:     in.Fat,
			},
		}
		doc.CustomFoods = append(doc.CustomFoods, created)
		return true, nil
	})
	if err != nil {
		return model.CustomFood{}, err
	}
	return created, nil
}

func (p CustomFoodPatch) validate() error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return invalid("name", "is required")
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

func (p CustomFoodPatch) apply(f *model.CustomFood) {
	if p.Name != nil {
		f.Name = strings.TrimSpace(*p.Name)
	}
	if p.Grams != nil || p.Description != nil {
		grams := f.Portion.Grams
		description := f.Portion.Description
		if p.Grams != nil {
			if description == defaultPortionDescription(grams) {
				description = ""
			}
			grams = *p.Grams
		}
		if p.Description != nil {
			description = *p.Description
		}
		f.Portion = normalizePortion(grams, description)
	}
	if p.Kcal != nil {
		f.Macros.Kcal = *p.Kcal
	}
	if p.Protein != nil {
		f.Macros.Protein = *p.Protein
	}
	if p.Carbs != nil {
		f.Macros.Carbs = *p.Carbs
	}
	if p.Fat != nil {
		f.Macros.Fat = *p.Fat
	}
}

// Update returns the updated food, or nil when no food has id.
func (c *CustomFoods) Update(id string, patch CustomFoodPatch) (*model.CustomFood, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}
	var updated *model.CustomFood
	err := c.store.Update(func(doc *model.Document) (bool, error) {
		i, ok := findCustomFood(doc, id)
		if !ok {
			return false, nil
		}
		patch.apply(&doc.CustomFoods[i])
		food := doc.CustomFoods[i]
		updated = &food
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete leaves diary entries logged from the food untouched.
func (c *CustomFoods) Delete(id string) (bool, error) {
	found := false
	err := c.store.Update(func(doc *model.Document) (bool, error) {
		i, ok := findCustomFood(doc, id)
		if !ok {
			return false, nil
		}
		doc.CustomFoods = append(doc.CustomFoods[:i], doc.CustomFoods[i+1:]...)
		found = true
		return true, nil
	})
	return found, err
}

func findCustomFood(doc *model.Document, id string) (int, bool) {
	if id == "" {
		return -1, false
	}
	for i := range doc.CustomFoods {
		if doc.CustomFoods[i].ID == id {
			return i, true
		}
	}
	return -1, false
}
