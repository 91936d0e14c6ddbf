package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

const SourceLocal = "local"

// Local searches an in-memory list of foods by name.
type Local struct {
	foods []Food
}

func NewLocal(foods []Food) *Local {
	return &Local{foods: foods}
}

// LoadLocal reads a JSON array of foods. Macro keys may use either the
// protein/carbs/fat names or the short p/c/g ones, and nutrients may be given
// as {"iron": [1.3, "mg"]}.
func LoadLocal(path string) (*Local, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read food catalog: %w", err)
	}
	var items []localItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode food catalog %s: %w", path, err)
	}
	foods := make([]Food, 0, len(items))
	for i, item := range items {
		foods = append(foods, item.food(i))
	}
	return NewLocal(foods), nil
}

type localMacros struct {
	Kcal    float64  `json:"kcal"`
	Protein *float64 `json:"protein"`
	Carbs   *float64 `json:"carbs"`
	Fat     *float64 `json:"fat"`
	P       float64  `json:"p"`
	C       float64  `json:"c"`
	G       float64  `json:"g"`
}

func (m localMacros) macros() model.Macros {
	out := model.Macros{Kcal: m.Kcal, Protein: m.P, Carbs: m.C, Fat: m.G}
	if m.Protein != nil {
		out.Protein = *m.Protein
	}
	if m.Carbs != nil {
		out.Carbs = *m.Carbs
	}
	if m.Fat != nil {
		out.Fat = *m.Fat
	}
	return out
}

type localItem struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	Brand    string                     `json:"brand"`
	Portion  model.Portion              `json:"portion"`
	Macros   localMacros                `json:"macros"`
	Nutr     map[string]json.RawMessage `json:"nutrients"`
	Servings []Serving                  `json:"servings"`
}

// food normalizes one catalog entry. Entries without an id get one from
// their position in the file.
func (it localItem) food(index int) Food {
	f := Food{
		ID:       it.ID,
		Name:     strings.TrimSpace(it.Name),
		Source:   SourceLocal,
		Brand:    it.Brand,
		Macros:   it.Macros.macros(),
		Servings: it.Servings,
	}
	if f.ID == "" {
		f.ID = fmt.Sprintf("%s-%d", SourceLocal, index+1)
	}
	if f.Name == "" {
		f.Name = "Food"
	}
	f.Portion = it.Portion
	if f.Portion.Grams <= 0 {
		f.Portion.Grams = 100
	}
	if strings.TrimSpace(f.Portion.Description) == "" {
		f.Portion.Description = fmt.Sprintf("per %g g", f.Portion.Grams)
	}

	keys := make([]string, 0, len(it.Nutr))
	for k := range it.Nutr {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		var pair []any
		if err := json.Unmarshal(it.Nutr[k], &pair); err != nil || len(pair) == 0 {
			continue
		}
		amount, ok := pair[0].(float64)
		if !ok {
			continue
		}
		n := Nutrient{Key: k, Amount: amount}
		if len(pair) > 1 {
			n.Unit, _ = pair[1].(string)
		}
		f.Nutrients = append(f.Nutrients, n)
	}
	return f
}

// Search ranks foods by name. A substring match scores above names whose
// words start with one of the query terms. An empty query returns the first
// limit foods.
func (l *Local) Search(_ context.Context, query string, limit int) ([]Food, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	type scored struct {
		score float64
		food  Food
	}
	ranked := make([]scored, 0, len(l.foods))
	for _, f := range l.foods {
		sc := score(q, strings.ToLower(f.Name))
		if q != "" && sc <= 0 {
			continue
		}
		ranked = append(ranked, scored{score: sc, food: f})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if limit <= 0 || limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]Food, 0, limit)
	for _, r := range ranked[:limit] {
		out = append(out, r.food)
	}
	return out, nil
}

func score(query, name string) float64 {
	if query == "" {
		return 1
	}
	if strings.Contains(name, query) {
		return 0.9 + float64(len(query))/float64(max(len(name), 1))
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return 0
	}
	terms := strings.Fields(query)
	matches := 0
	for _, w := range words {
		for _, term := range terms {
			if strings.HasPrefix(w, term) {
				matches++
				break
			}
		}
	}
	return float64(matches) / float64(len(words))
}
