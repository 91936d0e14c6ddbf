package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AlexisVallejos/macroentreno-flet/internal/catalog"
	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
)

const catalogJSON = `[
  {"id": "ar-1", "name": "Pechuga de pollo", "portion": {"grams": 100}, "macros": {"kcal": 165, "p": 31, "c": 0, "g": 3.6},
   "nutrients": {"iron": [1.0, "mg"], "zinc": [1.0, "mg"]}},
  {"id": "ar-2", "name": "Pollo", "portion": {"grams": 150, "description": "1 presa"}, "macros": {"kcal": 240, "protein": 30, "carbs": 0, "fat": 12}},
  {"id": "ar-3", "name": "Arroz blanco", "macros": {"kcal": 130, "p": 2.7, "c": 28, "g": 0.3}}
]`

func writeCatalog(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foods.json")
	if err := os.WriteFile(path, []byte(catalogJSON), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestLoadLocalNormalizesItems(t *testing.T) {
	t.Parallel()
	local, err := catalog.LoadLocal(writeCatalog(t))
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	foods, err := local.Search(context.Background(), "arroz", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	want := []catalog.Food{{
		ID:      "ar-3",
		Name:    "Arroz blanco",
		Source:  catalog.SourceLocal,
		Portion: model.Portion{Grams: 100, Description: "per 100 g"},
		Macros:  model.Macros{Kcal: 130, Protein: 2.7, Carbs: 28, Fat: 0.3},
	}}
	if diff := cmp.Diff(want, foods); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}

	chicken, err := local.Search(context.Background(), "pechuga", 1)
	if err != nil {
		t.Fatalf("search pechuga: %v", err)
	}
	wantNutrients := []catalog.Nutrient{{Key: "iron", Amount: 1, Unit: "mg"}, {Key: "zinc", Amount: 1, Unit: "mg"}}
	if len(chicken) != 1 || chicken[0].Macros.Protein != 31 || !cmp.Equal(wantNutrients, chicken[0].Nutrients) {
		t.Fatalf("unexpected chicken item: %+v", chicken)
	}
}

func TestLoadLocalAssignsDistinctFallbackIDs(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "foods.json")
	data := `[{"name": "Lentejas"}, {"id": "ar-9", "name": "Garbanzos"}, {"name": "Porotos"}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	local, err := catalog.LoadLocal(path)
	if err != nil {
		t.Fatalf("load local: %v", err)
	}
	foods, err := local.Search(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	ids := make([]string, 0, len(foods))
	for _, f := range foods {
		ids = append(ids, f.ID)
	}
	if diff := cmp.Diff([]string{"local-1", "ar-9", "local-3"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalSearchRanking(t *testing.T) {
	t.Parallel()
	local, err := catalog.LoadLocal(writeCatalog(t))
	if err != nil {
		t.Fatalf("load local: %v", err)
	}

	foods, err := local.Search(context.Background(), "POLLO", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(foods) != 2 || foods[0].ID != "ar-2" || foods[1].ID != "ar-1" {
		t.Fatalf("expected the closer name first, got %+v", foods)
	}

	foods, err = local.Search(context.Background(), "arroz integral", 10)
	if err != nil {
		t.Fatalf("search words: %v", err)
	}
	if len(foods) != 1 || foods[0].ID != "ar-3" {
		t.Fatalf("expected word-prefix match on arroz, got %+v", foods)
	}

	all, err := local.Search(context.Background(), "", 2)
	if err != nil {
		t.Fatalf("search empty: %v", err)
	}
	if len(all) != 2 || all[0].ID != "ar-1" {
		t.Fatalf("expected first two items for an empty query, got %+v", all)
	}

	none, err := local.Search(context.Background(), "tofu", 10)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no match, got %+v, %v", none, err)
	}
}

func TestChainFallsBackToNextSource(t *testing.T) {
	t.Parallel()
	local := catalog.NewLocal([]catalog.Food{{ID: "l-1", Name: "Avena"}})
	failing := catalog.SearcherFunc(func(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
		return nil, errors.New("offline")
	})
	empty := catalog.SearcherFunc(func(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
		return nil, nil
	})

	foods, err := catalog.Chain{Searchers: []catalog.Searcher{failing, empty, local}}.Search(context.Background(), "avena", 5)
	if err != nil {
		t.Fatalf("chain search: %v", err)
	}
	if len(foods) != 1 || foods[0].ID != "l-1" {
		t.Fatalf("expected local result, got %+v", foods)
	}

	_, err = catalog.Chain{Searchers: []catalog.Searcher{failing}}.Search(context.Background(), "avena", 5)
	if err == nil {
		t.Fatalf("expected error when every source fails")
	}
}

func TestFoodScalesThroughCustomFoodHelpers(t *testing.T) {
	t.Parallel()
	food := catalog.Food{
		ID:      "ar-2",
		Name:    "Pollo",
		Source:  catalog.SourceLocal,
		Portion: model.Portion{Grams: 150, Description: "1 presa"},
		Macros:  model.Macros{Kcal: 240, Protein: 30, Fat: 12},
	}
	got := service.ScaleMacros(food.AsCustomFood(), 75)
	if got != (model.Macros{Kcal: 120, Protein: 15, Fat: 6}) {
		t.Fatalf("unexpected scaled macros: %+v", got)
	}
	ref := food.Ref()
	if ref.LookupName != "Pollo" || ref.Portion == nil || service.DescribePortion(ref.Portion) != "1 presa" {
		t.Fatalf("unexpected food ref: %+v", ref)
	}
}
