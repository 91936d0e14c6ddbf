package service_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
	"github.com/AlexisVallejos/macroentreno-flet/internal/service"
)

func TestCustomFoodLifecycle(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t)
	foods := service.NewCustomFoods(s)

	food, err := foods.Create(service.CustomFoodInput{Name: "Granola", Grams: -5, Kcal: 450, Protein: 10, Carbs: 60, Fat: 18})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(food.ID, "custom-") || food.Source != model.SourceCustom {
		t.Fatalf("unexpected identity: %+v", food)
	}
	if food.Portion.Grams != 100 || food.Portion.Description != "per 100 g" {
		t.Fatalf("expected default portion, got %+v", food.Portion)
	}

	got, err := foods.Get(food.ID)
	if err != nil || got == nil || got.Name != "Granola" {
		t.Fatalf("get: %+v, %v", got, err)
	}
	missing, err := foods.Get("custom-missing")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing food, got %+v, %v", missing, err)
	}

	updated, err := foods.Update(food.ID, service.CustomFoodPatch{Grams: ptr(40.0), Kcal: ptr(180.0)})
	if err != nil || updated == nil {
		t.Fatalf("update: %+v, %v", updated, err)
	}
	if updated.ID != food.ID || updated.Portion.Grams != 40 || updated.Portion.Description != "per 40 g" || updated.Macros.Protein != 10 {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	updated, err = foods.Update(food.ID, service.CustomFoodPatch{Description: ptr("1 bowl")})
	if err != nil || updated.Portion != (model.Portion{Grams: 40, Description: "1 bowl"}) {
		t.Fatalf("expected description-only change, got %+v, %v", updated, err)
	}
	none, err := foods.Update("custom-missing", service.CustomFoodPatch{Name: ptr("x")})
	if err != nil || none != nil {
		t.Fatalf("expected nil update for missing food, got %+v, %v", none, err)
	}

	if _, err := foods.Create(service.CustomFoodInput{Name: " "}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected name validation error, got %v", err)
	}
	if _, err := foods.Create(service.CustomFoodInput{Name: "x", Carbs: -1}); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected macro validation error, got %v", err)
	}

	ok, err := foods.Delete(food.ID)
	if err != nil || !ok {
		t.Fatalf("delete: ok=%v err=%v", ok, err)
	}
	list, err := foods.List()
	if err != nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %+v, %v", list, err)
	}
}

func TestCustomFoodListBackfillsDefaults(t *testing.T) {
	t.Parallel()
	s, backend := newTestStore(t)
	if err := s.Save(&model.Document{CustomFoods: []model.CustomFood{{Name: "", Macros: model.Macros{Kcal: 90}}}}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	foods := service.NewCustomFoods(s)

	list, err := foods.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one food, got %d", len(list))
	}
	f := list[0]
	if f.ID == "" || f.Source != model.SourceCustom || f.Name == "" || f.Portion.Grams != 100 {
		t.Fatalf("expected defaults filled, got %+v", f)
	}
	writes := backend.Writes
	if _, err := foods.List(); err != nil {
		t.Fatalf("second list: %v", err)
	}
	if backend.Writes != writes {
		t.Fatalf("expected second list not to write")
	}
}

func TestScaleMacros(t *testing.T) {
	t.Parallel()
	food := model.CustomFood{
		Portion: model.Portion{Grams: 30},
		Macros:  model.Macros{Kcal: 123, Protein: 4.4, Carbs: 20.3, Fat: 3.3},
	}

	base := service.ScaleMacros(food, 30)
	double := service.ScaleMacros(food, 60)
	pairs := []struct {
		name      string
		one, two  float64
		tolerance float64
	}{
		{"kcal", base.Kcal, double.Kcal, 1},
		{"protein", base.Protein, double.Protein, 0.1},
		{"carbs", base.Carbs, double.Carbs, 0.1},
		{"fat", base.Fat, double.Fat, 0.1},
	}
	for _, p := range pairs {
		if math.Abs(p.two-2*p.one) > p.tolerance {
			t.Fatalf("%s: expected %v to be about twice %v", p.name, p.two, p.one)
		}
	}
	if base != (model.Macros{Kcal: 123, Protein: 4.4, Carbs: 20.3, Fat: 3.3}) {
		t.Fatalf("expected base portion to return stored macros, got %+v", base)
	}
	if got := service.ScaleMacros(food, -10); got != (model.Macros{}) {
		t.Fatalf("expected negative grams to clamp to zero, got %+v", got)
	}
	if got := service.ScaleMacros(model.CustomFood{Macros: model.Macros{Kcal: 200}}, 50); got.Kcal != 100 {
		t.Fatalf("expected 100 g base when portion is missing, got %+v", got)
	}
}

func TestDescribePortion(t *testing.T) {
	t.Parallel()
	cases := []struct {
		portion *model.Portion
		want    string
	}{
		{&model.Portion{Grams: 30, Description: "1 scoop"}, "1 scoop"},
		{&model.Portion{Grams: 12.5}, "per 12.5 g"},
		{&model.Portion{}, "standard portion"},
		{nil, "standard portion"},
	}
	for _, tc := range cases {
		if got := service.DescribePortion(tc.portion); got != tc.want {
			t.Fatalf("DescribePortion(%+v) = %q, want %q", tc.portion, got, tc.want)
		}
	}
}
