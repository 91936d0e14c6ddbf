package usda

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AlexisVallejos/macroentreno-flet/internal/catalog"
	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

func TestSearchFoodsParsesUSDAResponse(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotPageSize float64
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "demo" {
			t.Errorf("expected api key in query string, got %q", r.URL.RawQuery)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		gotQuery, _ = body["query"].(string)
		gotPageSize, _ = body["pageSize"].(float64)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "foods": [
    {
      "fdcId": 171077,
      "description": "Chicken breast, roasted",
      "foodNutrients": [
        {"nutrientName": "Energy", "unitName": "KCAL", "value": 165},
        {"nutrientName": "Protein", "unitName": "G", "value": 31},
        {"nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 0},
        {"nutrientName": "Total lipid (fat)", "unitName": "G", "value": 3.6},
        {"nutrientName": "Iron, Fe", "unitName": "MG", "value": 1.04}
      ]
    },
    {
      "fdcId": 2,
      "description": "Water",
      "foodNutrients": [{"nutrientName": "Energy", "unitName": "kJ", "value": 0}]
    },
    {
      "fdcId": 3,
      "description": "Chicken thigh",
      "foodNutrients": [
        {"nutrientName": "Energy", "unitName": "kJ", "value": 800},
        {"nutrientName": "Protein", "unitName": "G", "value": 25},
        {"nutrientName": "Total lipid (fat)", "unitName": "G", "value": 10}
      ]
    }
  ]
}`))
	}))
	defer ts.Close()

	c := &Client{
		APIKey:     "demo",
		BaseURL:    ts.URL,
		HTTPClient: ts.Client(),
	}

	foods, err := c.SearchFoods(context.Background(), " chicken ", 5)
	if err != nil {
		t.Fatalf("search foods: %v", err)
	}
	if gotQuery != "chicken" || gotPageSize != 5 {
		t.Fatalf("unexpected request: query=%q pageSize=%v", gotQuery, gotPageSize)
	}
	want := []catalog.Food{
		{
			ID:        "usda-171077",
			Name:      "Chicken breast, roasted",
			Source:    SourceUSDA,
			Portion:   model.Portion{Grams: 100, Description: "per 100 g"},
			Macros:    model.Macros{Kcal: 165, Protein: 31, Carbs: 0, Fat: 3.6},
			Nutrients: []catalog.Nutrient{{Key: "iron", Amount: 1.04, Unit: "mg"}},
		},
		{
			ID:      "usda-3",
			Name:    "Chicken thigh",
			Source:  SourceUSDA,
			Portion: model.Portion{Grams: 100, Description: "per 100 g"},
			Macros:  model.Macros{Kcal: 190, Protein: 25, Fat: 10},
		},
	}
	if diff := cmp.Diff(want, foods); diff != "" {
		t.Fatalf("foods mismatch (-want +got):\n%s", diff)
	}
}

func TestSearchFoodsErrors(t *testing.T) {
	t.Parallel()

	if _, err := (&Client{}).SearchFoods(context.Background(), "rice", 3); err == nil {
		t.Fatalf("expected missing api key error")
	}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()
	c := &Client{APIKey: "demo", BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.SearchFoods(context.Background(), "rice", 3); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestNormalizeUSDAMicronutrient(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name, unit string
		key, want  string
		ok         bool
	}{
		{"Iron, Fe", "MG", "iron", "mg", true},
		{"Vitamin C, total ascorbic acid", "MG", "vitamin_c", "mg", true},
		{"Vitamin D (D2 + D3), International Units", "IU", "vitamin_d", "IU", true},
		{"Fiber, total dietary", "G", "fiber", "g", true},
		{"Caffeine", "MG", "", "", false},
	}
	for _, tc := range cases {
		key, unit, ok := normalizeUSDAMicronutrient(tc.name, tc.unit)
		if ok != tc.ok || key != tc.key || unit != tc.want {
			t.Fatalf("normalize(%q, %q) = %q, %q, %v", tc.name, tc.unit, key, unit, ok)
		}
	}
}
