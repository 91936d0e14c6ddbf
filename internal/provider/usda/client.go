package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/AlexisVallejos/macroentreno-flet/internal/catalog"
	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

const (
	defaultBaseURL = "https://api.nal.usda.gov"
	SourceUSDA     = "usda"
)

var searchDataTypes = []string{"SR Legacy", "Survey (FNDDS)", "Branded"}

// Client searches FoodData Central. Results are reported per 100 g.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Search implements catalog.Searcher.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
	return c.SearchFoods(ctx, query, limit)
}

func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing USDA API key")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Food{}, nil
	}
	if limit <= 0 {
		limit = 8
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 6 * time.Second}
	}

	reqBody := map[string]any{
		"query":           query,
		"dataType":        searchDataTypes,
		"pageSize":        limit,
		"requireAllWords": false,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	url := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode USDA response: %w", err)
	}

	out := make([]catalog.Food, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		food, ok := toCatalogFood(f)
		if !ok {
			continue
		}
		out = append(out, food)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// toCatalogFood skips items that carry no macro information at all.
func toCatalogFood(f usdaFood) (catalog.Food, bool) {
	var macros model.Macros
	var nutrients []catalog.Nutrient
	for _, n := range f.FoodNutrients {
		switch strings.ToLower(strings.TrimSpace(n.NutrientName)) {
		case "energy":
			if strings.EqualFold(strings.TrimSpace(n.UnitName), "kcal") {
				macros.Kcal = n.Value
			}
		case "protein":
			macros.Protein = n.Value
		case "carbohydrate, by difference":
			macros.Carbs = n.Value
		case "total lipid (fat)":
			macros.Fat = n.Value
		default:
			if key, unit, ok := normalizeUSDAMicronutrient(n.NutrientName, n.UnitName); ok {
				nutrients = append(nutrients, catalog.Nutrient{Key: key, Amount: n.Value, Unit: unit})
			}
		}
	}
	if macros.Kcal == 0 && (macros.Protein > 0 || macros.Carbs > 0 || macros.Fat > 0) {
		macros.Kcal = math.Round(macros.Protein*4 + macros.Carbs*4 + macros.Fat*9)
	}
	if macros == (model.Macros{}) {
		return catalog.Food{}, false
	}

	name := strings.TrimSpace(f.Description)
	if name == "" {
		name = "USDA food"
	}
	return catalog.Food{
		ID:        fmt.Sprintf("usda-%d", f.FDCID),
		Name:      name,
		Source:    SourceUSDA,
		Brand:     strings.TrimSpace(f.BrandOwner),
		Portion:   model.Portion{Grams: 100, Description: "per 100 g"},
		Macros:    macros,
		Nutrients: nutrients,
	}, true
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID         int64          `json:"fdcId"`
	Description   string         `json:"description"`
	BrandOwner    string         `json:"brandOwner"`
	FoodNutrients []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

func normalizeUSDAMicronutrient(name, unit string) (string, string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "", "", false
	}
	switch {
	case strings.HasPrefix(lower, "fiber, total dietary"):
		return "fiber", strings.ToLower(strings.TrimSpace(unit)), unit != ""
	case strings.HasPrefix(lower, "vitamin c"):
		return "vitamin_c", strings.ToLower(strings.TrimSpace(unit)), unit != ""
	case strings.HasPrefix(lower, "vitamin d") && strings.EqualFold(strings.TrimSpace(unit), "iu"):
		return "vitamin_d", "IU", true
	}
	isVitamin := strings.Contains(lower, "vitamin")
	isMineral := strings.Contains(lower, "iron") ||
		strings.Contains(lower, "calcium") ||
		strings.Contains(lower, "potassium") ||
		strings.Contains(lower, "zinc") ||
		strings.Contains(lower, "magnesium")
	if !isVitamin && !isMineral {
		return "", "", false
	}
	// "Iron, Fe" and "Calcium, Ca" map onto the preset ids.
	if comma := strings.Index(lower, ","); comma > 0 && isMineral {
		lower = lower[:comma]
	}
	clean := strings.NewReplacer(",", "", "(", "", ")", "", "-", "_", " ", "_").Replace(lower)
	for strings.Contains(clean, "__") {
		clean = strings.ReplaceAll(clean, "__", "_")
	}
	clean = strings.Trim(clean, "_")
	if clean == "" {
		return "", "", false
	}
	unit = strings.ToLower(strings.TrimSpace(unit))
	if unit == "" {
		return "", "", false
	}
	return clean, unit, true
}
