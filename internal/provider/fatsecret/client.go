package fatsecret

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cast"

	"github.com/AlexisVallejos/macroentreno-flet/internal/catalog"
	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

const (
	defaultAPIURL   = "https://platform.fatsecret.com/rest/server.api"
	SourceFatSecret = "fatsecret"

	maxResults = 60
	pageSize   = 20
)

// servingNutrients lists the per-serving fields kept as micronutrients, in
// output order.
var servingNutrients = []struct{ key, unit string }{
	{"saturated_fat", "g"},
	{"polyunsaturated_fat", "g"},
	{"monounsaturated_fat", "g"},
	{"trans_fat", "g"},
	{"cholesterol", "mg"},
	{"sodium", "mg"},
	{"potassium", "mg"},
	{"fiber", "g"},
	{"sugar", "g"},
	{"vitamin_a", "IU"},
	{"vitamin_c", "mg"},
	{"calcium", "mg"},
	{"iron", "mg"},
	{"vitamin_d", "IU"},
	{"vitamin_b12", "mcg"},
	{"vitamin_b6", "mg"},
	{"magnesium", "mg"},
	{"zinc", "mg"},
}

// Client searches the FatSecret Platform REST API with OAuth 1.0 signed
// requests. Each hit is expanded with food.get to read its servings.
type Client struct {
	ConsumerKey    string
	ConsumerSecret string
	Region         string
	Language       string
	APIURL         string
	HTTPClient     *http.Client
	Now            func() time.Time
}

// Search implements catalog.Searcher.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
	return c.SearchFoods(ctx, query, limit)
}

func (c *Client) SearchFoods(ctx context.Context, query string, limit int) ([]catalog.Food, error) {
	if strings.TrimSpace(c.ConsumerKey) == "" || strings.TrimSpace(c.ConsumerSecret) == "" {
		return nil, fmt.Errorf("missing FatSecret consumer key or secret")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []catalog.Food{}, nil
	}
	if limit <= 0 {
		limit = 8
	}
	limit = min(limit, maxResults)

	out := make([]catalog.Food, 0, limit)
	for page := 0; len(out) < limit; page++ {
		batch := min(pageSize, limit-len(out))
		var found searchResponse
		err := c.call(ctx, url.Values{
			"method":                 {"foods.search"},
			"search_expression":      {query},
			"max_results":            {strconv.Itoa(batch)},
			"page_number":            {strconv.Itoa(page)},
			"include_sub_categories": {"true"},
		}, &found)
		if err != nil {
			return nil, err
		}
		items := found.Foods.Food
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			id := cast.ToString(item.FoodID)
			if id == "" {
				continue
			}
			var detail detailResponse
			if err := c.call(ctx, url.Values{"method": {"food.get"}, "food_id": {id}}, &detail); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				continue
			}
			if food, ok := toCatalogFood(detail.Food); ok {
				out = append(out, food)
			}
			if len(out) >= limit {
				break
			}
		}
		if len(items) < batch {
			break
		}
	}
	return out, nil
}

func (c *Client) endpoint() string {
	if u := strings.TrimSpace(c.APIURL); u != "" {
		return u
	}
	return defaultAPIURL
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// call signs params, issues the GET and decodes the payload into out. API
// level failures arrive with status 200 and an "error" object.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	endpoint := c.endpoint()
	params.Set("format", "json")
	if c.Region != "" {
		params.Set("region", c.Region)
	}
	if c.Language != "" {
		params.Set("language", c.Language)
	}
	params.Set("oauth_consumer_key", c.ConsumerKey)
	params.Set("oauth_nonce", strings.ReplaceAll(uuid.NewString(), "-", ""))
	params.Set("oauth_signature_method", "HMAC-SHA1")
	params.Set("oauth_timestamp", strconv.FormatInt(c.now().Unix(), 10))
	params.Set("oauth_version", "1.0")
	params.Set("oauth_signature", signature(http.MethodGet, endpoint, params, c.ConsumerSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create FatSecret request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 6 * time.Second}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute FatSecret request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read FatSecret response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("FatSecret request failed with status %d", resp.StatusCode)
	}
	var envelope struct {
		Error *struct {
			Code    any    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode FatSecret response: %w", err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("FatSecret error %v: %s", envelope.Error.Code, envelope.Error.Message)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode FatSecret %s response: %w", params.Get("method"), err)
	}
	return nil
}

// signature computes the OAuth 1.0 HMAC-SHA1 signature. params must not yet
// hold oauth_signature. No token is used, so the key is "secret&".
func signature(method, endpoint string, params url.Values, secret string) string {
	pairs := make([]string, 0, len(params))
	for k, vs := range params {
		if k == "oauth_signature" {
			continue
		}
		for _, v := range vs {
			pairs = append(pairs, oauthEscape(k)+"="+oauthEscape(v))
		}
	}
	sort.Strings(pairs)
	base := method + "&" + oauthEscape(endpoint) + "&" + oauthEscape(strings.Join(pairs, "&"))

	mac := hmac.New(sha1.New, []byte(oauthEscape(secret)+"&"))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func oauthEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// oneOrMany decodes the API's habit of sending a single object where a list
// is expected.
type oneOrMany[T any] []T

func (o *oneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*o = nil
		return nil
	case bytes.HasPrefix(data, []byte("[")):
		var list []T
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*o = list
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = oneOrMany[T]{one}
	return nil
}

type searchResponse struct {
	Foods struct {
		Food oneOrMany[searchHit] `json:"food"`
	} `json:"foods"`
}

type searchHit struct {
	FoodID any `json:"food_id"`
}

type detailResponse struct {
	Food foodDetail `json:"food"`
}

type foodDetail struct {
	FoodID   any    `json:"food_id"`
	Name     string `json:"food_name"`
	Brand    string `json:"brand_name"`
	Servings struct {
		Serving oneOrMany[map[string]any] `json:"serving"`
	} `json:"servings"`
}

// number reads the numeric strings the API uses; "--" and blanks are zero.
func number(raw map[string]any, key string) float64 {
	v, err := cast.ToFloat64E(strings.TrimSpace(cast.ToString(raw[key])))
	if err != nil {
		return 0
	}
	return v
}

func servingGrams(raw map[string]any) float64 {
	amount := number(raw, "metric_serving_amount")
	unit := strings.ToLower(cast.ToString(raw["metric_serving_unit"]))
	switch {
	case unit == "g" && amount > 0:
		return amount
	case number(raw, "serving_weight_grams") > 0:
		return number(raw, "serving_weight_grams")
	case unit == "ml" && amount > 0:
		return amount
	}
	return 0
}

func macroSum(m model.Macros) float64 {
	return m.Kcal + m.Protein + m.Carbs + m.Fat
}

// toCatalogFood picks the serving that reports a weight, preferring the
// richest one, and skips foods whose chosen serving carries no macros.
func toCatalogFood(f foodDetail) (catalog.Food, bool) {
	raws := f.Servings.Serving
	if len(raws) == 0 {
		return catalog.Food{}, false
	}
	servings := make([]catalog.Serving, 0, len(raws))
	preferred := 0
	for i, raw := range raws {
		fat := number(raw, "fat")
		if fat == 0 {
			fat = number(raw, "total_fat")
		}
		s := catalog.Serving{
			Description: strings.TrimSpace(cast.ToString(raw["serving_description"])),
			Grams:       servingGrams(raw),
			Macros: model.Macros{
				Kcal:    number(raw, "calories"),
				Protein: number(raw, "protein"),
				Carbs:   number(raw, "carbohydrate"),
				Fat:     fat,
			},
		}
		if s.Description == "" {
			s.Description = strings.TrimSpace(cast.ToString(raw["measurement_description"]))
		}
		if s.Description == "" && s.Grams > 0 {
			s.Description = fmt.Sprintf("per %g g", s.Grams)
		}
		servings = append(servings, s)

		if i == 0 {
			continue
		}
		prev := servings[preferred]
		if (prev.Grams <= 0 && s.Grams > 0) || (s.Grams > 0 && macroSum(s.Macros) > macroSum(prev.Macros)) {
			preferred = i
		}
	}

	best := servings[preferred]
	if best.Macros == (model.Macros{}) {
		return catalog.Food{}, false
	}
	portion := model.Portion{Grams: best.Grams, Description: best.Description}
	if portion.Grams <= 0 {
		portion.Grams = 100
	}
	if portion.Description == "" {
		portion.Description = "suggested serving"
	}

	var nutrients []catalog.Nutrient
	for _, n := range servingNutrients {
		if v := number(raws[preferred], n.key); v > 0 {
			nutrients = append(nutrients, catalog.Nutrient{Key: n.key, Amount: v, Unit: n.unit})
		}
	}

	name := strings.TrimSpace(f.Name)
	if name == "" {
		name = "FatSecret food"
	}
	return catalog.Food{
		ID:        "fatsecret-" + cast.ToString(f.FoodID),
		Name:      name,
		Source:    SourceFatSecret,
		Brand:     strings.TrimSpace(f.Brand),
		Portion:   portion,
		Macros:    best.Macros,
		Nutrients: nutrients,
		Servings:  servings,
	}, true
}
