package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/AlexisVallejos/macroentreno-flet/internal/model"
)

// Food is a catalog item. Macros and nutrients are per portion.
type Food struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Source    string        `json:"source"`
	Brand     string        `json:"brand,omitempty"`
	Portion   model.Portion `json:"portion"`
	Macros    model.Macros  `json:"macros"`
	Nutrients []Nutrient    `json:"nutrients,omitempty"`
	Servings  []Serving     `json:"servings,omitempty"`
}

type Nutrient struct {
	Key    string  `json:"key"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Serving is an alternative portion offered by multi-serving items.
type Serving struct {
	Description string       `json:"description"`
	Grams       float64      `json:"grams"`
	Macros      model.Macros `json:"macros"`
}

// AsCustomFood exposes the item in the shape the diary helpers scale from.
func (f Food) AsCustomFood() model.CustomFood {
	return model.CustomFood{
		ID:      f.ID,
		Name:    f.Name,
		Source:  f.Source,
		Portion: f.Portion,
		Macros:  f.Macros,
	}
}

// Ref is the denormalized pointer stored on a diary entry.
func (f Food) Ref() *model.FoodRef {
	portion := f.Portion
	return &model.FoodRef{
		ID:         f.ID,
		Source:     f.Source,
		Portion:    &portion,
		LookupName: f.Name,
	}
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Food, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, query string, limit int) ([]Food, error)

func (f SearcherFunc) Search(ctx context.Context, query string, limit int) ([]Food, error) {
	return f(ctx, query, limit)
}

// Chain asks each searcher in turn and returns the first non-empty result.
// Failing sources are logged and skipped.
type Chain struct {
	Searchers []Searcher
	Logger    *zap.Logger
}

func (c Chain) Search(ctx context.Context, query string, limit int) ([]Food, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var errs []error
	for i, s := range c.Searchers {
		if s == nil {
			continue
		}
		foods, err := s.Search(ctx, query, limit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			logger.Warn("food search source failed", zap.Int("source", i), zap.String("query", query), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		if len(foods) > 0 {
			return foods, nil
		}
	}
	if len(errs) == len(c.Searchers) && len(errs) > 0 {
		return nil, fmt.Errorf("all food sources failed: %w", errors.Join(errs...))
	}
	return []Food{}, nil
}
