package services

import (
	"context"
	"strings"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/nutrition"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 50
)

type FoodService struct {
	searcher domain.FoodSearcher
}

// NewFoodService accepts a nil searcher; Search then reports
// ErrSearchUnavailable while Preview keeps working.
func NewFoodService(searcher domain.FoodSearcher) *FoodService {
	return &FoodService{searcher: searcher}
}

// FoodResult is a search candidate with its description already parsed.
// Parsed is false when the description carried no usable nutrition data.
type FoodResult struct {
	domain.FoodCandidate
	Per100g domain.Macros `json:"per_100g"`
	Parsed  bool          `json:"parsed"`
}

func (s *FoodService) Search(ctx context.Context, query string, limit int) ([]FoodResult, error) {
	if s.searcher == nil {
		return nil, ErrSearchUnavailable
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	candidates, err := s.searcher.Search(ctx, query, limit)
	if err != nil {
		return nil, storeErr("search foods", err)
	}

	results := make([]FoodResult, 0, len(candidates))
	for _, c := range candidates {
		m := nutrition.Parse(c.Description)
		results = append(results, FoodResult{
			FoodCandidate: c,
			Per100g:       m,
			Parsed:        nutrition.Parsed(m),
		})
	}
	return results, nil
}

// Preview scales a description to weightGrams at display precision.
func (s *FoodService) Preview(description string, weightGrams float64) (domain.Macros, error) {
	if err := domain.ValidateWeight(weightGrams); err != nil {
		return domain.Macros{}, err
	}

	m := nutrition.Parse(description)
	if !nutrition.Parsed(m) {
		return domain.Macros{}, ErrUnparseableDescription
	}
	return nutrition.Scale(m, weightGrams), nil
}
