package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

func storedMeal(t *testing.T, repo domain.MealRepository, date string, totals domain.Macros) {
	t.Helper()
	m, err := domain.NewMeal(testUser, date, "Lunch", 0)
	require.NoError(t, err)
	m.Totals = totals
	require.NoError(t, repo.Save(context.Background(), m))
}

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func TestStatsService_GetNutritionStats(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryMeals()
	storedMeal(t, repo, "2024-03-01", domain.Macros{Calories: 1800, Carbs: 200, Fat: 60, Protein: 100})
	storedMeal(t, repo, "2024-03-01", domain.Macros{Calories: 400, Carbs: 50, Fat: 10, Protein: 25})
	storedMeal(t, repo, "2024-03-03", domain.Macros{Calories: 2000, Carbs: 250, Fat: 70, Protein: 120})
	storedMeal(t, repo, "2024-03-04", domain.Macros{})
	storedMeal(t, repo, "2024-03-09", domain.Macros{Calories: 5000})

	s := NewStatsService(repo)

	stats, err := s.GetNutritionStats(ctx, domain.StatsInput{
		UserID:    testUser,
		StartDate: day("2024-03-01"),
		EndDate:   day("2024-03-05"),
	})
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01", stats.StartDate)
	assert.Equal(t, "2024-03-05", stats.EndDate)
	require.Len(t, stats.Days, 5)
	assert.Equal(t, 2, stats.Days[0].Meals)
	assert.Equal(t, 2200.0, stats.Days[0].Totals.Calories)
	assert.True(t, stats.Days[1].Totals.IsZero())
	assert.Equal(t, 2, stats.DaysLogged, "days with only empty meals are not logged days")
	assert.Equal(t, 4200.0, stats.Total.Calories)
	assert.Equal(t, 2100.0, stats.DailyAverage.Calories)
	assert.Equal(t, 122.5, stats.DailyAverage.Protein)

	t.Run("Invalid ranges", func(t *testing.T) {
		_, err := s.GetNutritionStats(ctx, domain.StatsInput{UserID: testUser, StartDate: day("2024-03-05"), EndDate: day("2024-03-01")})
		assert.ErrorIs(t, err, ErrInvalidDateRange)

		_, err = s.GetNutritionStats(ctx, domain.StatsInput{UserID: testUser, StartDate: day("2022-01-01"), EndDate: day("2024-01-01")})
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("Store failure", func(t *testing.T) {
		failing := NewStatsService(&flakyRange{})
		_, err := failing.GetNutritionStats(ctx, domain.StatsInput{UserID: testUser, StartDate: day("2024-03-01"), EndDate: day("2024-03-01")})
		assert.ErrorIs(t, err, domain.ErrRemoteFailure)
	})
}

type flakyRange struct {
	domain.MealRepository
}

func (flakyRange) ListByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Meal, error) {
	return nil, errors.New("timeout")
}
