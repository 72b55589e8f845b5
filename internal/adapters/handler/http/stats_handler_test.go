package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

func TestStatsHandler_GetNutritionStats(t *testing.T) {
	api := newTestAPI(t)

	view := decode[dayView](t, api.do(t, http.MethodGet, dayPath, nil))
	w := api.do(t, http.MethodPost, dayPath+"/meals/"+view.Meals[1].ID+"/foods", map[string]any{
		"name": "Oats", "description": oatsDescription, "weight": 100,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("Success: Returns per-day totals for the range", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/stats/nutrition?start_date=2024-03-09&end_date=2024-03-11", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		stats := decode[domain.NutritionStats](t, w)
		require.Len(t, stats.Days, 3)
		assert.Equal(t, 1, stats.DaysLogged)
		assert.Equal(t, 200.0, stats.Total.Calories)
		assert.Equal(t, 200.0, stats.DailyAverage.Calories)
		assert.Equal(t, testDay, stats.Days[1].Date)
		assert.Equal(t, 3, stats.Days[1].Meals)
	})

	t.Run("Success: Defaults to the last seven days", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/stats/nutrition?end_date=2024-03-10", nil)
		require.Equal(t, http.StatusOK, w.Code)

		stats := decode[domain.NutritionStats](t, w)
		assert.Equal(t, "2024-03-04", stats.StartDate)
		assert.Len(t, stats.Days, 7)
	})

	t.Run("Validation: 400 when start is after end", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/stats/nutrition?start_date=2024-03-10&end_date=2024-03-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation: 400 when the range is over a year", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/stats/nutrition?start_date=2022-01-01&end_date=2024-01-01", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Validation: 400 on a malformed date", func(t *testing.T) {
		w := api.do(t, http.MethodGet, "/api/v1/stats/nutrition?start_date=not-a-date", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
