package services

import (
	"context"
	"math"
	"time"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

const MaxStatsRangeDays = 366

type StatsService struct {
	meals domain.MealRepository
}

func NewStatsService(meals domain.MealRepository) *StatsService {
	return &StatsService{meals: meals}
}

// GetNutritionStats reports per-day totals for every day of the range, using
// the totals stored with each meal. Averages cover logged days only.
func (s *StatsService) GetNutritionStats(ctx context.Context, input domain.StatsInput) (*domain.NutritionStats, error) {
	startDate := input.StartDate.Truncate(24 * time.Hour)
	endDate := input.EndDate.Truncate(24 * time.Hour)

	if startDate.After(endDate) || endDate.Sub(startDate).Hours()/24 > MaxStatsRangeDays {
		return nil, ErrInvalidDateRange
	}

	from := startDate.Format(domain.DateLayout)
	to := endDate.Format(domain.DateLayout)

	meals, err := s.meals.ListByDateRange(ctx, input.UserID, from, to)
	if err != nil {
		return nil, storeErr("list meals", err)
	}

	byDate := make(map[string]*domain.DayTotals)
	for _, m := range meals {
		day, ok := byDate[m.Date]
		if !ok {
			day = &domain.DayTotals{Date: m.Date}
			byDate[m.Date] = day
		}
		day.Meals++
		day.Totals = day.Totals.Add(m.Totals)
	}

	stats := &domain.NutritionStats{
		StartDate: from,
		EndDate:   to,
		Days:      make([]domain.DayTotals, 0, len(byDate)),
	}

	for current := startDate; !current.After(endDate); current = current.AddDate(0, 0, 1) {
		key := current.Format(domain.DateLayout)
		day, ok := byDate[key]
		if !ok {
			stats.Days = append(stats.Days, domain.DayTotals{Date: key})
			continue
		}

		stats.Days = append(stats.Days, *day)
		stats.Total = stats.Total.Add(day.Totals)
		if !day.Totals.IsZero() {
			stats.DaysLogged++
		}
	}

	if stats.DaysLogged > 0 {
		avg := stats.Total.Mul(1 / float64(stats.DaysLogged))
		stats.DailyAverage = domain.Macros{
			Calories: math.Round(avg.Calories),
			Carbs:    math.Round(avg.Carbs*10) / 10,
			Fat:      math.Round(avg.Fat*10) / 10,
			Protein:  math.Round(avg.Protein*10) / 10,
		}
	}

	return stats, nil
}
