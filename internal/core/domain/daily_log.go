package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMealNames are shown on any date that has no stored meals.
var DefaultMealNames = []string{"Breakfast", "Lunch", "Dinner"}

// seedNamespace makes default meal ids a pure function of (user, date, name),
// so two devices seeding the same day converge on the same rows.
var seedNamespace = uuid.MustParse("6f1d3c2a-8b4e-4f7a-9c31-2d5e8a7b0c44")

type DailyLog struct {
	UserID string  `json:"user_id"`
	Date   string  `json:"date"`
	Meals  []*Meal `json:"meals"`
	// Seeded is true while the meals are the unsaved default set.
	Seeded bool `json:"seeded"`
}

// DefaultMeals builds the zeroed Breakfast/Lunch/Dinner set for a date.
func DefaultMeals(userID, date string) []*Meal {
	now := time.Now().UTC()
	meals := make([]*Meal, 0, len(DefaultMealNames))
	for i, name := range DefaultMealNames {
		meals = append(meals, &Meal{
			ID:        uuid.NewSHA1(seedNamespace, []byte(userID+"|"+date+"|"+name)).String(),
			UserID:    userID,
			Date:      date,
			Name:      name,
			Position:  i,
			Foods:     []*FoodEntry{},
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return meals
}

// NewDailyLog wraps stored meals; an empty result yields the default seed.
func NewDailyLog(userID, date string, stored []*Meal) *DailyLog {
	if len(stored) == 0 {
		return &DailyLog{
			UserID: userID,
			Date:   date,
			Meals:  DefaultMeals(userID, date),
			Seeded: true,
		}
	}

	for _, m := range stored {
		m.Recalculate()
	}
	return &DailyLog{UserID: userID, Date: date, Meals: stored}
}

func (l *DailyLog) FindMeal(mealID string) (*Meal, int) {
	for i, m := range l.Meals {
		if m.ID == mealID {
			return m, i
		}
	}
	return nil, -1
}

// NextPosition is one past the highest position in use.
func (l *DailyLog) NextPosition() int {
	next := 0
	for _, m := range l.Meals {
		if m.Position >= next {
			next = m.Position + 1
		}
	}
	return next
}

// Totals sums every food of every meal, recomputed on each call.
func (l *DailyLog) Totals() Macros {
	var total Macros
	for _, m := range l.Meals {
		for _, f := range m.Foods {
			total = total.Add(f.Macros)
		}
	}
	return total
}

func (l *DailyLog) Clone() *DailyLog {
	c := *l
	c.Meals = make([]*Meal, 0, len(l.Meals))
	for _, m := range l.Meals {
		c.Meals = append(c.Meals, m.Clone())
	}
	return &c
}
