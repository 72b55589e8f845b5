package services

import (
	"context"
	"errors"
	"sync"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/nutrition"
)

// Diary owns one user's meals-by-date state for the lifetime of a session.
// Every mutation is applied to a copy, written to the store, and only then
// swapped in, so a failed write leaves the in-memory state untouched.
type Diary struct {
	userID string
	repo   domain.MealRepository

	mu     sync.Mutex
	logs   map[string]*domain.DailyLog
	active string
}

func NewDiary(userID string, repo domain.MealRepository) *Diary {
	return &Diary{
		userID: userID,
		repo:   repo,
		logs:   make(map[string]*domain.DailyLog),
	}
}

// FoodInput describes the food being logged. Per100g overrides the parsed
// description when set (quick add).
type FoodInput struct {
	Name        string
	Description string
	Per100g     *domain.Macros
}

func (d *Diary) UserID() string {
	return d.userID
}

func (d *Diary) ActiveDate() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// SelectDate makes date active, loading it from the store unless cached.
func (d *Diary) SelectDate(ctx context.Context, date string) error {
	norm, err := domain.NormalizeDate(date)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if norm == d.active {
		if _, ok := d.logs[norm]; ok {
			return nil
		}
	}

	if _, ok := d.logs[norm]; !ok {
		if err := d.load(ctx, norm); err != nil {
			return err
		}
	}

	d.active = norm
	return nil
}

// Refresh re-reads the active date from the store.
func (d *Diary) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active == "" {
		return ErrNoDateSelected
	}
	return d.load(ctx, d.active)
}

func (d *Diary) load(ctx context.Context, date string) error {
	stored, err := d.repo.ListByDate(ctx, d.userID, date)
	if err != nil {
		return storeErr("load meals", err)
	}
	d.logs[date] = domain.NewDailyLog(d.userID, date, stored)
	return nil
}

// Log returns a copy of the active day.
func (d *Diary) Log() (*domain.DailyLog, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	return log.Clone(), nil
}

// Meals returns copies of the active day's meals. A day without stored meals
// yields the default seed.
func (d *Diary) Meals() []*domain.Meal {
	log, err := d.Log()
	if err != nil {
		return nil
	}
	return log.Meals
}

// DailyTotals sums all food entries of the active day.
func (d *Diary) DailyTotals() domain.Macros {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return domain.Macros{}
	}
	return log.Totals()
}

func (d *Diary) AddMeal(ctx context.Context) (*domain.Meal, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}

	meal, err := domain.NewMeal(d.userID, log.Date, domain.DefaultMealName, log.NextPosition())
	if err != nil {
		return nil, err
	}

	next := log.Clone()
	next.Meals = append(next.Meals, meal)

	if next.Seeded {
		err = d.repo.SaveAll(ctx, next.Meals)
	} else {
		err = d.repo.Save(ctx, meal)
	}
	if err != nil {
		return nil, storeErr("save meal", err)
	}

	next.Seeded = false
	d.logs[log.Date] = next
	return meal.Clone(), nil
}

// RenameMeal is a no-op for an unknown meal.
func (d *Diary) RenameMeal(ctx context.Context, mealID, name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return err
	}

	meal, _ := log.FindMeal(mealID)
	if meal == nil {
		return nil
	}

	next := log.Clone()
	renamed, _ := next.FindMeal(mealID)
	if err := renamed.Rename(name); err != nil {
		return err
	}

	if next.Seeded {
		err = d.repo.SaveAll(ctx, next.Meals)
	} else {
		err = d.repo.Save(ctx, renamed)
	}
	if err != nil {
		return storeErr("rename meal", err)
	}

	next.Seeded = false
	d.logs[log.Date] = next
	return nil
}

// DeleteMeal removes a meal and its food entries. Deleting a meal that is
// already gone is not an error.
func (d *Diary) DeleteMeal(ctx context.Context, mealID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return err
	}

	meal, idx := log.FindMeal(mealID)
	if meal == nil {
		return nil
	}

	next := log.Clone()
	next.Meals = append(next.Meals[:idx], next.Meals[idx+1:]...)

	if log.Seeded {
		// the seed was never stored; keep the remaining defaults instead
		if err := d.repo.SaveAll(ctx, next.Meals); err != nil {
			return storeErr("save meals", err)
		}
	} else if err := d.repo.Delete(ctx, meal); err != nil && !errors.Is(err, domain.ErrMealNotFound) {
		return storeErr("delete meal", err)
	}

	next.Seeded = false
	d.logs[log.Date] = next
	return nil
}

// AddFoodToMeal logs weightGrams of a food in a meal. The macros come from
// the description (per 100 g) scaled to the weight. An unknown meal is a
// no-op and returns a nil entry.
func (d *Diary) AddFoodToMeal(ctx context.Context, mealID string, input FoodInput, weightGrams float64) (*domain.FoodEntry, error) {
	if err := domain.ValidateWeight(weightGrams); err != nil {
		return nil, err
	}

	per100g := nutrition.Parse(input.Description)
	if input.Per100g != nil {
		per100g = *input.Per100g
	} else if !nutrition.Parsed(per100g) {
		return nil, ErrUnparseableDescription
	}

	food, err := domain.NewFoodEntry(input.Name, weightGrams, nutrition.Scale(per100g, weightGrams))
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}
	if meal, _ := log.FindMeal(mealID); meal == nil {
		return nil, nil
	}

	if log.Seeded {
		if log, err = d.materialize(ctx, log); err != nil {
			return nil, err
		}
	}

	meal, idx := log.FindMeal(mealID)
	updated := meal.Clone()
	updated.AddFood(food)

	if err := d.repo.SaveWithFood(ctx, updated, food); err != nil {
		return nil, storeErr("add food", err)
	}

	log.Meals[idx] = updated
	return food.Clone(), nil
}

// UpdateFoodWeight rescales an entry's macros by newWeight/currentWeight.
// Unknown meal or food ids are a no-op and return a nil entry.
func (d *Diary) UpdateFoodWeight(ctx context.Context, mealID, foodID string, newWeightGrams float64) (*domain.FoodEntry, error) {
	if err := domain.ValidateWeight(newWeightGrams); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return nil, err
	}

	meal, idx := log.FindMeal(mealID)
	if meal == nil || meal.FindFood(foodID) == nil {
		return nil, nil
	}

	updated := meal.Clone()
	food := updated.FindFood(foodID)
	if err := food.Rescale(newWeightGrams); err != nil {
		return nil, err
	}
	updated.Recalculate()

	if err := d.repo.SaveWithFood(ctx, updated, food); err != nil {
		return nil, storeErr("update food", err)
	}

	log.Meals[idx] = updated
	return food.Clone(), nil
}

// RemoveFoodFromMeal deletes an entry; repeated calls are no-ops.
func (d *Diary) RemoveFoodFromMeal(ctx context.Context, mealID, foodID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	log, err := d.activeLog()
	if err != nil {
		return err
	}

	meal, idx := log.FindMeal(mealID)
	if meal == nil || meal.FindFood(foodID) == nil {
		return nil
	}

	updated := meal.Clone()
	updated.RemoveFood(foodID)

	if err := d.repo.RemoveFood(ctx, updated, foodID); err != nil && !errors.Is(err, domain.ErrFoodNotFound) {
		return storeErr("remove food", err)
	}

	log.Meals[idx] = updated
	return nil
}

// materialize stores the default seed so it can take food entries.
// Caller holds d.mu.
func (d *Diary) materialize(ctx context.Context, log *domain.DailyLog) (*domain.DailyLog, error) {
	next := log.Clone()
	if err := d.repo.SaveAll(ctx, next.Meals); err != nil {
		return nil, storeErr("save meals", err)
	}
	next.Seeded = false
	d.logs[log.Date] = next
	return next, nil
}

func (d *Diary) activeLog() (*domain.DailyLog, error) {
	if d.active == "" {
		return nil, ErrNoDateSelected
	}
	log, ok := d.logs[d.active]
	if !ok {
		return nil, ErrNoDateSelected
	}
	return log, nil
}
