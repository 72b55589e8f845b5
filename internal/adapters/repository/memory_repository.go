package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

var (
	_ domain.MealRepository    = (*InMemoryMealRepository)(nil)
	_ domain.WeightRepository  = (*InMemoryWeightRepository)(nil)
	_ domain.ProfileRepository = (*InMemoryProfileRepository)(nil)
	_ domain.UserRepository    = (*InMemoryUserRepository)(nil)
)

// InMemoryMealRepository keeps meal rows and food rows apart, like the SQL
// store, and stores copies so callers never share state with it.
type InMemoryMealRepository struct {
	meals map[string]*domain.Meal
	foods map[string]*domain.FoodEntry

	mu sync.RWMutex
}

func NewInMemoryMealRepository() *InMemoryMealRepository {
	return &InMemoryMealRepository{
		meals: make(map[string]*domain.Meal),
		foods: make(map[string]*domain.FoodEntry),
	}
}

func (r *InMemoryMealRepository) ListByDate(ctx context.Context, userID, date string) ([]*domain.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var meals []*domain.Meal
	for _, m := range r.meals {
		if m.UserID != userID || m.Date != date {
			continue
		}
		c := m.Clone()
		c.Foods = r.foodsOf(m.ID)
		meals = append(meals, c)
	}

	sortMeals(meals)
	return meals, nil
}

func (r *InMemoryMealRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Meal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var meals []*domain.Meal
	for _, m := range r.meals {
		if m.UserID == userID && m.Date >= from && m.Date <= to {
			meals = append(meals, m.Clone())
		}
	}

	sort.SliceStable(meals, func(i, j int) bool {
		if meals[i].Date != meals[j].Date {
			return meals[i].Date < meals[j].Date
		}
		return meals[i].Position < meals[j].Position
	})
	return meals, nil
}

func (r *InMemoryMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(meal); err != nil {
		return err
	}
	r.putMeal(meal)
	return nil
}

func (r *InMemoryMealRepository) SaveAll(ctx context.Context, meals []*domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range meals {
		if err := r.checkVersion(m); err != nil {
			return err
		}
	}
	for _, m := range meals {
		r.putMeal(m)
	}
	return nil
}

func (r *InMemoryMealRepository) SaveWithFood(ctx context.Context, meal *domain.Meal, food *domain.FoodEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(meal); err != nil {
		return err
	}

	if food.ID == "" {
		food.ID = uuid.NewString()
	} else if _, ok := r.foods[food.ID]; !ok {
		return domain.ErrFoodNotFound
	}
	food.MealID = meal.ID

	r.foods[food.ID] = food.Clone()
	r.putMeal(meal)
	return nil
}

func (r *InMemoryMealRepository) RemoveFood(ctx context.Context, meal *domain.Meal, foodID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkVersion(meal); err != nil {
		return err
	}

	delete(r.foods, foodID)
	r.putMeal(meal)
	return nil
}

func (r *InMemoryMealRepository) Delete(ctx context.Context, meal *domain.Meal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.meals[meal.ID]
	if !ok || stored.UserID != meal.UserID {
		return domain.ErrMealNotFound
	}

	for id, f := range r.foods {
		if f.MealID == meal.ID {
			delete(r.foods, id)
		}
	}
	delete(r.meals, meal.ID)
	return nil
}

// FoodCount is the number of stored food rows, for cascade checks.
func (r *InMemoryMealRepository) FoodCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.foods)
}

func (r *InMemoryMealRepository) checkVersion(meal *domain.Meal) error {
	stored, ok := r.meals[meal.ID]
	if !ok {
		return nil
	}
	if stored.UserID != meal.UserID {
		return domain.ErrMealNotFound
	}
	if stored.Version != meal.Version {
		return domain.ErrMealConflict
	}
	return nil
}

func (r *InMemoryMealRepository) putMeal(meal *domain.Meal) {
	meal.Version++
	row := meal.Clone()
	row.Foods = nil
	r.meals[meal.ID] = row
}

func (r *InMemoryMealRepository) foodsOf(mealID string) []*domain.FoodEntry {
	foods := []*domain.FoodEntry{}
	for _, f := range r.foods {
		if f.MealID == mealID {
			foods = append(foods, f.Clone())
		}
	}
	sort.SliceStable(foods, func(i, j int) bool {
		return foods[i].CreatedAt.Before(foods[j].CreatedAt)
	})
	return foods
}

func sortMeals(meals []*domain.Meal) {
	sort.SliceStable(meals, func(i, j int) bool {
		if meals[i].Position != meals[j].Position {
			return meals[i].Position < meals[j].Position
		}
		return meals[i].CreatedAt.Before(meals[j].CreatedAt)
	})
}

type InMemoryWeightRepository struct {
	store map[string]*domain.WeightEntry

	mu sync.RWMutex
}

func NewInMemoryWeightRepository() *InMemoryWeightRepository {
	return &InMemoryWeightRepository{
		store: make(map[string]*domain.WeightEntry),
	}
}

func (r *InMemoryWeightRepository) Create(ctx context.Context, entry *domain.WeightEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(entry) {
		return domain.ErrWeightEntryConflict
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	c := *entry
	r.store[entry.ID] = &c
	return nil
}

func (r *InMemoryWeightRepository) GetByID(ctx context.Context, id string) (*domain.WeightEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.store[id]
	if !ok {
		return nil, domain.ErrWeightEntryNotFound
	}
	c := *e
	return &c, nil
}

func (r *InMemoryWeightRepository) Update(ctx context.Context, entry *domain.WeightEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[entry.ID]; !ok {
		return domain.ErrWeightEntryNotFound
	}
	if r.taken(entry) {
		return domain.ErrWeightEntryConflict
	}

	c := *entry
	r.store[entry.ID] = &c
	return nil
}

func (r *InMemoryWeightRepository) Delete(ctx context.Context, id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store[id]
	if !ok || e.UserID != userID {
		return domain.ErrWeightEntryNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryWeightRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.WeightEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := []*domain.WeightEntry{}
	for _, e := range r.store {
		if e.UserID == userID {
			c := *e
			entries = append(entries, &c)
		}
	}
	domain.SortWeightEntries(entries)
	return entries, nil
}

// taken reports whether another entry of the user has the same timestamp.
func (r *InMemoryWeightRepository) taken(entry *domain.WeightEntry) bool {
	for id, e := range r.store {
		if id != entry.ID && e.UserID == entry.UserID && e.RecordedAt.Equal(entry.RecordedAt) {
			return true
		}
	}
	return false
}

type InMemoryProfileRepository struct {
	store map[string]*domain.Profile

	mu sync.RWMutex
}

func NewInMemoryProfileRepository() *InMemoryProfileRepository {
	return &InMemoryProfileRepository{
		store: make(map[string]*domain.Profile),
	}
}

func (r *InMemoryProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[userID]
	if !ok {
		return &domain.Profile{UserID: userID}, nil
	}
	c := *p
	return &c, nil
}

func (r *InMemoryProfileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *profile
	r.store[profile.UserID] = &c
	return nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		store: make(map[string]*domain.User),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, user.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	c := *user
	r.store[user.ID] = &c
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	c := *u
	return &c, nil
}
