package domain

import (
	"context"
	"errors"
)

var (
	ErrMealNotFound = errors.New("meal not found")
	ErrFoodNotFound = errors.New("food entry not found")
	ErrMealConflict = errors.New("meal version conflict")
	// ErrRemoteFailure wraps any failed round trip to the record store or the
	// food search provider.
	ErrRemoteFailure = errors.New("remote service failure")
	ErrUnauthorized  = errors.New("unauthorized")
)

type MealRepository interface {
	// ListByDate returns the user's meals for a date with their food entries,
	// ordered by position.
	ListByDate(ctx context.Context, userID, date string) ([]*Meal, error)

	// ListByDateRange returns meals (without foods) whose date falls in
	// [from, to]. Totals carry the denormalized stored copy.
	ListByDateRange(ctx context.Context, userID, from, to string) ([]*Meal, error)

	// Save inserts or replaces a meal row.
	// Implementations must check Version (optimistic locking) and bump it on success.
	Save(ctx context.Context, meal *Meal) error

	// SaveAll saves several meals in one unit; used to persist a seeded day.
	SaveAll(ctx context.Context, meals []*Meal) error

	// SaveWithFood writes a food entry and its meal's totals in one unit.
	// An entry with an empty ID is inserted and receives a generated ID.
	SaveWithFood(ctx context.Context, meal *Meal, food *FoodEntry) error

	// RemoveFood deletes a food entry and writes the meal's new totals in one unit.
	RemoveFood(ctx context.Context, meal *Meal, foodID string) error

	// Delete removes the meal and cascades to its food entries in one unit.
	Delete(ctx context.Context, meal *Meal) error
}

type WeightRepository interface {
	Create(ctx context.Context, entry *WeightEntry) error
	GetByID(ctx context.Context, id string) (*WeightEntry, error)
	Update(ctx context.Context, entry *WeightEntry) error
	Delete(ctx context.Context, id, userID string) error

	// ListByUserID returns entries ordered by RecordedAt ascending.
	ListByUserID(ctx context.Context, userID string) ([]*WeightEntry, error)
}

type ProfileRepository interface {
	// Get returns an empty profile when none was stored yet.
	Get(ctx context.Context, userID string) (*Profile, error)
	Upsert(ctx context.Context, profile *Profile) error
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// FoodCandidate is one search result from the food database.
type FoodCandidate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Brand       string `json:"brand,omitempty"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description"`
}

type FoodSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]FoodCandidate, error)
}
