package domain

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidWeight    = errors.New("invalid weight (must be a positive number of grams)")
	ErrMealNameEmpty    = errors.New("meal name cannot be empty")
	ErrMealNameTooLong  = errors.New("meal name is too long (max 100 chars)")
	ErrMealInvalidUser  = errors.New("invalid user id")
	ErrFoodNameTooLong  = errors.New("food name is too long (max 200 chars)")
	ErrFoodNameRequired = errors.New("food name is required")
)

const (
	DefaultMealName = "Meal"
	MaxMealNameLen  = 100
	MaxFoodNameLen  = 200
)

type FoodEntry struct {
	ID       string  `json:"id"`
	MealID   string  `json:"meal_id"`
	FoodName string  `json:"food_name"`
	Weight   float64 `json:"weight"`
	Macros

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Meal struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Date     string       `json:"date"`
	Name     string       `json:"name"`
	Position int          `json:"position"`
	Foods    []*FoodEntry `json:"foods"`
	Totals   Macros       `json:"totals"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateWeight rejects non-positive and non-finite serving weights.
func ValidateWeight(grams float64) error {
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		return ErrInvalidWeight
	}
	return nil
}

// NewFoodEntry stores macros at whole-unit precision.
func NewFoodEntry(name string, weight float64, macros Macros) (*FoodEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFoodNameRequired
	}
	if len(name) > MaxFoodNameLen {
		return nil, ErrFoodNameTooLong
	}
	if err := ValidateWeight(weight); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &FoodEntry{
		FoodName:  name,
		Weight:    weight,
		Macros:    macros.Rounded(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rescale sets a new serving weight and multiplies every macro by
// newWeight/oldWeight, rounding to whole units.
func (f *FoodEntry) Rescale(newWeight float64) error {
	if err := ValidateWeight(newWeight); err != nil {
		return err
	}
	if f.Weight <= 0 {
		return ErrInvalidWeight
	}
	if newWeight == f.Weight {
		return nil
	}

	f.Macros = f.Macros.Mul(newWeight / f.Weight).Rounded()
	f.Weight = newWeight
	f.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *FoodEntry) Clone() *FoodEntry {
	c := *f
	return &c
}

func normalizeMealName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrMealNameEmpty
	}
	if len(name) > MaxMealNameLen {
		return "", ErrMealNameTooLong
	}
	return name, nil
}

func NewMeal(userID, date, name string, position int) (*Meal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMealInvalidUser
	}
	date, err := NormalizeDate(date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = DefaultMealName
	}
	name, err = normalizeMealName(name)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Meal{
		ID:        uuid.NewString(),
		UserID:    userID,
		Date:      date,
		Name:      name,
		Position:  position,
		Foods:     []*FoodEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *Meal) Rename(name string) error {
	clean, err := normalizeMealName(name)
	if err != nil {
		return err
	}
	m.Name = clean
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// FindFood returns the entry with the given id, or nil.
func (m *Meal) FindFood(foodID string) *FoodEntry {
	for _, f := range m.Foods {
		if f.ID == foodID {
			return f
		}
	}
	return nil
}

func (m *Meal) AddFood(f *FoodEntry) {
	f.MealID = m.ID
	m.Foods = append(m.Foods, f)
	m.Recalculate()
	m.UpdatedAt = time.Now().UTC()
}

// RemoveFood reports whether an entry was removed.
func (m *Meal) RemoveFood(foodID string) bool {
	for i, f := range m.Foods {
		if f.ID == foodID {
			m.Foods = append(m.Foods[:i], m.Foods[i+1:]...)
			m.Recalculate()
			m.UpdatedAt = time.Now().UTC()
			return true
		}
	}
	return false
}

// Recalculate derives Totals from the current foods. Totals are never
// edited directly.
func (m *Meal) Recalculate() {
	var total Macros
	for _, f := range m.Foods {
		total = total.Add(f.Macros)
	}
	m.Totals = total
}

// Clone returns a deep copy so callers can mutate it before a write is
// confirmed.
func (m *Meal) Clone() *Meal {
	c := *m
	c.Foods = make([]*FoodEntry, 0, len(m.Foods))
	for _, f := range m.Foods {
		c.Foods = append(c.Foods, f.Clone())
	}
	return &c
}
