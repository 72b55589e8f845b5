package domain

import (
	"errors"
	"math"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidBodyWeight   = errors.New("invalid body weight (must be a positive number of kg)")
	ErrInvalidRecordedAt   = errors.New("recorded_at is required")
	ErrWeightEntryNotFound = errors.New("weight entry not found")
	ErrWeightEntryConflict = errors.New("a weight entry already exists at this timestamp")
)

// MaxBodyWeightKg guards against unit mistakes (grams entered as kg).
const MaxBodyWeightKg = 1000

type WeightEntry struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	WeightKg   float64   `json:"weight_kg" db:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at" db:"recorded_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Profile carries the progress baseline. When StartExplicit is false the
// start weight mirrors the earliest weight entry.
type Profile struct {
	UserID        string     `json:"user_id" db:"user_id"`
	StartWeight   *float64   `json:"start_weight,omitempty" db:"start_weight"`
	StartDate     *time.Time `json:"start_date,omitempty" db:"start_date"`
	StartExplicit bool       `json:"start_explicit" db:"start_explicit"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

type ProgressSummary struct {
	StartWeight   *float64   `json:"start_weight,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	CurrentWeight *float64   `json:"current_weight,omitempty"`
	CurrentDate   *time.Time `json:"current_date,omitempty"`
	Change        *float64   `json:"change,omitempty"`
	Entries       int        `json:"entries"`
}

func ValidateBodyWeight(kg float64) error {
	if math.IsNaN(kg) || math.IsInf(kg, 0) || kg <= 0 || kg > MaxBodyWeightKg {
		return ErrInvalidBodyWeight
	}
	return nil
}

func NewWeightEntry(userID string, kg float64, recordedAt time.Time) (*WeightEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMealInvalidUser
	}
	if err := ValidateBodyWeight(kg); err != nil {
		return nil, err
	}
	if recordedAt.IsZero() {
		return nil, ErrInvalidRecordedAt
	}

	now := time.Now().UTC()
	return &WeightEntry{
		UserID:     userID,
		WeightKg:   kg,
		RecordedAt: recordedAt.UTC(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// SortWeightEntries orders entries chronologically, oldest first.
func SortWeightEntries(entries []*WeightEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
}

// EarliestEntry returns the chronologically first entry, or nil.
func EarliestEntry(entries []*WeightEntry) *WeightEntry {
	var first *WeightEntry
	for _, e := range entries {
		if first == nil || e.RecordedAt.Before(first.RecordedAt) {
			first = e
		}
	}
	return first
}

// DeriveStart recomputes a non-explicit start weight from entries and
// reports whether the profile changed. With no entries the start is cleared.
func (p *Profile) DeriveStart(entries []*WeightEntry) bool {
	if p.StartExplicit {
		return false
	}

	first := EarliestEntry(entries)
	if first == nil {
		if p.StartWeight == nil && p.StartDate == nil {
			return false
		}
		p.StartWeight = nil
		p.StartDate = nil
		p.UpdatedAt = time.Now().UTC()
		return true
	}

	if p.StartWeight != nil && p.StartDate != nil &&
		*p.StartWeight == first.WeightKg && p.StartDate.Equal(first.RecordedAt) {
		return false
	}

	kg := first.WeightKg
	at := first.RecordedAt
	p.StartWeight = &kg
	p.StartDate = &at
	p.UpdatedAt = time.Now().UTC()
	return true
}

// SetStart pins the start weight regardless of logged entries.
func (p *Profile) SetStart(kg float64, at time.Time) error {
	if err := ValidateBodyWeight(kg); err != nil {
		return err
	}
	if at.IsZero() {
		return ErrInvalidRecordedAt
	}
	at = at.UTC()
	p.StartWeight = &kg
	p.StartDate = &at
	p.StartExplicit = true
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Summarize builds the progress view from the profile and sorted entries.
func Summarize(p *Profile, entries []*WeightEntry) *ProgressSummary {
	s := &ProgressSummary{
		StartWeight: p.StartWeight,
		StartDate:   p.StartDate,
		Entries:     len(entries),
	}
	if len(entries) == 0 {
		return s
	}

	last := entries[len(entries)-1]
	kg := last.WeightKg
	at := last.RecordedAt
	s.CurrentWeight = &kg
	s.CurrentDate = &at

	if p.StartWeight != nil {
		change := math.Round((kg-*p.StartWeight)*100) / 100
		s.Change = &change
	}
	return s
}
