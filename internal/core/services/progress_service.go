package services

import (
	"context"
	"errors"
	"time"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

// ProgressService keeps the weight log and the derived start weight in step.
type ProgressService struct {
	weights  domain.WeightRepository
	profiles domain.ProfileRepository
}

func NewProgressService(weights domain.WeightRepository, profiles domain.ProfileRepository) *ProgressService {
	return &ProgressService{
		weights:  weights,
		profiles: profiles,
	}
}

type AddWeightInput struct {
	UserID     string
	WeightKg   float64
	RecordedAt time.Time
}

type UpdateWeightInput struct {
	ID         string
	UserID     string
	WeightKg   float64
	RecordedAt time.Time
}

func (s *ProgressService) AddWeight(ctx context.Context, input AddWeightInput) (*domain.WeightEntry, error) {
	recordedAt := input.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now().UTC()
	}

	entry, err := domain.NewWeightEntry(input.UserID, input.WeightKg, recordedAt)
	if err != nil {
		return nil, err
	}

	if err := s.weights.Create(ctx, entry); err != nil {
		return nil, storeErr("create weight entry", err)
	}

	if err := s.syncStart(ctx, input.UserID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ProgressService) UpdateWeight(ctx context.Context, input UpdateWeightInput) (*domain.WeightEntry, error) {
	if err := domain.ValidateBodyWeight(input.WeightKg); err != nil {
		return nil, err
	}

	entry, err := s.owned(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	entry.WeightKg = input.WeightKg
	if !input.RecordedAt.IsZero() {
		entry.RecordedAt = input.RecordedAt.UTC()
	}
	entry.UpdatedAt = time.Now().UTC()

	if err := s.weights.Update(ctx, entry); err != nil {
		return nil, storeErr("update weight entry", err)
	}

	if err := s.syncStart(ctx, input.UserID); err != nil {
		return nil, err
	}
	return entry, nil
}

// DeleteWeight is idempotent: deleting a missing entry succeeds.
func (s *ProgressService) DeleteWeight(ctx context.Context, id, userID string) error {
	if _, err := s.owned(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrWeightEntryNotFound) {
			return nil
		}
		return err
	}

	if err := s.weights.Delete(ctx, id, userID); err != nil && !errors.Is(err, domain.ErrWeightEntryNotFound) {
		return storeErr("delete weight entry", err)
	}

	return s.syncStart(ctx, userID)
}

func (s *ProgressService) ListWeights(ctx context.Context, userID string) ([]*domain.WeightEntry, error) {
	entries, err := s.weights.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("list weight entries", err)
	}
	domain.SortWeightEntries(entries)
	return entries, nil
}

// SetStartWeight pins an explicit baseline that later weigh-ins do not move.
func (s *ProgressService) SetStartWeight(ctx context.Context, userID string, kg float64, at time.Time) (*domain.Profile, error) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := profile.SetStart(kg, at); err != nil {
		return nil, err
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, storeErr("save profile", err)
	}
	return profile, nil
}

// ClearStartWeight returns to deriving the start from the earliest entry.
func (s *ProgressService) ClearStartWeight(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.weights.ListByUserID(ctx, userID)
	if err != nil {
		return nil, storeErr("list weight entries", err)
	}

	profile.StartExplicit = false
	profile.DeriveStart(entries)
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, storeErr("save profile", err)
	}
	return profile, nil
}

func (s *ProgressService) Summary(ctx context.Context, userID string) (*domain.ProgressSummary, error) {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries, err := s.ListWeights(ctx, userID)
	if err != nil {
		return nil, err
	}

	return domain.Summarize(profile, entries), nil
}

func (s *ProgressService) syncStart(ctx context.Context, userID string) error {
	profile, err := s.profile(ctx, userID)
	if err != nil {
		return err
	}
	if profile.StartExplicit {
		return nil
	}

	entries, err := s.weights.ListByUserID(ctx, userID)
	if err != nil {
		return storeErr("list weight entries", err)
	}

	if !profile.DeriveStart(entries) {
		return nil
	}
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return storeErr("save profile", err)
	}
	return nil
}

func (s *ProgressService) profile(ctx context.Context, userID string) (*domain.Profile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, storeErr("load profile", err)
	}
	return profile, nil
}

func (s *ProgressService) owned(ctx context.Context, id, userID string) (*domain.WeightEntry, error) {
	entry, err := s.weights.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr("load weight entry", err)
	}
	if entry.UserID != userID {
		return nil, domain.ErrWeightEntryNotFound
	}
	return entry, nil
}
