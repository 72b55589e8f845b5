package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

var (
	_ domain.WeightRepository  = (*SQLWeightRepository)(nil)
	_ domain.ProfileRepository = (*SQLProfileRepository)(nil)
)

type SQLWeightRepository struct {
	db *sqlx.DB
}

func NewSQLWeightRepository(db *sqlx.DB) *SQLWeightRepository {
	return &SQLWeightRepository{db: db}
}

const weightColumns = `id, user_id, weight_kg, recorded_at, created_at, updated_at`

func (r *SQLWeightRepository) Create(ctx context.Context, entry *domain.WeightEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := entry.ID
	if id == "" {
		id = uuid.NewString()
	}

	query := r.db.Rebind(`INSERT INTO weight_entries (` + weightColumns + `) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		id, entry.UserID, entry.WeightKg,
		entry.RecordedAt.UTC(), entry.CreatedAt.UTC(), entry.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrWeightEntryConflict
		}
		return fmt.Errorf("repository: create weight entry failed: %w", err)
	}

	entry.ID = id
	return nil
}

func (r *SQLWeightRepository) GetByID(ctx context.Context, id string) (*domain.WeightEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var entry domain.WeightEntry
	query := r.db.Rebind(`SELECT ` + weightColumns + ` FROM weight_entries WHERE id = ?`)
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrWeightEntryNotFound
		}
		return nil, fmt.Errorf("repository: get weight entry failed: %w", err)
	}
	return &entry, nil
}

func (r *SQLWeightRepository) Update(ctx context.Context, entry *domain.WeightEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`UPDATE weight_entries SET weight_kg = ?, recorded_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		entry.WeightKg, entry.RecordedAt.UTC(), entry.UpdatedAt.UTC(),
		entry.ID, entry.UserID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrWeightEntryConflict
		}
		return fmt.Errorf("repository: update weight entry failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWeightEntryNotFound
	}
	return nil
}

func (r *SQLWeightRepository) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM weight_entries WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("repository: delete weight entry failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrWeightEntryNotFound
	}
	return nil
}

func (r *SQLWeightRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.WeightEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	entries := []*domain.WeightEntry{}
	query := r.db.Rebind(`SELECT ` + weightColumns + ` FROM weight_entries WHERE user_id = ? ORDER BY recorded_at ASC`)
	if err := r.db.SelectContext(ctx, &entries, query, userID); err != nil {
		return nil, fmt.Errorf("repository: list weight entries failed: %w", err)
	}
	return entries, nil
}

type SQLProfileRepository struct {
	db *sqlx.DB
}

func NewSQLProfileRepository(db *sqlx.DB) *SQLProfileRepository {
	return &SQLProfileRepository{db: db}
}

// Get returns an empty profile for users who never stored one.
func (r *SQLProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var p domain.Profile
	query := r.db.Rebind(`SELECT user_id, start_weight, start_date, start_explicit, updated_at FROM profiles WHERE user_id = ?`)
	if err := r.db.GetContext(ctx, &p, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Profile{UserID: userID}, nil
		}
		return nil, fmt.Errorf("repository: get profile failed: %w", err)
	}
	return &p, nil
}

func (r *SQLProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var startDate interface{}
	if p.StartDate != nil {
		startDate = p.StartDate.UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO profiles (user_id, start_weight, start_date, start_explicit, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			start_weight = excluded.start_weight,
			start_date = excluded.start_date,
			start_explicit = excluded.start_explicit,
			updated_at = excluded.updated_at`)
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.StartWeight, startDate, p.StartExplicit, p.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("repository: upsert profile failed: %w", err)
	}
	return nil
}
