package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

var _ domain.MealRepository = (*SQLMealRepository)(nil)

// SQLMealRepository stores meals and their food entries in two tables.
// Meal writes are version checked: a row is only overwritten when its stored
// version is the one the caller loaded.
type SQLMealRepository struct {
	db *sqlx.DB
}

func NewSQLMealRepository(db *sqlx.DB) *SQLMealRepository {
	return &SQLMealRepository{db: db}
}

type mealRow struct {
	ID       string `db:"id"`
	UserID   string `db:"user_id"`
	Date     string `db:"log_date"`
	Name     string `db:"name"`
	Position int    `db:"position"`
	domain.Macros
	Version   int       `db:"version"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r mealRow) toDomain() *domain.Meal {
	return &domain.Meal{
		ID:        r.ID,
		UserID:    r.UserID,
		Date:      r.Date,
		Name:      r.Name,
		Position:  r.Position,
		Foods:     []*domain.FoodEntry{},
		Totals:    r.Macros,
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type foodRow struct {
	ID       string  `db:"id"`
	MealID   string  `db:"meal_id"`
	FoodName string  `db:"food_name"`
	Weight   float64 `db:"weight"`
	domain.Macros
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const mealColumns = `id, user_id, log_date, name, position, calories, carbs, fat, protein, version, created_at, updated_at`

const upsertMealQuery = `
	INSERT INTO meals (` + mealColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (id) DO UPDATE SET
		name = excluded.name,
		position = excluded.position,
		calories = excluded.calories,
		carbs = excluded.carbs,
		fat = excluded.fat,
		protein = excluded.protein,
		version = excluded.version,
		updated_at = excluded.updated_at
	WHERE meals.version = excluded.version - 1 AND meals.user_id = excluded.user_id`

func (r *SQLMealRepository) ListByDate(ctx context.Context, userID, date string) ([]*domain.Meal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []mealRow
	query := r.db.Rebind(`SELECT ` + mealColumns + ` FROM meals
		WHERE user_id = ? AND log_date = ?
		ORDER BY position ASC, created_at ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, date); err != nil {
		return nil, fmt.Errorf("repository: list meals failed: %w", err)
	}

	if len(rows) == 0 {
		return []*domain.Meal{}, nil
	}

	var foods []foodRow
	foodQuery := r.db.Rebind(`SELECT f.id, f.meal_id, f.food_name, f.weight, f.calories, f.carbs, f.fat, f.protein, f.created_at, f.updated_at
		FROM food_entries f JOIN meals m ON m.id = f.meal_id
		WHERE m.user_id = ? AND m.log_date = ?
		ORDER BY f.created_at ASC`)
	if err := r.db.SelectContext(ctx, &foods, foodQuery, userID, date); err != nil {
		return nil, fmt.Errorf("repository: list food entries failed: %w", err)
	}

	meals := make([]*domain.Meal, 0, len(rows))
	byID := make(map[string]*domain.Meal, len(rows))
	for _, row := range rows {
		m := row.toDomain()
		meals = append(meals, m)
		byID[m.ID] = m
	}

	for _, f := range foods {
		m, ok := byID[f.MealID]
		if !ok {
			continue
		}
		m.Foods = append(m.Foods, &domain.FoodEntry{
			ID:        f.ID,
			MealID:    f.MealID,
			FoodName:  f.FoodName,
			Weight:    f.Weight,
			Macros:    f.Macros,
			CreatedAt: f.CreatedAt,
			UpdatedAt: f.UpdatedAt,
		})
	}

	return meals, nil
}

func (r *SQLMealRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Meal, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var rows []mealRow
	query := r.db.Rebind(`SELECT ` + mealColumns + ` FROM meals
		WHERE user_id = ? AND log_date >= ? AND log_date <= ?
		ORDER BY log_date ASC, position ASC`)
	if err := r.db.SelectContext(ctx, &rows, query, userID, from, to); err != nil {
		return nil, fmt.Errorf("repository: list meals by range failed: %w", err)
	}

	meals := make([]*domain.Meal, 0, len(rows))
	for _, row := range rows {
		meals = append(meals, row.toDomain())
	}
	return meals, nil
}

func (r *SQLMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := upsertMeal(ctx, r.db, meal); err != nil {
		return err
	}
	meal.Version++
	return nil
}

func (r *SQLMealRepository) SaveAll(ctx context.Context, meals []*domain.Meal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, m := range meals {
			if err := upsertMeal(ctx, tx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, m := range meals {
		m.Version++
	}
	return nil
}

func (r *SQLMealRepository) SaveWithFood(ctx context.Context, meal *domain.Meal, food *domain.FoodEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := food.ID
	if id == "" {
		id = uuid.NewString()
	}

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := upsertMeal(ctx, tx, meal); err != nil {
			return err
		}

		if food.ID == "" {
			query := tx.Rebind(`INSERT INTO food_entries
				(id, meal_id, food_name, weight, calories, carbs, fat, protein, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
			_, err := tx.ExecContext(ctx, query,
				id, meal.ID, food.FoodName, food.Weight,
				food.Calories, food.Carbs, food.Fat, food.Protein,
				food.CreatedAt.UTC(), food.UpdatedAt.UTC(),
			)
			if err != nil {
				return fmt.Errorf("repository: insert food entry failed: %w", err)
			}
			return nil
		}

		query := tx.Rebind(`UPDATE food_entries SET
			food_name = ?, weight = ?, calories = ?, carbs = ?, fat = ?, protein = ?, updated_at = ?
			WHERE id = ? AND meal_id = ?`)
		res, err := tx.ExecContext(ctx, query,
			food.FoodName, food.Weight,
			food.Calories, food.Carbs, food.Fat, food.Protein,
			food.UpdatedAt.UTC(), id, meal.ID,
		)
		if err != nil {
			return fmt.Errorf("repository: update food entry failed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrFoodNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	food.ID = id
	food.MealID = meal.ID
	meal.Version++
	return nil
}

// RemoveFood deletes the entry together with the meal's new totals. A food
// that is already gone only updates the meal.
func (r *SQLMealRepository) RemoveFood(ctx context.Context, meal *domain.Meal, foodID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := upsertMeal(ctx, tx, meal); err != nil {
			return err
		}
		query := tx.Rebind(`DELETE FROM food_entries WHERE id = ? AND meal_id = ?`)
		if _, err := tx.ExecContext(ctx, query, foodID, meal.ID); err != nil {
			return fmt.Errorf("repository: delete food entry failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	meal.Version++
	return nil
}

// Delete removes the meal and its food entries in one transaction.
func (r *SQLMealRepository) Delete(ctx context.Context, meal *domain.Meal) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM food_entries WHERE meal_id = ?`), meal.ID); err != nil {
			return fmt.Errorf("repository: delete food entries failed: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM meals WHERE id = ? AND user_id = ?`), meal.ID, meal.UserID)
		if err != nil {
			return fmt.Errorf("repository: delete meal failed: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrMealNotFound
		}
		return nil
	})
}

// upsertMeal writes the meal row at version meal.Version+1 without touching
// meal itself; callers bump the version once the write is committed.
func upsertMeal(ctx context.Context, db sqlx.ExtContext, meal *domain.Meal) error {
	res, err := db.ExecContext(ctx, db.Rebind(upsertMealQuery),
		meal.ID, meal.UserID, meal.Date, meal.Name, meal.Position,
		meal.Totals.Calories, meal.Totals.Carbs, meal.Totals.Fat, meal.Totals.Protein,
		meal.Version+1, meal.CreatedAt.UTC(), meal.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("repository: save meal failed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMealConflict
	}
	return nil
}
