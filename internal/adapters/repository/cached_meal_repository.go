package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

var _ domain.MealRepository = (*CachedMealRepository)(nil)

const mealCacheTTL = 30 * time.Minute

// CachedMealRepository keeps each user's day in Redis. Any write to a day
// drops its key, so a cached day never carries a stale version.
type CachedMealRepository struct {
	next   domain.MealRepository
	cache  *redis.Client
	logger *zap.Logger
}

func NewCachedMealRepository(next domain.MealRepository, cache *redis.Client, logger *zap.Logger) *CachedMealRepository {
	return &CachedMealRepository{
		next:   next,
		cache:  cache,
		logger: logger,
	}
}

func (r *CachedMealRepository) cacheKey(userID, date string) string {
	return fmt.Sprintf("meals:%s:%s", userID, date)
}

func (r *CachedMealRepository) invalidate(ctx context.Context, meals ...*domain.Meal) {
	keys := make([]string, 0, len(meals))
	seen := make(map[string]bool, len(meals))
	for _, m := range meals {
		k := r.cacheKey(m.UserID, m.Date)
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}

	if err := r.cache.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *CachedMealRepository) ListByDate(ctx context.Context, userID, date string) ([]*domain.Meal, error) {
	key := r.cacheKey(userID, date)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var meals []*domain.Meal
		if err := json.Unmarshal([]byte(val), &meals); err == nil {
			return meals, nil
		}

		r.logger.Warn("corrupted cache entry, cleaning up", zap.String("key", key))
		r.cache.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	meals, err := r.next.ListByDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(meals); err == nil {
		if setErr := r.cache.Set(ctx, key, data, mealCacheTTL).Err(); setErr != nil {
			r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(setErr))
		}
	}

	return meals, nil
}

func (r *CachedMealRepository) ListByDateRange(ctx context.Context, userID, from, to string) ([]*domain.Meal, error) {
	return r.next.ListByDateRange(ctx, userID, from, to)
}

func (r *CachedMealRepository) Save(ctx context.Context, meal *domain.Meal) error {
	defer r.invalidate(ctx, meal)
	return r.next.Save(ctx, meal)
}

func (r *CachedMealRepository) SaveAll(ctx context.Context, meals []*domain.Meal) error {
	defer r.invalidate(ctx, meals...)
	return r.next.SaveAll(ctx, meals)
}

func (r *CachedMealRepository) SaveWithFood(ctx context.Context, meal *domain.Meal, food *domain.FoodEntry) error {
	defer r.invalidate(ctx, meal)
	return r.next.SaveWithFood(ctx, meal, food)
}

func (r *CachedMealRepository) RemoveFood(ctx context.Context, meal *domain.Meal, foodID string) error {
	defer r.invalidate(ctx, meal)
	return r.next.RemoveFood(ctx, meal, foodID)
}

func (r *CachedMealRepository) Delete(ctx context.Context, meal *domain.Meal) error {
	defer r.invalidate(ctx, meal)
	return r.next.Delete(ctx, meal)
}
