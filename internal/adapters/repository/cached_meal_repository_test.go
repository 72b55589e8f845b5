package repository

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestCachedMealRepository_Integration(t *testing.T) {
	_ = godotenv.Load("../../../.env")

	rdb, err := cache.NewRedisClient(cache.Options{
		Host:     getEnv("REDIS_HOST", "localhost"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       2,
	})
	if err != nil {
		t.Skipf("Skipping Redis integration test: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	require.NoError(t, rdb.FlushDB(ctx).Err())

	next := NewInMemoryMealRepository()
	repo := NewCachedMealRepository(next, rdb, zap.NewNop())

	m, err := domain.NewMeal("user-1", "2024-03-01", "Lunch", 0)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, m))

	t.Run("Miss fills the cache", func(t *testing.T) {
		meals, err := repo.ListByDate(ctx, "user-1", "2024-03-01")
		require.NoError(t, err)
		require.Len(t, meals, 1)

		n, err := rdb.Exists(ctx, repo.cacheKey("user-1", "2024-03-01")).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})

	t.Run("Write invalidates the day", func(t *testing.T) {
		require.NoError(t, m.Rename("Brunch"))
		require.NoError(t, repo.Save(ctx, m))

		n, err := rdb.Exists(ctx, repo.cacheKey("user-1", "2024-03-01")).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), n)

		meals, err := repo.ListByDate(ctx, "user-1", "2024-03-01")
		require.NoError(t, err)
		require.Len(t, meals, 1)
		assert.Equal(t, "Brunch", meals[0].Name)
		assert.Equal(t, 2, meals[0].Version)
	})

	t.Run("Corrupted entry falls back to the store", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, repo.cacheKey("user-1", "2024-03-01"), "{not json", 0).Err())

		meals, err := repo.ListByDate(ctx, "user-1", "2024-03-01")
		require.NoError(t, err)
		assert.Len(t, meals, 1)
	})
}
