package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/cache"
)

// setupTestRedis uses DB 1 so flushing never touches the day cache.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	_ = godotenv.Load("../../../../../.env")

	rdb, err := cache.NewRedisClient(cache.Options{
		Host:     envOr("REDIS_HOST", "localhost"),
		Port:     envOr("REDIS_PORT", "6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       1,
	})
	if err != nil {
		t.Skipf("Skipping integration test (Redis down): %v", err)
	}

	rdb.FlushDB(context.Background())
	return rdb
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func hit(router *gin.Engine, path, ip string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	if ip != "" {
		req.Header.Set("X-Forwarded-For", ip)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiterMiddleware_Integration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rdb := setupTestRedis(t)
	defer rdb.Close()

	ctx := context.Background()

	t.Run("Allow Requests under limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		limit := 5
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, 1*time.Minute, zap.NewNop()))
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		for i := 1; i <= limit; i++ {
			w := hit(router, "/test", "192.168.1.100")

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, fmt.Sprintf("%d", limit), w.Header().Get("X-RateLimit-Limit"))
			assert.Equal(t, fmt.Sprintf("%d", limit-i), w.Header().Get("X-RateLimit-Remaining"))
		}
	})

	t.Run("Window starts with the first request", func(t *testing.T) {
		rdb.FlushDB(ctx)

		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, 10, 30*time.Second, zap.NewNop()))
		router.GET("/ttl", func(c *gin.Context) { c.Status(http.StatusOK) })

		hit(router, "/ttl", "192.168.1.110")

		ttl, err := rdb.TTL(ctx, "rate_limit:192.168.1.110").Result()
		assert.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, 30*time.Second)
	})

	t.Run("Block Requests over limit", func(t *testing.T) {
		rdb.FlushDB(ctx)

		limit := 2
		router := gin.New()
		router.Use(RateLimiterMiddleware(rdb, limit, 1*time.Minute, zap.NewNop()))
		router.GET("/test-block", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		ip := "192.168.1.101"

		assert.Equal(t, http.StatusOK, hit(router, "/test-block", ip).Code, "Request 1 should pass")
		assert.Equal(t, http.StatusOK, hit(router, "/test-block", ip).Code, "Request 2 should pass")

		w3 := hit(router, "/test-block", ip)

		assert.Equal(t, http.StatusTooManyRequests, w3.Code, "Request 3 should be blocked")
		assert.Contains(t, w3.Body.String(), "too many requests")
		assert.Contains(t, w3.Body.String(), "retry_in_s")
		assert.Equal(t, "0", w3.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, w3.Header().Get("X-RateLimit-Reset"))

		assert.Equal(t, http.StatusOK, hit(router, "/test-block", "192.168.1.102").Code, "other clients keep their own window")
	})

	t.Run("Fail Open (Redis Down)", func(t *testing.T) {
		badRdb := redis.NewClient(&redis.Options{
			Addr: "localhost:9999",
		})

		router := gin.New()
		router.Use(RateLimiterMiddleware(badRdb, 5, 1*time.Minute, zap.NewNop()))
		router.GET("/test-fail-open", func(c *gin.Context) {
			c.String(http.StatusOK, "passed")
		})

		w := hit(router, "/test-fail-open", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "passed", w.Body.String())
	})
}
