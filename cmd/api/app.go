package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/cache"
	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/foodsearch"
	adapterHTTP "github.com/comitanigiacomo/kanso-nutrition/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-nutrition/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-nutrition/internal/config"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/domain"
	"github.com/comitanigiacomo/kanso-nutrition/internal/core/services"
)

// app is the wired service: router plus the connections it must release.
type app struct {
	router   *gin.Engine
	db       *sqlx.DB
	redis    *redis.Client
	sessions *services.SessionRegistry
}

type stores struct {
	meals    domain.MealRepository
	weights  domain.WeightRepository
	profiles domain.ProfileRepository
	users    domain.UserRepository
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, startTime time.Time) (*app, error) {
	a := &app{}

	st, err := a.openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled() {
		rdb, err := cache.NewRedisClient(cache.Options{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Warn("redis unavailable, running without cache and rate limiting", zap.Error(err))
		} else {
			a.redis = rdb
			st.meals = repository.NewCachedMealRepository(st.meals, rdb, logger)
		}
	}

	// a nil interface, not a nil *FatSecretClient, disables search
	var searcher domain.FoodSearcher
	if cfg.SearchEnabled() {
		client, err := foodsearch.NewFatSecretClient(foodsearch.Config{
			ClientID:     cfg.FatSecretClientID,
			ClientSecret: cfg.FatSecretClientSecret,
			Timeout:      cfg.FatSecretTimeout,
		}, logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("food search: %w", err)
		}
		searcher = client
	} else {
		logger.Info("FATSECRET_CLIENT_ID not set, food search disabled")
	}

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL, st.users)
	a.sessions = services.NewSessionRegistry(st.meals)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		AuthHandler:     adapterHTTP.NewAuthHandler(services.NewAuthService(st.users, tokens, a.sessions)),
		DiaryHandler:    adapterHTTP.NewDiaryHandler(a.sessions),
		FoodHandler:     adapterHTTP.NewFoodHandler(services.NewFoodService(searcher)),
		ProgressHandler: adapterHTTP.NewProgressHandler(services.NewProgressService(st.weights, st.profiles)),
		StatsHandler:    adapterHTTP.NewStatsHandler(services.NewStatsService(st.meals)),
		TokenService:    tokens,
		DB:              a.db,
		Redis:           a.redis,
		Logger:          logger,
		RateLimit:       cfg.RateLimit,
		RateLimitWindow: cfg.RateLimitWindow,
		StartTime:       startTime,
	})

	return a, nil
}

func (a *app) openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*stores, error) {
	if cfg.DBDriver == "memory" {
		logger.Warn("using the in-memory store, data is lost on restart")
		return &stores{
			meals:    repository.NewInMemoryMealRepository(),
			weights:  repository.NewInMemoryWeightRepository(),
			profiles: repository.NewInMemoryProfileRepository(),
			users:    repository.NewInMemoryUserRepository(),
		}, nil
	}

	logger.Info("connecting to database", zap.String("driver", cfg.DBDriver))

	db, err := repository.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.db = db

	logger.Info("database connected", zap.Int("schema_version", repository.SchemaVersion))

	return &stores{
		meals:    repository.NewSQLMealRepository(db),
		weights:  repository.NewSQLWeightRepository(db),
		profiles: repository.NewSQLProfileRepository(db),
		users:    repository.NewSQLUserRepository(db),
	}, nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}
