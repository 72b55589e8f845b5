package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const devJWTSecret = "kanso-dev-secret-change-me"

type Config struct {
	Environment string `validate:"oneof=development production test"`
	Port        string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=debug info warn error"`

	// DBDriver selects the store: pgx or postgres for Postgres, sqlite for a
	// local file, memory for a throwaway in-process store.
	DBDriver    string `validate:"oneof=pgx postgres sqlite memory"`
	DatabaseURL string `validate:"required_unless=DBDriver memory"`

	RedisHost     string
	RedisPort     string `validate:"required_with=RedisHost"`
	RedisPassword string
	RedisDB       int `validate:"min=0,max=15"`

	JWTSecret string        `validate:"required,min=16"`
	JWTIssuer string        `validate:"required"`
	TokenTTL  time.Duration `validate:"min=1m"`

	FatSecretClientID     string `validate:"required_with=FatSecretClientSecret"`
	FatSecretClientSecret string `validate:"required_with=FatSecretClientID"`
	FatSecretTimeout      time.Duration

	RateLimit       int `validate:"min=0"`
	RateLimitWindow time.Duration
	ShutdownTimeout time.Duration

	SessionMaxIdle       time.Duration `validate:"min=1m"`
	SessionSweepInterval time.Duration `validate:"min=1s"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: failed to read .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),

		DBDriver: getEnv("DB_DRIVER", "pgx"),

		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "kanso-nutrition"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 72*time.Hour),

		FatSecretClientID:     os.Getenv("FATSECRET_CLIENT_ID"),
		FatSecretClientSecret: os.Getenv("FATSECRET_CLIENT_SECRET"),
		FatSecretTimeout:      getEnvDuration("FATSECRET_TIMEOUT", 10*time.Second),

		RateLimit:       getEnvInt("RATE_LIMIT", 100),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 5*time.Second),

		SessionMaxIdle:       getEnvDuration("SESSION_MAX_IDLE", 12*time.Hour),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 10*time.Minute),
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", defaultDSN(cfg.DBDriver))

	if cfg.JWTSecret == "" && !cfg.IsProduction() {
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.IsProduction() && c.JWTSecret == devJWTSecret {
		return errors.New("config: JWT_SECRET must be set in production")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SearchEnabled reports whether FatSecret credentials were provided.
func (c *Config) SearchEnabled() bool {
	return c.FatSecretClientID != "" && c.FatSecretClientSecret != ""
}

func (c *Config) CacheEnabled() bool {
	return c.RedisHost != ""
}

// defaultDSN mirrors the DB_* variables of the docker-compose setup.
func defaultDSN(driver string) string {
	switch driver {
	case "pgx", "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			getEnv("DB_USER", "kanso_user"),
			os.Getenv("DB_PASSWORD"),
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_NAME", "kanso_db"),
		)
	case "sqlite":
		return "file:kanso.db"
	default:
		return ""
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
