package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Addr               string
	Environment        string
	LogLevel           string
	StoreDriver        string
	DatabaseURL        string
	SQLitePath         string
	RunMigrations      bool
	JWTSecret          string
	MaxBodyBytes       int64
	RateLimitPerSecond float64
	RateLimitBurst     int
	BatchWorkers       int
	JobQueueSize       int
	TaxScheduleFile    string
	MetricsEnabled     bool
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first when present; real environment
// variables win over it.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn(".env load failed", "err", err)
	}
	return Config{
		Addr:               getEnv("APP_ADDR", ":8080"),
		Environment:        getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", StoreDriverMemory)),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		SQLitePath:         getEnv("SQLITE_PATH", "payrun.db"),
		RunMigrations:      getEnvBool("RUN_MIGRATIONS", true),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
		RateLimitPerSecond: getEnvFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		BatchWorkers:       getEnvInt("BATCH_WORKERS", 4),
		JobQueueSize:       getEnvInt("JOB_QUEUE_SIZE", 64),
		TaxScheduleFile:    getEnv("TAX_SCHEDULE_FILE", ""),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is postgres")
		}
	case StoreDriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is sqlite")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of postgres, sqlite, memory")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerSecond < 0 || c.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must not be negative")
	}
	if c.BatchWorkers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}
	if c.JobQueueSize < 1 {
		return fmt.Errorf("JOB_QUEUE_SIZE must be at least 1")
	}
	return nil
}

// SlogLevel maps LOG_LEVEL onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
