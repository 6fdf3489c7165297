package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr                  string
	DatabaseURL           string
	JWTSecret             string
	Environment           string
	RunMigrations         bool
	MigrationsDir         string
	MaxUploadBytes        int64
	UploadBatchSize       int
	UploadBatchTimeout    time.Duration
	UploadBatchAttempts   int
	UploadBatchBackoff    time.Duration
	UploadErrorLimit      int
	UploadStaleAfter      time.Duration
	ReconcileInterval     time.Duration
	MetricsEnabled        bool
	PlaceholderDepartment string
	PlaceholderEmailHost  string
}

func Load() Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Addr:                  getEnv("APP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		Environment:           getEnv("APP_ENV", "development"),
		RunMigrations:         getEnvBool("RUN_MIGRATIONS", true),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		MaxUploadBytes:        int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		UploadBatchSize:       getEnvInt("UPLOAD_BATCH_SIZE", 500),
		UploadBatchTimeout:    getEnvDuration("UPLOAD_BATCH_TIMEOUT", 30*time.Second),
		UploadBatchAttempts:   getEnvInt("UPLOAD_BATCH_MAX_ATTEMPTS", 2),
		UploadBatchBackoff:    getEnvDuration("UPLOAD_BATCH_BACKOFF", 2*time.Second),
		UploadErrorLimit:      getEnvInt("UPLOAD_ERROR_LIMIT", 50),
		UploadStaleAfter:      getEnvDuration("UPLOAD_STALE_AFTER", time.Hour),
		ReconcileInterval:     getEnvDuration("UPLOAD_RECONCILE_INTERVAL", 10*time.Minute),
		MetricsEnabled:        getEnvBool("METRICS_ENABLED", true),
		PlaceholderDepartment: getEnv("PLACEHOLDER_DEPARTMENT", "Unassigned"),
		PlaceholderEmailHost:  getEnv("PLACEHOLDER_EMAIL_HOST", "placeholder.local"),
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

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" && strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.MaxUploadBytes < 1024 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least 1024")
	}
	if c.UploadBatchSize <= 0 {
		return fmt.Errorf("UPLOAD_BATCH_SIZE must be positive")
	}
	if c.UploadBatchAttempts <= 0 {
		return fmt.Errorf("UPLOAD_BATCH_MAX_ATTEMPTS must be positive")
	}
	if c.UploadErrorLimit <= 0 {
		return fmt.Errorf("UPLOAD_ERROR_LIMIT must be positive")
	}
	return nil
}
