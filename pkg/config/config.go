package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (비어 있으면 메모리 저장소로 동작)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Scoring engine
	Scoring ScoringConfig

	// Signal log
	SignalLog SignalLogConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool

	RecommendationTTL time.Duration
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// ScoringConfig holds scoring engine settings
type ScoringConfig struct {
	ConfigPath       string // YAML; 비어 있으면 내장 기본값
	BatchConcurrency int
}

// SignalLogConfig holds signal log settings
type SignalLogConfig struct {
	DedupWindowDays  int
	RetentionDays    int // 0 = 영구 보관
	OutcomeBatchSize int
}

// SchedulerConfig holds cron expressions for background jobs
type SchedulerConfig struct {
	OutcomeSchedule   string
	RetentionSchedule string
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:              getEnv("REDIS_HOST", "localhost"),
			Port:              getEnv("REDIS_PORT", "6379"),
			Password:          getEnv("REDIS_PASSWORD", ""),
			DB:                getEnvAsInt("REDIS_DB", 0),
			Enabled:           getEnvAsBool("REDIS_ENABLED", false),
			RecommendationTTL: getEnvAsDuration("RECOMMENDATION_CACHE_TTL", "15m"),
		},

		Scoring: ScoringConfig{
			ConfigPath:       getEnv("SCORING_CONFIG", ""),
			BatchConcurrency: getEnvAsInt("SCORING_BATCH_CONCURRENCY", 8),
		},

		SignalLog: SignalLogConfig{
			DedupWindowDays:  getEnvAsInt("SIGNAL_DEDUP_WINDOW_DAYS", 7),
			RetentionDays:    getEnvAsInt("SIGNAL_RETENTION_DAYS", 365),
			OutcomeBatchSize: getEnvAsInt("SIGNAL_OUTCOME_BATCH_SIZE", 500),
		},

		Scheduler: SchedulerConfig{
			OutcomeSchedule:   getEnv("OUTCOME_SCHEDULE", "0 30 18 * * 1-5"),
			RetentionSchedule: getEnv("RETENTION_SCHEDULE", "0 0 3 * * 0"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// HasDatabase reports whether a PostgreSQL URL is configured
func (c *Config) HasDatabase() bool {
	return c.Database.URL != ""
}

// validate checks if configuration values are usable
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.SignalLog.DedupWindowDays <= 0 {
		return fmt.Errorf("SIGNAL_DEDUP_WINDOW_DAYS must be positive")
	}
	if c.SignalLog.RetentionDays < 0 {
		return fmt.Errorf("SIGNAL_RETENTION_DAYS must not be negative")
	}
	if c.Scoring.BatchConcurrency <= 0 {
		return fmt.Errorf("SCORING_BATCH_CONCURRENCY must be positive")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	duration, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
