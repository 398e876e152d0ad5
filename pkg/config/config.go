package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrNoDataset is returned when neither a dataset file nor a table is configured
var ErrNoDataset = errors.New("no dataset configured: set DATASET_PATH or DATABASE_URL with DATASET_TABLE")

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Dataset
	Dataset DatasetConfig

	// Database (선택: postgres 데이터 소스 전용)
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Report
	Report ReportConfig

	// API
	RateLimitRPS   int      // 0 = 제한 없음
	TrustedProxies []string // X-Forwarded-For를 신뢰할 프록시 IP/CIDR

	// Logging
	LogLevel  string
	LogFormat string
}

// DatasetConfig holds the dataset source configuration
type DatasetConfig struct {
	Path            string // .csv, .txt (pipe), .xlsx 또는 http(s) URL
	Sheet           string
	Table           string // postgres 테이블 (DATABASE_URL 필요)
	ProfilePath     string
	DownloadTimeout time.Duration
	DownloadRetries int // 0 = 재시도 없음
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
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

// ReportConfig holds report caching and refresh settings
type ReportConfig struct {
	CacheTTL time.Duration
	Schedule string // cron (초 포함 6필드)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8089"),
		Env:  getEnv("ENV", "development"),

		Dataset: DatasetConfig{
			Path:            getEnv("DATASET_PATH", ""),
			Sheet:           getEnv("DATASET_SHEET", ""),
			Table:           getEnv("DATASET_TABLE", ""),
			ProfilePath:     getEnv("PROFILE_PATH", ""),
			DownloadTimeout: getEnvAsDuration("DATASET_DOWNLOAD_TIMEOUT", "5m"),
			DownloadRetries: getEnvAsInt("DATASET_DOWNLOAD_RETRIES", 3),
		},

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Report: ReportConfig{
			CacheTTL: getEnvAsDuration("REPORT_CACHE_TTL", "1h"),
			Schedule: getEnv("REPORT_SCHEDULE", "0 0 3 * * *"), // 매일 03:00
		},

		RateLimitRPS:   getEnvAsInt("RATE_LIMIT_RPS", 20),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	// Validate environment
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}

	if c.Dataset.Table != "" && c.Database.URL == "" {
		return fmt.Errorf("DATASET_TABLE requires DATABASE_URL")
	}

	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must be <= DB_MAX_CONNS")
	}

	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}

	if c.Dataset.DownloadRetries < 0 {
		return fmt.Errorf("DATASET_DOWNLOAD_RETRIES must be >= 0")
	}

	return nil
}

// RequireDataset fails when no dataset source is configured
// api/scheduler 커맨드 시작 시 호출
func (c *Config) RequireDataset() error {
	if c.Dataset.Path == "" && c.Dataset.Table == "" {
		return ErrNoDataset
	}
	return nil
}

// UsePostgres reports whether the dataset is read from a postgres table
func (c *Config) UsePostgres() bool {
	return c.Dataset.Path == "" && c.Dataset.Table != ""
}

// IsProduction reports whether ENV is production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	// Try paths in order of priority
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
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
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsList splits a comma separated value, dropping empty items
func getEnvAsList(key string) []string {
	var items []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
