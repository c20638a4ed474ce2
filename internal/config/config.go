package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration

	// AllowedOrigins is the CORS allow-list for the dashboard frontends.
	AllowedOrigins []string

	DB      DatabaseConfig
	Redis   RedisConfig
	Quote   QuoteConfig
	History HistoryConfig
	Worker  WorkerConfig
	Admin   AdminConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// QuoteConfig controls quote-store persistence and outbound quote delivery.
type QuoteConfig struct {
	WebhookURL    string
	WebhookSecret string
	// PersistServices also persists committed service drafts, not only products.
	PersistServices bool
	StoreTTL        time.Duration
}

// HistoryConfig controls activity history reads.
type HistoryConfig struct {
	LatestLimit int
	LatestTTL   time.Duration
}

// AdminConfig seeds the first dashboard operator when no account with that
// email exists. An empty Email disables seeding.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	DispatchInterval time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine: production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.AllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	cfg.Quote = QuoteConfig{
		WebhookURL:      getEnv("QUOTE_WEBHOOK_URL", ""),
		WebhookSecret:   getEnv("QUOTE_WEBHOOK_SECRET", ""),
		PersistServices: getEnvBool("QUOTE_PERSIST_SERVICES", true),
	}

	cfg.History = HistoryConfig{
		LatestLimit: getEnvInt("HISTORY_LATEST_LIMIT", 5),
	}
	if cfg.History.LatestLimit <= 0 {
		return nil, errors.New("HISTORY_LATEST_LIMIT must be a positive integer")
	}

	cfg.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}
	if cfg.Admin.Email != "" && len(cfg.Admin.Password) < 8 {
		return nil, errors.New("ADMIN_PASSWORD must be at least 8 characters when ADMIN_EMAIL is set")
	}

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Quote.StoreTTL, err = parseDurationEnv("QUOTE_STORE_TTL", "720h"); err != nil {
		return nil, fmt.Errorf("invalid QUOTE_STORE_TTL: %w", err)
	}
	if cfg.History.LatestTTL, err = parseDurationEnv("HISTORY_LATEST_TTL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid HISTORY_LATEST_TTL: %w", err)
	}
	if cfg.Worker.DispatchInterval, err = parseDurationEnv("DISPATCH_INTERVAL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid DISPATCH_INTERVAL: %w", err)
	}
	if cfg.Worker.DispatchInterval == 0 {
		return nil, errors.New("DISPATCH_INTERVAL must be greater than zero")
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key, def string) []string {
	var out []string
	for _, part := range strings.Split(getEnv(key, def), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
