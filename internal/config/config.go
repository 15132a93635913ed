package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration, loaded from the
// environment.
type Config struct {
	DatabaseURL string

	JWTSecret      string
	AccessTokenTTL time.Duration

	ServerHost   string
	ServerPort   string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Environment  string

	RedisURL         string
	RateLimitEnabled bool
	LoginAttempts    int
	LoginWindow      time.Duration
	BlockDuration    time.Duration

	LogLevel  string
	LogFormat string

	CORSEnabled        bool
	CORSAllowedOrigins []string

	BcryptCost int
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is required")
)

// Load reads configuration from the environment, honoring a .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessTokenTTL: getEnvOrDefaultDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),

		ServerHost:   getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvOrDefaultDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvOrDefaultDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:  getEnvOrDefaultDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		Environment:  getEnvOrDefault("ENV", "development"),

		RedisURL:         getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled: getEnvOrDefaultBool("RATE_LIMIT_ENABLED", false),
		LoginAttempts:    getEnvOrDefaultInt("RATE_LIMIT_LOGIN_ATTEMPTS", 5),
		LoginWindow:      getEnvOrDefaultDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute),
		BlockDuration:    getEnvOrDefaultDuration("RATE_LIMIT_BLOCK_DURATION", 30*time.Minute),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),

		CORSEnabled:        getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowedOrigins: parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),

		BcryptCost: getEnvOrDefaultInt("BCRYPT_COST", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		// numeric values are seconds, anything else parses as a Go duration
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
