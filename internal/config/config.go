package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration, per spec §6 "Configuration":
// token lifetimes, the revocation store's hot-tier timeout, the signing
// secret, and database pool bounds.
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Base URL the server advertises to clients
	ServerURL string

	// Database connection pool bounds
	DBPoolMin int
	DBPoolMax int

	// Enable debug logging
	Debug bool

	// Casbin model file path (CASBIN_MODEL_PATH). internal/legacypolicy does
	// not read it: it builds its Casbin model from an in-code definition.
	CasbinModelPath string

	// HMAC signing secret for access/refresh tokens (internal/credentials)
	SigningSecret string

	// Token lifetimes
	AccessTokenTTL         time.Duration
	RefreshTokenTTL        time.Duration
	DefaultSessionDuration time.Duration

	// Revocation store tuning (internal/revocation)
	RevocationHotTimeout      time.Duration
	RevocationCleanupInterval time.Duration
}

// Load reads configuration from environment variables with fallback
// defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		ServerAddr:      getEnv("SERVER_ADDR", "localhost:8080"),
		ServerURL:       getEnv("SERVER_URL", ""),
		DBPoolMin:       getEnvInt("DB_POOL_MIN", 1),
		DBPoolMax:       getEnvInt("DB_POOL_MAX", 25),
		Debug:           getEnvBool("DEBUG", false),
		CasbinModelPath: getEnv("CASBIN_MODEL_PATH", "internal/legacypolicy/model.conf"),
		SigningSecret:   getEnv("SIGNING_SECRET", ""),

		AccessTokenTTL:         getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:        getEnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		DefaultSessionDuration: getEnvDuration("DEFAULT_SESSION_DURATION", time.Hour),

		RevocationHotTimeout:      getEnvDuration("REVOCATION_HOT_TIMEOUT", 50*time.Millisecond),
		RevocationCleanupInterval: getEnvDuration("REVOCATION_CLEANUP_INTERVAL", 10*time.Minute),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("SERVER_URL is required")
	}
	if cfg.SigningSecret == "" {
		return nil, fmt.Errorf("SIGNING_SECRET is required")
	}
	if cfg.DBPoolMin < 0 || cfg.DBPoolMax <= 0 || cfg.DBPoolMin > cfg.DBPoolMax {
		return nil, fmt.Errorf("invalid DB pool bounds: min=%d max=%d", cfg.DBPoolMin, cfg.DBPoolMax)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvDuration retrieves a Go duration-string environment variable (e.g.
// "15m", "50ms") or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
