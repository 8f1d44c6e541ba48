package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Nexo server.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	WhatsApp WhatsAppConfig
}

type ServerConfig struct {
	Port int
	Env  string
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	SessionTTL     time.Duration
	InvitationTTL  time.Duration
	RequestsPerMin int
}

type WhatsAppConfig struct {
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. Returns an error with a descriptive message if any required value is
// missing or invalid.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("NEXO_PORT", 8080),
			Env:  envString("NEXO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("NEXO_JWT_SECRET"),
			AccessTokenTTL: envDuration("NEXO_ACCESS_TOKEN_TTL", 15*time.Minute),
			SessionTTL:     envDuration("NEXO_SESSION_TTL", 24*time.Hour),
			InvitationTTL:  envDuration("NEXO_INVITATION_TTL", 7*24*time.Hour),
			RequestsPerMin: envInt("NEXO_REQUESTS_PER_MIN", 120),
		},
		WhatsApp: WhatsAppConfig{
			BaseURL: envString("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			Timeout: envDuration("WHATSAPP_TIMEOUT", 15*time.Second),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("NEXO_JWT_SECRET is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("NEXO_JWT_SECRET must be at least 32 characters, got %d", len(c.Auth.JWTSecret))
	}

	if c.Auth.AccessTokenTTL > c.Auth.SessionTTL {
		return fmt.Errorf("NEXO_ACCESS_TOKEN_TTL must not exceed NEXO_SESSION_TTL")
	}

	return nil
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
