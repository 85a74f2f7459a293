// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. Generation calls are slow, so the write timeout is generous.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"180s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Authentication
	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"1h"`
	// Hex-encoded 32-byte key for sealing stored Shopify tokens.
	// Derived from JWT_SECRET when empty.
	SecretsKey string `env:"SECRETS_KEY" envDefault:""`
	// Comma-separated emails registered with the admin role.
	AdminEmails string `env:"ADMIN_EMAILS" envDefault:""`

	// LLM providers
	AnthropicAPIKey    string        `env:"ANTHROPIC_API_KEY" envDefault:""`
	AnthropicModel     string        `env:"ANTHROPIC_MODEL" envDefault:"claude-sonnet-4-20250514"`
	AnthropicMaxTokens int           `env:"ANTHROPIC_MAX_TOKENS" envDefault:"4000"`
	PerplexityAPIKey   string        `env:"PERPLEXITY_API_KEY" envDefault:""`
	PerplexityModel    string        `env:"PERPLEXITY_MODEL" envDefault:"llama-3-sonar-large-32k-online"`
	UsePerplexity      bool          `env:"USE_PERPLEXITY" envDefault:"false"`
	LLMTimeout         time.Duration `env:"LLM_TIMEOUT" envDefault:"150s"`

	// Content discovery
	DiscoveryBudget         time.Duration `env:"DISCOVERY_BUDGET" envDefault:"8s"`
	DiscoverySitemapTimeout time.Duration `env:"DISCOVERY_SITEMAP_TIMEOUT" envDefault:"3s"`
	DiscoveryPageTimeout    time.Duration `env:"DISCOVERY_PAGE_TIMEOUT" envDefault:"2s"`
	DiscoveryConcurrency    int           `env:"DISCOVERY_CONCURRENCY" envDefault:"5"`
	DiscoveryMaxFetch       int           `env:"DISCOVERY_MAX_FETCH" envDefault:"30"`
	DiscoveryHostRPS        float64       `env:"DISCOVERY_HOST_RPS" envDefault:"10"`
	DiscoveryCacheTTL       time.Duration `env:"DISCOVERY_CACHE_TTL" envDefault:"1h"`
	DiscoveryUserAgent      string        `env:"DISCOVERY_USER_AGENT" envDefault:"EnhanceMySEOBot/1.0 (+https://enhancemyseo.com/bot)"`
	// Permits crawling loopback and private networks. Development only.
	DiscoveryAllowPrivate bool `env:"DISCOVERY_ALLOW_PRIVATE" envDefault:"false"`

	// Rate limiting
	RateLimitAPIEnabled  bool `env:"RATE_LIMIT_API_ENABLED" envDefault:"true"`
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPS     int  `env:"RATE_LIMIT_AUTH_RPS" envDefault:"2"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// History worker
	HistoryWorkerEnabled bool          `env:"HISTORY_WORKER_ENABLED" envDefault:"true"`
	HistoryBatchSize     int           `env:"HISTORY_BATCH_SIZE" envDefault:"200"`
	HistoryClaimIdle     time.Duration `env:"HISTORY_CLAIM_IDLE" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	return splitList(c.CORSAllowedOrigins, false)
}

// GetAdminEmails returns the lower-cased admin email list.
func (c *Config) GetAdminEmails() []string {
	return splitList(c.AdminEmails, true)
}

// GetSecretsKey returns the 32-byte key used to seal stored credentials.
func (c *Config) GetSecretsKey() ([]byte, error) {
	if c.SecretsKey == "" {
		sum := sha256.Sum256([]byte("secrets:" + c.JWTSecret))
		return sum[:], nil
	}

	key, err := hex.DecodeString(c.SecretsKey)
	if err != nil {
		return nil, fmt.Errorf("decode SECRETS_KEY: %w", err)
	}
	if len(key) != 32 {
		return nil, errors.New("SECRETS_KEY must be 32 bytes hex-encoded")
	}
	return key, nil
}

func splitList(raw string, lower bool) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if lower {
			trimmed = strings.ToLower(trimmed)
		}
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment take precedence.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, errors.New("JWT_SECRET must be at least 16 characters")
	}
	if cfg.DiscoveryAllowPrivate && cfg.IsProduction() {
		return nil, errors.New("DISCOVERY_ALLOW_PRIVATE cannot be enabled in production")
	}
	return cfg, nil
}
