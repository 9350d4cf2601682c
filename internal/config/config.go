// Package config loads server settings from the environment.
//
// Every setting has a default that is fine for local development, so the
// server starts with no environment at all. SESSION_SECRET is the one value
// that should always be set outside development: without it a random secret
// is generated at startup and every browser session is reset on restart.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/sakif/binamite/internal/model"
	"github.com/sakif/binamite/internal/session"
	"github.com/sakif/binamite/internal/validation"
)

// Config holds runtime settings for the server.
type Config struct {
	Port      int    `env:"PORT"       envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// SessionSecret signs browser-session cookies. Minimum 16 characters.
	SessionSecret string `env:"SESSION_SECRET"`

	// SessionMaxAge is the lifetime of a browser-session cookie.
	SessionMaxAge time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h"`

	// SessionIdleTTL evicts a session store nobody has touched for this long.
	SessionIdleTTL time.Duration `env:"SESSION_IDLE_TTL" envDefault:"30m"`

	// SweepInterval is how often idle stores are looked for.
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`

	// StoreMode is "per-session" (one store per browser) or "shared".
	StoreMode string `env:"STORE_MODE" envDefault:"per-session"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"5"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`

	// SeedUsers is a JSON array of users every new store starts with, e.g.
	// [{"fullName":"Demo","email":"demo@binamite.io","password":"Demo123!"}]
	SeedUsers string `env:"SEED_USERS"`

	// GeneratedSecret is true when SessionSecret was not configured and
	// Load filled it with random bytes.
	GeneratedSecret bool
}

// Load builds a Config from the environment, fills in a random session
// secret if none is set, and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.SessionSecret == "" {
		secret, err := randomSecret()
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
		cfg.GeneratedSecret = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and formats.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	if len(c.SessionSecret) < 16 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 16 characters"))
	}
	if c.SessionMaxAge <= 0 {
		errs = append(errs, errors.New("SESSION_MAX_AGE must be positive"))
	}
	if c.SessionIdleTTL < 0 {
		errs = append(errs, errors.New("SESSION_IDLE_TTL must not be negative"))
	}
	if _, err := session.ParseMode(c.StoreMode); err != nil {
		errs = append(errs, fmt.Errorf("STORE_MODE: %w", err))
	}
	if c.RateLimitRPS <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS must be positive"))
	}
	if c.RateLimitBurst < 1 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1"))
	}
	if _, err := c.Seed(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Seed decodes SeedUsers. An empty string means no seed users.
// Emails are lower-cased the same way request emails are, so a seeded user
// can log in and two spellings of one address count as the same user.
func (c *Config) Seed() ([]model.User, error) {
	if c.SeedUsers == "" {
		return nil, nil
	}

	var users []model.User
	if err := json.Unmarshal([]byte(c.SeedUsers), &users); err != nil {
		return nil, fmt.Errorf("SEED_USERS must be a JSON array of users: %w", err)
	}
	seen := make(map[string]int, len(users))
	for i := range users {
		if users[i].Email == "" {
			return nil, fmt.Errorf("SEED_USERS[%d] has no email", i)
		}
		users[i].Email = validation.NormalizeEmail(users[i].Email)
		if j, dup := seen[users[i].Email]; dup {
			return nil, fmt.Errorf("SEED_USERS[%d] repeats the email of SEED_USERS[%d]", i, j)
		}
		seen[users[i].Email] = i
	}
	return users, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("config: generating session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
