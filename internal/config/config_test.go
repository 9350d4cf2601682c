package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 24*time.Hour, cfg.SessionMaxAge)
	assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, "per-session", cfg.StoreMode)
	assert.True(t, cfg.GeneratedSecret)
	assert.Len(t, cfg.SessionSecret, 64)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SESSION_SECRET", "a-very-secret-session-key")
	t.Setenv("SESSION_IDLE_TTL", "5m")
	t.Setenv("STORE_MODE", "shared")
	t.Setenv("SEED_USERS", `[{"fullName":"Demo","email":"demo@binamite.io","password":"Demo123!"}]`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "a-very-secret-session-key", cfg.SessionSecret)
	assert.False(t, cfg.GeneratedSecret)
	assert.Equal(t, 5*time.Minute, cfg.SessionIdleTTL)
	assert.Equal(t, "shared", cfg.StoreMode)

	seed, err := cfg.Seed()
	require.NoError(t, err)
	require.Len(t, seed, 1)
	assert.Equal(t, "demo@binamite.io", seed[0].Email)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "PORT", "70000"},
		{"port not a number", "PORT", "eighty"},
		{"unknown log level", "LOG_LEVEL", "trace"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"short secret", "SESSION_SECRET", "short"},
		{"unknown store mode", "STORE_MODE", "global"},
		{"zero rate", "RATE_LIMIT_RPS", "0"},
		{"seed not json", "SEED_USERS", "demo@binamite.io"},
		{"seed without email", "SEED_USERS", `[{"fullName":"Nobody"}]`},
		{"seed repeats an email in another case", "SEED_USERS", `[{"email":"Demo@Binamite.io"},{"email":"demo@binamite.io"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSeed_Empty(t *testing.T) {
	cfg := &Config{}
	seed, err := cfg.Seed()
	require.NoError(t, err)
	assert.Nil(t, seed)
}

func TestSeed_LowerCasesEmails(t *testing.T) {
	cfg := &Config{SeedUsers: `[{"fullName":"Demo","email":"Demo@Binamite.IO"}]`}

	seed, err := cfg.Seed()
	require.NoError(t, err)
	require.Len(t, seed, 1)
	assert.Equal(t, "demo@binamite.io", seed[0].Email)
}
