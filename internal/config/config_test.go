package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyantiq/itinerary/internal/config"
	"github.com/voyantiq/itinerary/internal/domain"
)

var allKeys = []string{
	"PORT", "LOG_LEVEL", "CORS_ORIGINS", "STORE_DRIVER", "DATABASE_URL",
	"PROVIDER_TIMEOUT", "PROVIDERS", "STRICT_STATUS_TRANSITIONS", "MAX_BODY_BYTES",
	"YELP_API_KEY", "YELP_BASE_URL", "TICKETMASTER_API_KEY", "TICKETMASTER_BASE_URL",
	"GROUPON_API_KEY", "GROUPON_BASE_URL", "BOOKING_API_KEY", "BOOKING_BASE_URL",
	"DRAFT_PROVIDER", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL",
}

// clearEnv blanks every variable config reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that every optional variable falls back to its default.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	assert.Equal(t, config.StoreMemory, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.ProviderTimeout)
	assert.False(t, cfg.StrictStatusTransitions)
	assert.Equal(t, config.DefaultMaxBodyBytes, cfg.MaxBodyBytes)
	assert.Empty(t, cfg.Providers)
	assert.Equal(t, config.Draft{}, cfg.Draft)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/trips")
	t.Setenv("PROVIDER_TIMEOUT", "750ms")
	t.Setenv("STRICT_STATUS_TRANSITIONS", "true")
	t.Setenv("MAX_BODY_BYTES", "2048")
	t.Setenv("DRAFT_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, config.StorePostgres, cfg.StoreDriver)
	assert.Equal(t, "postgres://user:pass@db:5432/trips", cfg.DatabaseURL)
	assert.Equal(t, 750*time.Millisecond, cfg.ProviderTimeout)
	assert.True(t, cfg.StrictStatusTransitions)
	assert.EqualValues(t, 2048, cfg.MaxBodyBytes)
	assert.Equal(t, config.Draft{Provider: "openai", APIKey: "sk-test", Model: "gpt-4o", BaseURL: "http://localhost:11434/v1"}, cfg.Draft)
}

func TestLoad_ProvidersDefaultToThoseWithKeys(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOOKING_API_KEY", "bk")
	t.Setenv("YELP_API_KEY", "yk")
	t.Setenv("YELP_BASE_URL", "http://yelp.test")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Equal(t, []config.Provider{
		{Source: domain.SourceYelp, APIKey: "yk", BaseURL: "http://yelp.test"},
		{Source: domain.SourceBooking, APIKey: "bk"},
	}, cfg.Providers)
}

func TestLoad_ExplicitProvidersKeepOrder(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDERS", "groupon, Ticketmaster,groupon")
	t.Setenv("GROUPON_API_KEY", "g")
	t.Setenv("TICKETMASTER_API_KEY", "t")
	t.Setenv("YELP_API_KEY", "ignored")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, domain.SourceGroupon, cfg.Providers[0].Source)
	assert.Equal(t, domain.SourceTicketmaster, cfg.Providers[1].Source)
}

// TestLoad_missingRequired verifies that the error names every missing variable.
func TestLoad_missingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("PROVIDERS", "yelp")
	t.Setenv("DRAFT_PROVIDER", "gemini")

	_, err := config.FromEnv()

	require.Error(t, err)
	assert.ErrorContains(t, err, "DATABASE_URL")
	assert.ErrorContains(t, err, "YELP_API_KEY")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestLoad_invalidValues(t *testing.T) {
	tests := map[string]string{
		"LOG_LEVEL":                 "loud",
		"STORE_DRIVER":              "sqlite",
		"PROVIDER_TIMEOUT":          "soon",
		"STRICT_STATUS_TRANSITIONS": "maybe",
		"MAX_BODY_BYTES":            "-1",
		"PROVIDERS":                 "expedia",
		"DRAFT_PROVIDER":            "claude",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)

			_, err := config.FromEnv()

			require.Error(t, err)
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_DraftNoneDisables(t *testing.T) {
	clearEnv(t)
	t.Setenv("DRAFT_PROVIDER", "none")

	cfg, err := config.FromEnv()

	require.NoError(t, err)
	assert.Empty(t, cfg.Draft.Provider)
}

// TestLoad_DotEnv checks that a .env file fills unset variables without
// overriding ones already in the environment.
func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=7000\nGEMINI_MODEL=gemini-pro\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("PORT", "7100")
	// godotenv only fills variables that are absent, not empty.
	require.NoError(t, os.Unsetenv("GEMINI_MODEL"))

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Port)
	assert.Equal(t, "gemini-pro", os.Getenv("GEMINI_MODEL"))
}

func TestLoad_NoDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	_, err := config.Load()

	require.NoError(t, err)
}
