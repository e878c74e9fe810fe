// Package config loads and validates application configuration from
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/voyantiq/itinerary/internal/domain"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Provider is the configuration of one enabled travel-data provider.
type Provider struct {
	Source  domain.Source
	APIKey  string
	BaseURL string // empty means the provider's public endpoint
}

// Draft configures the AI drafting backend. An empty Provider disables drafting.
type Draft struct {
	Provider string // "openai" or "gemini"
	APIKey   string
	Model    string
	BaseURL  string
}

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"]. CORS_ORIGINS overrides it with a
	// comma-separated list.
	CORSOrigins []string

	// StoreDriver selects the trip store: "memory" (default) or "postgres".
	StoreDriver string

	// DatabaseURL is the Postgres connection string. Required for the postgres driver.
	DatabaseURL string

	// ProviderTimeout bounds every provider call. Defaults to 5s.
	ProviderTimeout time.Duration

	// Providers are the enabled providers in merge order.
	Providers []Provider

	// StrictStatusTransitions enforces the trip status state machine.
	StrictStatusTransitions bool

	Draft Draft

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB; 0 disables the cap.
	MaxBodyBytes int64
}

// DefaultMaxBodyBytes is the request body cap when MAX_BODY_BYTES is unset.
const DefaultMaxBodyBytes int64 = 1 << 20

// Load reads a .env file from the working directory when one exists, then
// builds a Config from the environment. Variables already set in the
// environment win over the file. The returned error lists every missing or
// invalid variable.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: read .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var p problems

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		p.invalid("LOG_LEVEL", "must be one of debug, info, warn, error")
	}

	switch cfg.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			p.missing("DATABASE_URL")
		}
	default:
		p.invalid("STORE_DRIVER", "must be memory or postgres")
	}

	cfg.ProviderTimeout = parseDuration(&p, "PROVIDER_TIMEOUT", 5*time.Second)
	cfg.StrictStatusTransitions = parseBool(&p, "STRICT_STATUS_TRANSITIONS", false)
	cfg.MaxBodyBytes = parseInt(&p, "MAX_BODY_BYTES", DefaultMaxBodyBytes)
	cfg.Providers = loadProviders(&p)
	cfg.Draft = loadDraft(&p)

	if err := p.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadProviders reads PROVIDERS and the per-provider keys. With PROVIDERS
// unset, every provider that has an API key is enabled in the default order.
func loadProviders(p *problems) []Provider {
	read := func(src domain.Source) Provider {
		prefix := strings.ToUpper(string(src))
		return Provider{
			Source:  src,
			APIKey:  os.Getenv(prefix + "_API_KEY"),
			BaseURL: os.Getenv(prefix + "_BASE_URL"),
		}
	}

	list := splitCSV(os.Getenv("PROVIDERS"))
	if len(list) == 0 {
		var out []Provider
		for _, src := range domain.Sources {
			if pr := read(src); pr.APIKey != "" {
				out = append(out, pr)
			}
		}
		return out
	}

	var out []Provider
	seen := make(map[domain.Source]bool, len(list))
	for _, name := range list {
		src, err := domain.ParseSource(name)
		if err != nil {
			p.invalid("PROVIDERS", fmt.Sprintf("unknown provider %q", name))
			continue
		}
		if seen[src] {
			continue
		}
		seen[src] = true
		pr := read(src)
		if pr.APIKey == "" {
			p.missing(strings.ToUpper(string(src)) + "_API_KEY")
			continue
		}
		out = append(out, pr)
	}
	return out
}

// loadDraft reads DRAFT_PROVIDER and the matching backend's key and model.
func loadDraft(p *problems) Draft {
	name := strings.ToLower(strings.TrimSpace(os.Getenv("DRAFT_PROVIDER")))
	switch name {
	case "", "none":
		return Draft{}
	case "openai":
		d := Draft{
			Provider: name,
			APIKey:   os.Getenv("OPENAI_API_KEY"),
			Model:    os.Getenv("OPENAI_MODEL"),
			BaseURL:  os.Getenv("OPENAI_BASE_URL"),
		}
		if d.APIKey == "" {
			p.missing("OPENAI_API_KEY")
		}
		return d
	case "gemini":
		d := Draft{
			Provider: name,
			APIKey:   os.Getenv("GEMINI_API_KEY"),
			Model:    os.Getenv("GEMINI_MODEL"),
		}
		if d.APIKey == "" {
			p.missing("GEMINI_API_KEY")
		}
		return d
	}
	p.invalid("DRAFT_PROVIDER", "must be openai, gemini or none")
	return Draft{}
}

// problems accumulates configuration errors so Load can report all of them at once.
type problems struct {
	missingVars []string
	invalidVars []string
}

func (p *problems) missing(key string) { p.missingVars = append(p.missingVars, key) }

func (p *problems) invalid(key, why string) {
	p.invalidVars = append(p.invalidVars, key+" ("+why+")")
}

func (p *problems) err() error {
	var errs []error
	if len(p.missingVars) > 0 {
		errs = append(errs, fmt.Errorf("required environment variables not set: %s", strings.Join(p.missingVars, ", ")))
	}
	if len(p.invalidVars) > 0 {
		errs = append(errs, fmt.Errorf("invalid environment variables: %s", strings.Join(p.invalidVars, "; ")))
	}
	return errors.Join(errs...)
}

func parseDuration(p *problems, key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		p.invalid(key, "must be a positive duration such as 5s")
		return fallback
	}
	return d
}

func parseBool(p *problems, key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.invalid(key, "must be true or false")
		return fallback
	}
	return b
}

func parseInt(p *problems, key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		p.invalid(key, "must be a non-negative integer")
		return fallback
	}
	return n
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
