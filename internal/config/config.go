package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded from environment variables.
type Config struct {
	// Server
	Port        int
	Environment string // development, production
	SentryDSN   string

	// Generation
	Workers     int     // concurrent renders
	MaxDuration float64 // seconds, 0 = unlimited
	CatalogPath string  // TOML modifier catalog, empty = built-in

	// Radio behavior
	RadioEnabled      bool
	StartingStyle     string
	TrackDuration     int           // seconds
	CrossfadeDuration time.Duration // crossfade length
	BufferAhead       int           // tracks to pre-render
	DwellMin          int           // min seconds per style
	DwellMax          int           // max seconds per style
	RadioTemperature  float64

	// Ollama (optional LLM prompts and track names)
	OllamaURL   string
	OllamaModel string

	// NATS render worker (optional)
	NATSURL     string
	NATSSubject string
	NATSQueue   string
}

// Load reads configuration from environment variables with sane defaults.
func Load() Config {
	return Config{
		Port:        envInt("HARMONIX_PORT", 8000),
		Environment: envStr("HARMONIX_ENV", "development"),
		SentryDSN:   envStr("SENTRY_DSN", ""),

		Workers:     envInt("HARMONIX_WORKERS", runtime.NumCPU()),
		MaxDuration: envFloat("HARMONIX_MAX_DURATION", 300),
		CatalogPath: envStr("HARMONIX_CATALOG", ""),

		RadioEnabled:      envBool("RADIO_ENABLED", true),
		StartingStyle:     envStr("RADIO_STYLE", "ambient"),
		TrackDuration:     envInt("RADIO_TRACK_DURATION", 30),
		CrossfadeDuration: envDuration("RADIO_CROSSFADE_DURATION", 4*time.Second),
		BufferAhead:       envInt("RADIO_BUFFER_AHEAD", 2),
		DwellMin:          envInt("RADIO_DWELL_MIN", 300),
		DwellMax:          envInt("RADIO_DWELL_MAX", 900),
		RadioTemperature:  envFloat("RADIO_TEMPERATURE", 1.0),

		OllamaURL:   envStr("OLLAMA_URL", ""),
		OllamaModel: envStr("OLLAMA_MODEL", ""),

		NATSURL:     envStr("NATS_URL", ""),
		NATSSubject: envStr("NATS_SUBJECT", "harmonix.render"),
		NATSQueue:   envStr("NATS_QUEUE", "renderers"),
	}
}

// Validate reports settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("HARMONIX_PORT %d out of range", c.Port))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("HARMONIX_WORKERS must be at least 1, got %d", c.Workers))
	}
	if c.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("HARMONIX_MAX_DURATION must not be negative, got %v", c.MaxDuration))
	}
	if c.RadioEnabled {
		if c.TrackDuration < 1 {
			errs = append(errs, fmt.Errorf("RADIO_TRACK_DURATION must be positive, got %d", c.TrackDuration))
		}
		if c.MaxDuration > 0 && float64(c.TrackDuration) > c.MaxDuration {
			errs = append(errs, fmt.Errorf("RADIO_TRACK_DURATION %d exceeds HARMONIX_MAX_DURATION %v", c.TrackDuration, c.MaxDuration))
		}
		if c.DwellMin > c.DwellMax {
			errs = append(errs, fmt.Errorf("RADIO_DWELL_MIN %d > RADIO_DWELL_MAX %d", c.DwellMin, c.DwellMax))
		}
		if c.RadioTemperature < 0 {
			errs = append(errs, fmt.Errorf("RADIO_TEMPERATURE must not be negative, got %v", c.RadioTemperature))
		}
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

// envDuration accepts Go durations ("2500ms") or bare seconds ("8").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(f * float64(time.Second))
	}
	return fallback
}
