package config

import (
	"os"
	"runtime"
	"strings"
	"testing"
	"time"
)

var allVars = []string{
	"HARMONIX_PORT", "HARMONIX_ENV", "SENTRY_DSN", "HARMONIX_WORKERS",
	"HARMONIX_MAX_DURATION", "HARMONIX_CATALOG",
	"RADIO_ENABLED", "RADIO_STYLE", "RADIO_TRACK_DURATION",
	"RADIO_CROSSFADE_DURATION", "RADIO_BUFFER_AHEAD",
	"RADIO_DWELL_MIN", "RADIO_DWELL_MAX", "RADIO_TEMPERATURE",
	"OLLAMA_URL", "OLLAMA_MODEL", "NATS_URL", "NATS_SUBJECT", "NATS_QUEUE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.Environment != "development" || cfg.IsProduction() {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.SentryDSN != "" {
		t.Errorf("SentryDSN = %q, want empty default", cfg.SentryDSN)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers = %d, want %d", cfg.Workers, runtime.NumCPU())
	}
	if cfg.MaxDuration != 300 {
		t.Errorf("MaxDuration = %v, want 300", cfg.MaxDuration)
	}
	if cfg.CatalogPath != "" {
		t.Errorf("CatalogPath = %q, want empty", cfg.CatalogPath)
	}
	if !cfg.RadioEnabled {
		t.Error("RadioEnabled should default to true")
	}
	if cfg.StartingStyle != "ambient" {
		t.Errorf("StartingStyle = %q, want 'ambient'", cfg.StartingStyle)
	}
	if cfg.TrackDuration != 30 {
		t.Errorf("TrackDuration = %d, want 30", cfg.TrackDuration)
	}
	if cfg.CrossfadeDuration != 4*time.Second {
		t.Errorf("CrossfadeDuration = %v, want 4s", cfg.CrossfadeDuration)
	}
	if cfg.BufferAhead != 2 {
		t.Errorf("BufferAhead = %d, want 2", cfg.BufferAhead)
	}
	if cfg.DwellMin != 300 || cfg.DwellMax != 900 {
		t.Errorf("Dwell = %d-%d, want 300-900", cfg.DwellMin, cfg.DwellMax)
	}
	if cfg.RadioTemperature != 1.0 {
		t.Errorf("RadioTemperature = %v, want 1.0", cfg.RadioTemperature)
	}
	if cfg.OllamaURL != "" {
		t.Errorf("OllamaURL = %q, want empty", cfg.OllamaURL)
	}
	if cfg.NATSURL != "" || cfg.NATSSubject != "harmonix.render" || cfg.NATSQueue != "renderers" {
		t.Errorf("NATS = %q %q %q", cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueue)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HARMONIX_PORT", "3000")
	t.Setenv("HARMONIX_ENV", "production")
	t.Setenv("SENTRY_DSN", "https://key@sentry.example/1")
	t.Setenv("HARMONIX_WORKERS", "3")
	t.Setenv("HARMONIX_MAX_DURATION", "120.5")
	t.Setenv("HARMONIX_CATALOG", "/etc/harmonix/modifiers.toml")
	t.Setenv("RADIO_ENABLED", "false")
	t.Setenv("RADIO_STYLE", "jazz")
	t.Setenv("RADIO_TRACK_DURATION", "60")
	t.Setenv("RADIO_CROSSFADE_DURATION", "2500ms")
	t.Setenv("RADIO_BUFFER_AHEAD", "5")
	t.Setenv("RADIO_DWELL_MIN", "120")
	t.Setenv("RADIO_DWELL_MAX", "600")
	t.Setenv("RADIO_TEMPERATURE", "1.4")
	t.Setenv("OLLAMA_URL", "http://localhost:11434")
	t.Setenv("OLLAMA_MODEL", "qwen3")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("NATS_SUBJECT", "render.jobs")
	t.Setenv("NATS_QUEUE", "gpu")

	cfg := Load()

	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction should be true")
	}
	if cfg.SentryDSN != "https://key@sentry.example/1" {
		t.Errorf("SentryDSN = %q", cfg.SentryDSN)
	}
	if cfg.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Workers)
	}
	if cfg.MaxDuration != 120.5 {
		t.Errorf("MaxDuration = %v, want 120.5", cfg.MaxDuration)
	}
	if cfg.CatalogPath != "/etc/harmonix/modifiers.toml" {
		t.Errorf("CatalogPath = %q", cfg.CatalogPath)
	}
	if cfg.RadioEnabled {
		t.Error("RadioEnabled should be false")
	}
	if cfg.StartingStyle != "jazz" {
		t.Errorf("StartingStyle = %q, want 'jazz'", cfg.StartingStyle)
	}
	if cfg.TrackDuration != 60 {
		t.Errorf("TrackDuration = %d, want 60", cfg.TrackDuration)
	}
	if cfg.CrossfadeDuration != 2500*time.Millisecond {
		t.Errorf("CrossfadeDuration = %v, want 2.5s", cfg.CrossfadeDuration)
	}
	if cfg.BufferAhead != 5 {
		t.Errorf("BufferAhead = %d, want 5", cfg.BufferAhead)
	}
	if cfg.DwellMin != 120 || cfg.DwellMax != 600 {
		t.Errorf("Dwell = %d-%d, want 120-600", cfg.DwellMin, cfg.DwellMax)
	}
	if cfg.RadioTemperature != 1.4 {
		t.Errorf("RadioTemperature = %v, want 1.4", cfg.RadioTemperature)
	}
	if cfg.OllamaURL != "http://localhost:11434" || cfg.OllamaModel != "qwen3" {
		t.Errorf("Ollama = %q %q", cfg.OllamaURL, cfg.OllamaModel)
	}
	if cfg.NATSURL != "nats://localhost:4222" || cfg.NATSSubject != "render.jobs" || cfg.NATSQueue != "gpu" {
		t.Errorf("NATS = %q %q %q", cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueue)
	}
}

func TestCrossfadeBareSeconds(t *testing.T) {
	t.Setenv("RADIO_CROSSFADE_DURATION", "8")
	if got := Load().CrossfadeDuration; got != 8*time.Second {
		t.Errorf("CrossfadeDuration = %v, want 8s", got)
	}
}

func TestEnvIntInvalidFallsBack(t *testing.T) {
	t.Setenv("HARMONIX_PORT", "not-a-number")
	cfg := Load()
	if cfg.Port != 8000 {
		t.Errorf("Invalid int env should fallback to default: got %d, want 8000", cfg.Port)
	}
}

func TestEnvBoolInvalidFallsBack(t *testing.T) {
	t.Setenv("RADIO_ENABLED", "maybe")
	if !Load().RadioEnabled {
		t.Error("Invalid bool env should fallback to true")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := Load

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Port = 0 }, "HARMONIX_PORT"},
		{"workers", func(c *Config) { c.Workers = 0 }, "HARMONIX_WORKERS"},
		{"max duration", func(c *Config) { c.MaxDuration = -1 }, "HARMONIX_MAX_DURATION"},
		{"track too long", func(c *Config) { c.TrackDuration = 400 }, "exceeds"},
		{"dwell", func(c *Config) { c.DwellMin = 1000 }, "RADIO_DWELL_MIN"},
		{"temperature", func(c *Config) { c.RadioTemperature = -1 }, "RADIO_TEMPERATURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}

	cfg := base()
	cfg.RadioEnabled = false
	cfg.DwellMin = 1000
	if err := cfg.Validate(); err != nil {
		t.Errorf("radio settings should be ignored when radio is off: %v", err)
	}
}
