package config

import (
	"os"
	"testing"
	"time"

	"github.com/bgreenlee/weatherbar/internal/settings"
	"github.com/bgreenlee/weatherbar/internal/weather"
)

var allKeys = []string{
	"OPENWEATHER_API_KEY",
	"OPENWEATHER_BASE_URL",
	"WEATHER_DEFAULT_LOCATION",
	"HTTP_TIMEOUT",
	"REFRESH_INTERVAL",
	"SETTINGS_DB",
	"MENU_ADDR",
	"ICON_DIR",
	"APPLICATIONINSIGHTS_INSTRUMENTATION_KEY",
}

// isolate clears the environment and moves into an empty directory so no
// .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenWeatherBaseURL != weather.DefaultBaseURL {
		t.Fatalf("unexpected base url %q", cfg.OpenWeatherBaseURL)
	}
	if cfg.DefaultLocation != settings.DefaultLocation {
		t.Fatalf("unexpected default location %q", cfg.DefaultLocation)
	}
	if cfg.HTTPTimeout != 30*time.Second || cfg.RefreshInterval != 15*time.Minute {
		t.Fatalf("unexpected durations: timeout=%v interval=%v", cfg.HTTPTimeout, cfg.RefreshInterval)
	}
	if cfg.MenuAddr != "127.0.0.1:8787" {
		t.Fatalf("unexpected menu addr %q", cfg.MenuAddr)
	}
	if cfg.SettingsPath == "" {
		t.Fatalf("expected a settings path")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("OPENWEATHER_API_KEY", "secret")
	t.Setenv("OPENWEATHER_BASE_URL", "http://localhost:9999/weather")
	t.Setenv("WEATHER_DEFAULT_LOCATION", "Boise, ID")
	t.Setenv("HTTP_TIMEOUT", "0")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("SETTINGS_DB", MemorySettings)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.OpenWeatherAPIKey != "secret" || cfg.OpenWeatherBaseURL != "http://localhost:9999/weather" {
		t.Fatalf("unexpected api settings: %+v", cfg)
	}
	if cfg.DefaultLocation != "Boise, ID" {
		t.Fatalf("unexpected default location %q", cfg.DefaultLocation)
	}
	if cfg.HTTPTimeout != 0 || cfg.RefreshInterval != 5*time.Minute {
		t.Fatalf("unexpected durations: timeout=%v interval=%v", cfg.HTTPTimeout, cfg.RefreshInterval)
	}
	if cfg.SettingsPath != MemorySettings {
		t.Fatalf("unexpected settings path %q", cfg.SettingsPath)
	}
}

func TestLoadFromDotEnv(t *testing.T) {
	isolate(t)
	if err := os.WriteFile(".env", []byte("WEATHER_DEFAULT_LOCATION=\"Nome, AK\"\n"), 0o600); err != nil {
		t.Fatalf("write .env failed: %v", err)
	}
	// godotenv does not override variables that are already set.
	os.Unsetenv("WEATHER_DEFAULT_LOCATION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultLocation != "Nome, AK" {
		t.Fatalf("expected location from .env, got %q", cfg.DefaultLocation)
	}
}

func TestLoadRejectsBadDurations(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"HTTP_TIMEOUT", "soon"},
		{"REFRESH_INTERVAL", "-1m"},
	} {
		t.Run(tc.key, func(t *testing.T) {
			isolate(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}
