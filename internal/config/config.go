package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/bgreenlee/weatherbar/internal/settings"
	"github.com/bgreenlee/weatherbar/internal/weather"
)

// MemorySettings selects the in-memory settings store instead of sqlite.
const MemorySettings = ":memory:"

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string

	// DefaultLocation is used until the user saves a location.
	DefaultLocation string

	// HTTPTimeout bounds each weather request (0 = no timeout).
	HTTPTimeout time.Duration

	// RefreshInterval controls the periodic refresh (0 = disabled).
	RefreshInterval time.Duration

	// SettingsPath is the sqlite database holding user preferences,
	// or MemorySettings.
	SettingsPath string

	// MenuAddr is the listen address of the local menu API.
	MenuAddr string

	// IconDir holds <icon id>.png files for the panel (optional).
	IconDir string

	AppInsightsInstrumentationKey string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.OpenWeatherAPIKey == "" {
		log.Println("WARN: OPENWEATHER_API_KEY is not set; the weather api will answer 401")
	}
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", weather.DefaultBaseURL)
	cfg.DefaultLocation = getenvDefault("WEATHER_DEFAULT_LOCATION", settings.DefaultLocation)

	timeout, err := getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout

	interval, err := getenvDuration("REFRESH_INTERVAL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.RefreshInterval = interval

	cfg.SettingsPath = getenvDefault("SETTINGS_DB", defaultSettingsPath())
	cfg.MenuAddr = getenvDefault("MENU_ADDR", "127.0.0.1:8787")
	cfg.IconDir = os.Getenv("ICON_DIR")
	cfg.AppInsightsInstrumentationKey = os.Getenv("APPLICATIONINSIGHTS_INSTRUMENTATION_KEY")

	return cfg, nil
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "weatherbar-settings.db")
	}
	return filepath.Join(dir, "weatherbar", "settings.db")
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", key)
	}
	return d, nil
}
