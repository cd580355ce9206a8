package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/bgreenlee/weatherbar/internal/api/http"
	"github.com/bgreenlee/weatherbar/internal/config"
	"github.com/bgreenlee/weatherbar/internal/controller"
	"github.com/bgreenlee/weatherbar/internal/scheduler"
	"github.com/bgreenlee/weatherbar/internal/settings"
	"github.com/bgreenlee/weatherbar/internal/telemetry"
	"github.com/bgreenlee/weatherbar/internal/ui"
	"github.com/bgreenlee/weatherbar/internal/weather"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Persisted preferences.
	var store settings.Store
	if cfg.SettingsPath == config.MemorySettings {
		store = settings.NewMemoryStore(nil)
	} else {
		sqliteStore, err := settings.NewSQLite(cfg.SettingsPath)
		if err != nil {
			log.Fatalf("failed to open settings %s: %v", cfg.SettingsPath, err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
	}
	prefs := settings.NewProvider(store, cfg.DefaultLocation, nil)

	// Weather client; the timeout is the only bound on a request.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var clientOpts []weather.Option
	if cfg.AppInsightsInstrumentationKey != "" {
		tracker, err := telemetry.NewFetchTracker(cfg.AppInsightsInstrumentationKey, "weatherbar")
		if err != nil {
			log.Fatalf("failed to set up telemetry: %v", err)
		}
		defer tracker.Close(5 * time.Second)
		clientOpts = append(clientOpts, weather.WithObserver(tracker))
	}

	client, err := weather.NewClient(httpClient, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, clientOpts...)
	if err != nil {
		log.Fatalf("failed to create weather client: %v", err)
	}

	// The UI loop owns the panel; everything that touches it goes through the loop.
	loop := ui.NewLoop(64)
	panel, err := ui.NewPanel(os.Stdout, cfg.IconDir, nil)
	if err != nil {
		log.Fatalf("failed to create panel: %v", err)
	}

	ctrl := controller.New(client, prefs, panel, loop, controller.WithContext(ctx))

	sched := scheduler.New(cfg.RefreshInterval, ctrl)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Refresher:   ctrl,
		Preferences: prefs,
		Loop:        loop,
		Panel:       panel,
	}, true)

	go func() {
		log.Printf("INFO: menu api listening on %s", cfg.MenuAddr)
		if err := app.Listen(cfg.MenuAddr); err != nil {
			log.Printf("fiber server stopped: %v", err)
			stop()
		}
	}()

	// Launch refresh.
	ctrl.Refresh()

	// Run the UI loop on the main goroutine until a termination signal.
	loop.Run(ctx)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
