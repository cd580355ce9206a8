package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"

	"github.com/bgreenlee/weatherbar/internal/weather"
)

const fetchEventName = "weather-fetch"

// FetchTracker reports every weather fetch to Application Insights.
type FetchTracker struct {
	client appinsights.TelemetryClient
}

// NewFetchTracker creates a tracker for the given instrumentation key.
func NewFetchTracker(instrumentationKey, role string) (*FetchTracker, error) {
	if instrumentationKey == "" {
		return nil, errors.New("application insights instrumentation key not set")
	}

	telemetryConfig := appinsights.NewTelemetryConfiguration(instrumentationKey)
	telemetryConfig.MaxBatchSize = 1024
	telemetryConfig.MaxBatchInterval = 5 * time.Second

	client := appinsights.NewTelemetryClientFromConfig(telemetryConfig)
	client.Context().Tags.Cloud().SetRole(role)
	return NewFetchTrackerWithClient(client), nil
}

// NewFetchTrackerWithClient wraps an existing telemetry client.
func NewFetchTrackerWithClient(client appinsights.TelemetryClient) *FetchTracker {
	return &FetchTracker{client: client}
}

// FetchCompleted implements weather.Observer.
func (t *FetchTracker) FetchCompleted(ev weather.FetchEvent) {
	e := appinsights.NewEventTelemetry(fetchEventName)
	e.Properties["fetch-id"] = ev.ID
	e.Properties["query"] = string(ev.Query)
	e.Properties["status"] = strconv.Itoa(ev.StatusCode)
	e.Properties["duration-ms"] = fmt.Sprintf("%d", ev.Duration.Milliseconds())
	e.Properties["outcome"] = outcome(ev.Err)
	if ev.Err != nil {
		e.Properties["error"] = ev.Err.Error()
	}
	t.client.Track(e)
}

// Close flushes queued telemetry, waiting at most timeout.
func (t *FetchTracker) Close(timeout time.Duration) {
	select {
	case <-t.client.Channel().Close(timeout):
	case <-time.After(timeout + time.Second):
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, weather.ErrEncoding):
		return "encoding"
	case errors.Is(err, weather.ErrTransport):
		return "transport"
	case errors.Is(err, weather.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, weather.ErrUnexpectedStatus):
		return "unexpected-status"
	case errors.Is(err, weather.ErrDecode):
		return "decode"
	default:
		return "error"
	}
}
