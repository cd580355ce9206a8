package telemetry

import (
	"fmt"
	"testing"
	"time"

	"github.com/microsoft/ApplicationInsights-Go/appinsights"

	"github.com/bgreenlee/weatherbar/internal/weather"
)

// fakeClient records tracked items; only Track is implemented.
type fakeClient struct {
	appinsights.TelemetryClient
	tracked []appinsights.Telemetry
}

func (f *fakeClient) Track(item appinsights.Telemetry) {
	f.tracked = append(f.tracked, item)
}

func TestFetchCompletedTracksEvent(t *testing.T) {
	fc := &fakeClient{}
	tracker := NewFetchTrackerWithClient(fc)

	tracker.FetchCompleted(weather.FetchEvent{
		ID:         "abc",
		Query:      "Seattle, WA",
		StatusCode: 500,
		Duration:   1500 * time.Millisecond,
		Err:        &weather.StatusError{Code: 500},
	})

	if len(fc.tracked) != 1 {
		t.Fatalf("expected one tracked item, got %d", len(fc.tracked))
	}
	e, ok := fc.tracked[0].(*appinsights.EventTelemetry)
	if !ok {
		t.Fatalf("expected event telemetry, got %T", fc.tracked[0])
	}
	if e.Name != fetchEventName {
		t.Fatalf("unexpected event name %q", e.Name)
	}
	want := map[string]string{
		"fetch-id":    "abc",
		"query":       "Seattle, WA",
		"status":      "500",
		"duration-ms": "1500",
		"outcome":     "unexpected-status",
	}
	for k, v := range want {
		if e.Properties[k] != v {
			t.Fatalf("property %s: expected %q, got %q", k, v, e.Properties[k])
		}
	}
	if e.Properties["error"] == "" {
		t.Fatalf("expected error property")
	}
}

func TestOutcome(t *testing.T) {
	cases := map[string]error{
		"success":           nil,
		"encoding":          weather.ErrEncoding,
		"transport":         fmt.Errorf("%w: dial tcp: refused", weather.ErrTransport),
		"unauthorized":      weather.ErrUnauthorized,
		"unexpected-status": &weather.StatusError{Code: 404},
		"decode":            fmt.Errorf("%w: missing name", weather.ErrDecode),
		"error":             fmt.Errorf("something else"),
	}
	for want, err := range cases {
		if got := outcome(err); got != want {
			t.Fatalf("outcome(%v): expected %q, got %q", err, want, got)
		}
	}
}

func TestNewFetchTrackerRequiresKey(t *testing.T) {
	if _, err := NewFetchTracker("", "weatherbar"); err == nil {
		t.Fatalf("expected error without instrumentation key")
	}
}
