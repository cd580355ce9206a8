package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the OpenWeatherMap current weather endpoint.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

	units        = "imperial"
	maxBodyBytes = 1 << 20
)

var errNoHTTPClient = errors.New("http client not configured")

// FetchEvent describes one completed fetch attempt.
type FetchEvent struct {
	ID         string
	Query      LocationQuery
	StatusCode int // 0 when no response was obtained
	Duration   time.Duration
	Err        error
}

// Observer is notified after every fetch attempt, successful or not.
type Observer interface {
	FetchCompleted(ev FetchEvent)
}

type noopObserver struct{}

func (noopObserver) FetchCompleted(FetchEvent) {}

// Client fetches current weather from the OpenWeatherMap API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
	observer   Observer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver registers an observer for fetch outcomes.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(httpClient *http.Client, baseURL, apiKey string, opts ...Option) (*Client, error) {
	if httpClient == nil {
		return nil, errNoHTTPClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" || u.RawQuery != "" {
		return nil, fmt.Errorf("invalid base url %q: want scheme://host/path without query", baseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     log.Default(),
		observer:   noopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RequestURL builds the request URL for query:
// <base>?APPID=<key>&units=imperial&q=<query>.
func (c *Client) RequestURL(query LocationQuery) (string, error) {
	q, err := escapeQuery(query)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?APPID=%s&units=%s&q=%s", c.baseURL, url.QueryEscape(c.apiKey), units, q), nil
}

// escapeQuery percent-encodes a location query. Spaces become %20 rather
// than '+'; QueryEscape already turns a literal '+' into %2B.
func escapeQuery(query LocationQuery) (string, error) {
	s := string(query)
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: empty query", ErrEncoding)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: query is not valid UTF-8", ErrEncoding)
	}
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20"), nil
}

// Fetch issues a single GET for query and decodes the response. Every
// failure is logged before it is returned; a non-nil error always comes
// with a zero Snapshot.
func (c *Client) Fetch(ctx context.Context, query LocationQuery) (Snapshot, error) {
	ev := FetchEvent{ID: uuid.NewString(), Query: query}
	start := time.Now()

	snap, err := c.fetch(ctx, query, &ev)

	ev.Duration = time.Since(start)
	ev.Err = err
	c.observer.FetchCompleted(ev)

	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (c *Client) fetch(ctx context.Context, query LocationQuery, ev *FetchEvent) (Snapshot, error) {
	u, err := c.RequestURL(query)
	if err != nil {
		c.logger.Printf("ERROR: [%s] weather api query %q: %v", ev.ID, query, err)
		return Snapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrEncoding, err)
		c.logger.Printf("ERROR: [%s] weather api query %q: %v", ev.ID, query, err)
		return Snapshot{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrTransport, redact(err))
		c.logger.Printf("ERROR: [%s] weather api error: %v", ev.ID, err)
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	ev.StatusCode = resp.StatusCode

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			err = fmt.Errorf("%w: reading body: %v", ErrDecode, err)
			c.logger.Printf("ERROR: [%s] weather api response decode failed: %v", ev.ID, err)
			return Snapshot{}, err
		}
		snap, err := DecodeSnapshot(body)
		if err != nil {
			c.logger.Printf("ERROR: [%s] weather api response decode failed: %v", ev.ID, err)
			return Snapshot{}, err
		}
		return snap, nil
	case http.StatusUnauthorized:
		c.logger.Printf("ERROR: [%s] weather api returned an 'unauthorized' response; check the API key", ev.ID)
		return Snapshot{}, ErrUnauthorized
	default:
		c.logger.Printf("ERROR: [%s] weather api returned response: %d %s", ev.ID, resp.StatusCode, http.StatusText(resp.StatusCode))
		return Snapshot{}, &StatusError{Code: resp.StatusCode}
	}
}

// FetchAsync starts a fetch and returns immediately. Exactly one Result is
// sent on the returned channel, which is then closed.
func (c *Client) FetchAsync(ctx context.Context, query LocationQuery) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		snap, err := c.Fetch(ctx, query)
		out <- Result{Snapshot: snap, Err: err}
	}()
	return out
}

// FetchWeather starts a fetch and returns immediately. success runs exactly
// once, on the fetching goroutine, if and only if a snapshot was decoded.
func (c *Client) FetchWeather(ctx context.Context, query LocationQuery, success func(Snapshot)) {
	go func() {
		snap, err := c.Fetch(ctx, query)
		if err != nil {
			return
		}
		success(snap)
	}()
}

// redact drops the request URL (which carries the API key) from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s: %w", ue.Op, ue.Err)
	}
	return err
}
