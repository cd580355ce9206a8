package controller

import (
	"context"
	"log"
	"sync"

	"go.uber.org/atomic"

	"github.com/bgreenlee/weatherbar/internal/weather"
)

// Fetcher starts an asynchronous weather fetch. *weather.Client satisfies it.
type Fetcher interface {
	FetchAsync(ctx context.Context, query weather.LocationQuery) <-chan weather.Result
}

// LocationSource returns the location to fetch, with any default already
// applied. *settings.Provider satisfies it.
type LocationSource interface {
	Location() string
}

// Renderer displays a snapshot. It is only ever called through the Dispatcher.
type Renderer interface {
	Update(snapshot weather.Snapshot)
}

// FailureRenderer is implemented by renderers that can show a failed fetch.
type FailureRenderer interface {
	UpdateFailed(err error)
}

// Dispatcher runs functions on the UI-owned execution context.
type Dispatcher interface {
	Post(fn func())
}

// Controller ties the location setting, the weather client and the renderer
// together.
//
// Overlapping refreshes are not coordinated by default: each one renders its
// own result, so the panel shows whichever fetch completed last, which is not
// necessarily the newest request. WithSupersede changes that.
type Controller struct {
	ctx        context.Context
	fetcher    Fetcher
	locations  LocationSource
	renderer   Renderer
	dispatcher Dispatcher
	logger     *log.Logger

	supersede      bool
	reportFailures bool

	generation *atomic.Uint64
	inflight   sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithContext sets the context passed to fetches. It bounds the lifetime of
// in-flight requests, e.g. to the process.
func WithContext(ctx context.Context) Option {
	return func(c *Controller) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithLogger sets the controller's logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSupersede drops results of refreshes that were overtaken by a newer
// Refresh call, so only the newest request is rendered.
func WithSupersede() Option {
	return func(c *Controller) {
		c.supersede = true
	}
}

// WithFailureReporting forwards failed fetches to the renderer when it
// implements FailureRenderer. Without it failures are only logged.
func WithFailureReporting() Option {
	return func(c *Controller) {
		c.reportFailures = true
	}
}

// New creates a Controller.
func New(fetcher Fetcher, locations LocationSource, renderer Renderer, dispatcher Dispatcher, opts ...Option) *Controller {
	c := &Controller{
		ctx:        context.Background(),
		fetcher:    fetcher,
		locations:  locations,
		renderer:   renderer,
		dispatcher: dispatcher,
		logger:     log.Default(),
		generation: atomic.NewUint64(0),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh fetches weather for the configured location and renders the
// result. It returns immediately; completion is only observable through
// the renderer.
func (c *Controller) Refresh() {
	gen := c.generation.Inc()
	query := weather.LocationQuery(c.locations.Location())
	c.logger.Printf("INFO: refresh %d: fetching weather for %q", gen, query)

	results := c.fetcher.FetchAsync(c.ctx, query)

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		res, ok := <-results
		if !ok {
			return
		}
		c.deliver(gen, res)
	}()
}

// Wait blocks until every started refresh has handed its outcome to the
// dispatcher. It does not cancel anything.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) deliver(gen uint64, res weather.Result) {
	if c.stale(gen) {
		return
	}

	if res.Err != nil {
		fr, ok := c.renderer.(FailureRenderer)
		if !c.reportFailures || !ok {
			return
		}
		err := res.Err
		c.dispatcher.Post(func() {
			if c.stale(gen) {
				return
			}
			fr.UpdateFailed(err)
		})
		return
	}

	snap := res.Snapshot
	c.dispatcher.Post(func() {
		// Checked again on the UI context: a newer refresh may have started
		// while this function was queued.
		if c.stale(gen) {
			return
		}
		c.renderer.Update(snap)
	})
}

func (c *Controller) stale(gen uint64) bool {
	if !c.supersede {
		return false
	}
	if latest := c.generation.Load(); gen != latest {
		c.logger.Printf("INFO: refresh %d: dropping result superseded by refresh %d", gen, latest)
		return true
	}
	return false
}
