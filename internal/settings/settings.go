package settings

import (
	"errors"
	"log"
	"strings"
)

const (
	// KeyLocation holds the user's location query.
	KeyLocation = "location"

	// DefaultLocation is used when no location has been saved.
	DefaultLocation = "Seattle, WA"
)

// ErrEmptyKey is returned when a store is asked for an empty key.
var ErrEmptyKey = errors.New("settings key must not be empty")

// Store is a persisted key/value store for user preferences.
type Store interface {
	// Get returns the value for key and whether it was set.
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// Provider resolves preferences against a Store, substituting defaults for
// values that were never saved.
type Provider struct {
	store           Store
	defaultLocation string
	logger          *log.Logger
}

// NewProvider creates a Provider. An empty defaultLocation selects DefaultLocation.
func NewProvider(store Store, defaultLocation string, logger *log.Logger) *Provider {
	if strings.TrimSpace(defaultLocation) == "" {
		defaultLocation = DefaultLocation
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Provider{
		store:           store,
		defaultLocation: defaultLocation,
		logger:          logger,
	}
}

// Location returns the saved location, or the default when none is saved.
// A store error is logged and also yields the default.
func (p *Provider) Location() string {
	v, ok, err := p.store.Get(KeyLocation)
	if err != nil {
		p.logger.Printf("WARN: settings: reading %q failed, using default: %v", KeyLocation, err)
		return p.defaultLocation
	}
	if !ok || strings.TrimSpace(v) == "" {
		return p.defaultLocation
	}
	return v
}

// SetLocation saves the location query.
func (p *Provider) SetLocation(location string) error {
	return p.store.Set(KeyLocation, location)
}

// DefaultLocation returns the location used when none is saved.
func (p *Provider) DefaultLocation() string {
	return p.defaultLocation
}
