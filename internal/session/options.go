package session

import (
	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithHighContrastOverride forces the initial high contrast mode, ignoring
// both the persisted preference and the platform signal.
func WithHighContrastOverride(enabled bool) Option {
	return func(c *Controller) {
		c.override = &enabled
	}
}

// WithPreferenceStore sets where the high contrast choice is persisted.
func WithPreferenceStore(store kv.Store) Option {
	return func(c *Controller) {
		if store != nil {
			c.prefs = store
		}
	}
}

// WithContrastSignal sets the platform preference source.
func WithContrastSignal(signal ContrastSignal) Option {
	return func(c *Controller) {
		if signal != nil {
			c.signal = signal
		}
	}
}

// WithLogger sets a custom logger for the controller.
func WithLogger(l logger.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}
