package service

import (
	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/animation"
	"github.com/okian/spinner/internal/domain/selection"
	"github.com/okian/spinner/pkg/logger"
)

// Option applies a configuration option to the Host.
type Option func(*Host)

// WithLogger sets a custom logger for the host and everything it builds.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithClient skips variant selection and uses c as is. It is still
// instrumented.
func WithClient(c client.Client) Option {
	return func(h *Host) {
		if c != nil {
			h.client = c
		}
	}
}

// WithStore sets the host key-value storage instead of opening one from
// the configuration. The host does not close it.
func WithStore(store kv.Store) Option {
	return func(h *Host) {
		if store != nil {
			h.store = store
		}
	}
}

// WithClock sets the time source for wheels built by the host.
func WithClock(clock animation.Clock) Option {
	return func(h *Host) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithRNG sets the randomness source for wheels built by the host.
func WithRNG(rng selection.RNG) Option {
	return func(h *Host) {
		if rng != nil {
			h.rng = rng
		}
	}
}
