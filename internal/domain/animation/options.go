package animation

import (
	"github.com/okian/spinner/internal/domain/selection"
	"github.com/okian/spinner/pkg/logger"
)

// Option configures a Controller.
type Option func(*Controller)

// WithEngine sets the selection engine used for each spin.
func WithEngine(e *selection.Engine) Option {
	return func(c *Controller) {
		if e != nil {
			c.engine = e
		}
	}
}

// WithClock injects the time source.
func WithClock(clock Clock) Option {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
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

// WithStartRotation sets the initial committed rotation in degrees.
func WithStartRotation(deg float64) Option {
	return func(c *Controller) {
		c.target = deg
		c.start = deg
	}
}
