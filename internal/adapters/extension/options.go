package extension

import (
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithEnvironment overrides the defaults returned by GetEnvironmentConfig.
func WithEnvironment(env model.EnvironmentConfig) Option {
	return func(c *Client) {
		if env.Version == 0 {
			env.Version = model.EnvironmentConfigVersion
		}
		c.env = env
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}
