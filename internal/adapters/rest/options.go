package rest

import (
	"net/http"
	"time"

	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
)

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCache sets the local store for the session, cached lists and the
// active id.
func WithCache(store kv.Store) Option {
	return func(c *Client) {
		if store != nil {
			c.cache = store
		}
	}
}

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
