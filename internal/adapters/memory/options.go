package memory

import "github.com/okian/spinner/internal/domain/model"

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithAccount registers an extra account that may sign in.
func WithAccount(email, password string) Option {
	return func(c *Client) {
		if email != "" {
			c.addAccount(email, password)
		}
	}
}

// WithSeed stores wheels owned by the demo account at construction.
func WithSeed(wheels ...model.WheelConfiguration) Option {
	return func(c *Client) {
		c.seed = append(c.seed, wheels...)
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
