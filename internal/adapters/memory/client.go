// Package memory is the in-memory demo client. Nothing survives the process.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
)

// Demo credentials accepted out of the box.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo"
)

type account struct {
	id       string
	password string
}

// Client implements client.Client over maps guarded by a mutex.
type Client struct {
	mu       sync.RWMutex
	accounts map[string]account
	session  model.AuthState
	// wheels per owner id, kept in insertion order.
	wheels map[string][]model.WheelConfiguration
	active string
	env    model.EnvironmentConfig
	seed   []model.WheelConfiguration
}

var _ client.Client = (*Client)(nil)

// New creates a demo client with the demo account registered.
func New(opts ...Option) *Client {
	c := &Client{
		accounts: make(map[string]account),
		wheels:   make(map[string][]model.WheelConfiguration),
		env:      model.DefaultEnvironment(),
	}
	c.addAccount(DemoEmail, DemoPassword)
	for _, opt := range opts {
		opt(c)
	}
	owner := c.accounts[DemoEmail].id
	for _, w := range c.seed {
		w = w.Clone()
		w.ID = uuid.NewString()
		w.OwnerID = owner
		c.wheels[owner] = append(c.wheels[owner], w)
	}
	c.seed = nil
	return c
}

func (c *Client) addAccount(email, password string) {
	c.accounts[email] = account{id: uuid.NewString(), password: password}
}

func (c *Client) GetAuthInfo(context.Context) model.AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) Authenticate(ctx context.Context, email, password string) model.AuthState {
	if ctx.Err() != nil {
		return model.Unauthenticated()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, ok := c.accounts[email]
	if !ok || acc.password != password {
		return model.Unauthenticated()
	}
	c.session = model.AuthState{
		IsAuthenticated: true,
		Email:           email,
		Token:           "demo-" + uuid.NewString(),
		UserID:          acc.id,
	}
	return c.session
}

func (c *Client) Logout(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = model.Unauthenticated()
}

// owner returns the signed-in user id; callers hold the lock.
func (c *Client) owner(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	if !c.session.IsAuthenticated {
		return "", client.ErrNotAuthenticated
	}
	return c.session.UserID, nil
}

func (c *Client) LoadConfigurations(ctx context.Context) ([]model.WheelConfiguration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, err := c.owner(ctx)
	if err != nil {
		return nil, err
	}
	out := model.CloneAll(c.wheels[owner])
	if out == nil {
		out = []model.WheelConfiguration{}
	}
	return out, nil
}

func (c *Client) LoadConfigurationByID(ctx context.Context, id string) (model.WheelConfiguration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	owner, err := c.owner(ctx)
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	i := indexOf(c.wheels[owner], id)
	if i < 0 {
		return model.WheelConfiguration{}, client.ErrNotFound
	}
	return c.wheels[owner][i].Clone(), nil
}

func (c *Client) SaveConfiguration(ctx context.Context, cfg model.WheelConfiguration) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, err := c.owner(ctx)
	if err != nil {
		return "", err
	}
	cfg = cfg.Clone()
	cfg.OwnerID = owner
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
		c.wheels[owner] = append(c.wheels[owner], cfg)
		return cfg.ID, nil
	}
	i := indexOf(c.wheels[owner], cfg.ID)
	if i < 0 {
		return "", client.ErrNotFound
	}
	c.wheels[owner][i] = cfg
	return cfg.ID, nil
}

func (c *Client) DeleteConfiguration(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	owner, err := c.owner(ctx)
	if err != nil {
		return err
	}
	list := c.wheels[owner]
	i := indexOf(list, id)
	if i < 0 {
		return client.ErrNotFound
	}
	c.wheels[owner] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (c *Client) SetActiveConfiguration(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = id
	return nil
}

func (c *Client) GetActiveConfigurationID(context.Context) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active, c.active != ""
}

func (c *Client) GetEnvironmentConfig(context.Context) model.EnvironmentConfig {
	return c.env
}

func indexOf(list []model.WheelConfiguration, id string) int {
	for i, w := range list {
		if w.ID == id {
			return i
		}
	}
	return -1
}
