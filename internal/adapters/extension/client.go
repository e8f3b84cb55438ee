// Package extension is the browser-extension style client: every piece of
// state lives as a JSON blob under a fixed key in a key-value store.
package extension

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
)

// Storage keys.
const (
	KeyAuth     = "spinnerAuth"
	KeySettings = "spinnerSettings"
	KeyActiveID = "activeSpinnerId"
)

// Client implements client.Client on top of a kv.Store.
type Client struct {
	store  kv.Store
	auth   Authenticator
	env    model.EnvironmentConfig
	logger logger.Logger

	// writeMu serialises read-modify-write of the settings blob.
	writeMu sync.Mutex
}

var _ client.Client = (*Client)(nil)

// New creates an extension client.
func New(store kv.Store, auth Authenticator, opts ...Option) *Client {
	c := &Client{
		store:  store,
		auth:   auth,
		env:    model.DefaultEnvironment(),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetAuthInfo(ctx context.Context) model.AuthState {
	raw, ok, err := c.store.Get(ctx, KeyAuth)
	if err != nil || !ok {
		return model.Unauthenticated()
	}
	var state model.AuthState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		c.logger.Warn(ctx, "discarding unreadable auth blob", logger.Error(err))
		return model.Unauthenticated()
	}
	return state
}

func (c *Client) Authenticate(ctx context.Context, email, password string) model.AuthState {
	if c.auth == nil {
		return model.Unauthenticated()
	}
	state, err := c.auth.Login(ctx, email, password)
	if err != nil {
		c.logger.Warn(ctx, "login failed", logger.String("email", email), logger.Error(err))
		return model.Unauthenticated()
	}
	if !state.IsAuthenticated {
		return model.Unauthenticated()
	}
	raw, err := json.Marshal(state)
	if err == nil {
		err = c.store.Set(ctx, KeyAuth, string(raw))
	}
	if err != nil {
		c.logger.Warn(ctx, "persisting auth blob failed", logger.Error(err))
		return model.Unauthenticated()
	}
	return state
}

func (c *Client) Logout(ctx context.Context) {
	if err := c.store.Delete(ctx, KeyAuth); err != nil {
		c.logger.Warn(ctx, "clearing auth blob failed", logger.Error(err))
	}
}

func (c *Client) session(ctx context.Context) (model.AuthState, error) {
	if err := ctx.Err(); err != nil {
		return model.AuthState{}, fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	state := c.GetAuthInfo(ctx)
	if !state.IsAuthenticated {
		return model.AuthState{}, client.ErrNotAuthenticated
	}
	return state, nil
}

// readAll returns every stored wheel regardless of owner.
func (c *Client) readAll(ctx context.Context) ([]model.WheelConfiguration, error) {
	raw, ok, err := c.store.Get(ctx, KeySettings)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var all []model.WheelConfiguration
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", client.ErrTransport, KeySettings, err)
	}
	return all, nil
}

func (c *Client) writeAll(ctx context.Context, all []model.WheelConfiguration) error {
	raw, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", client.ErrTransport, KeySettings, err)
	}
	if err := c.store.Set(ctx, KeySettings, string(raw)); err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	return nil
}

func (c *Client) LoadConfigurations(ctx context.Context) ([]model.WheelConfiguration, error) {
	state, err := c.session(ctx)
	if err != nil {
		return nil, err
	}
	all, err := c.readAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []model.WheelConfiguration{}
	for _, w := range all {
		if w.OwnerID == state.UserID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (c *Client) LoadConfigurationByID(ctx context.Context, id string) (model.WheelConfiguration, error) {
	list, err := c.LoadConfigurations(ctx)
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	for _, w := range list {
		if w.ID == id {
			return w, nil
		}
	}
	return model.WheelConfiguration{}, client.ErrNotFound
}

func (c *Client) SaveConfiguration(ctx context.Context, cfg model.WheelConfiguration) (string, error) {
	state, err := c.session(ctx)
	if err != nil {
		return "", err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	all, err := c.readAll(ctx)
	if err != nil {
		return "", err
	}
	cfg = cfg.Clone()
	cfg.OwnerID = state.UserID
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
		all = append(all, cfg)
	} else {
		i := find(all, cfg.ID, state.UserID)
		if i < 0 {
			return "", client.ErrNotFound
		}
		all[i] = cfg
	}
	if err := c.writeAll(ctx, all); err != nil {
		return "", err
	}
	return cfg.ID, nil
}

func (c *Client) DeleteConfiguration(ctx context.Context, id string) error {
	state, err := c.session(ctx)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	all, err := c.readAll(ctx)
	if err != nil {
		return err
	}
	i := find(all, id, state.UserID)
	if i < 0 {
		return client.ErrNotFound
	}
	return c.writeAll(ctx, append(all[:i:i], all[i+1:]...))
}

func (c *Client) SetActiveConfiguration(ctx context.Context, id string) error {
	if err := c.store.Set(ctx, KeyActiveID, id); err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	return nil
}

func (c *Client) GetActiveConfigurationID(ctx context.Context) (string, bool) {
	id, ok, err := c.store.Get(ctx, KeyActiveID)
	if err != nil || !ok || id == "" {
		return "", false
	}
	return id, true
}

func (c *Client) GetEnvironmentConfig(context.Context) model.EnvironmentConfig {
	return c.env
}

func find(all []model.WheelConfiguration, id, owner string) int {
	for i, w := range all {
		if w.ID == id && w.OwnerID == owner {
			return i
		}
	}
	return -1
}
