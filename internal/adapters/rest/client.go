// Package rest is the remote API client. It talks to the configuration API
// with a bearer token and keeps a local cache so reads survive outages.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
	"github.com/okian/spinner/pkg/metrics"
)

// Cache keys.
const (
	KeySession  = "restSession"
	KeyCache    = "restSpinnersCache"
	KeyActiveID = "activeSpinnerId"
)

const defaultTimeout = 10 * time.Second

// session is the cached login.
type session struct {
	model.AuthState
	ExpiresAt int64 `json:"expiresAt"` // unix milliseconds
}

// cachedList is the last successful list read for one user.
type cachedList struct {
	UserID   string                     `json:"userId"`
	Spinners []model.WheelConfiguration `json:"spinners"`
}

// Client implements client.Client over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	cache   kv.Store
	env     model.EnvironmentConfig
	logger  logger.Logger
	now     func() time.Time
}

var _ client.Client = (*Client)(nil)

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: defaultTimeout,
		cache:   kv.NewMemoryStore(),
		env:     model.DefaultEnvironment(),
		logger:  logger.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) GetAuthInfo(ctx context.Context) model.AuthState {
	s, ok := c.session(ctx)
	if !ok {
		return model.Unauthenticated()
	}
	return s.AuthState
}

// Login exchanges credentials for a token without touching the cache.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthState, error) {
	s, err := c.login(ctx, email, password)
	if err != nil {
		return model.Unauthenticated(), err
	}
	return s.AuthState, nil
}

func (c *Client) login(ctx context.Context, email, password string) (session, error) {
	var login wire.Envelope[wire.LoginData]
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", wire.LoginRequest{Email: email, Password: password}, &login); err != nil {
		if errors.Is(err, client.ErrNotAuthenticated) {
			return session{}, nil
		}
		return session{}, err
	}
	token := login.Data.AccessToken
	var me wire.Envelope[wire.User]
	if err := c.do(ctx, http.MethodGet, "/users/me", token, nil, &me); err != nil {
		return session{}, err
	}
	return session{
		AuthState: model.AuthState{
			IsAuthenticated: true,
			Email:           me.Data.Email,
			Token:           token,
			UserID:          me.Data.ID,
		},
		ExpiresAt: c.now().Add(time.Duration(login.Data.Expires) * time.Millisecond).UnixMilli(),
	}, nil
}

func (c *Client) Authenticate(ctx context.Context, email, password string) model.AuthState {
	s, err := c.login(ctx, email, password)
	if err != nil {
		c.logger.Warn(ctx, "login failed", logger.String("email", email), logger.Error(err))
		return model.Unauthenticated()
	}
	if !s.IsAuthenticated {
		return model.Unauthenticated()
	}
	raw, err := json.Marshal(s)
	if err == nil {
		err = c.cache.Set(ctx, KeySession, string(raw))
	}
	if err != nil {
		c.logger.Warn(ctx, "persisting session failed", logger.Error(err))
		return model.Unauthenticated()
	}
	return s.AuthState
}

func (c *Client) Logout(ctx context.Context) {
	if s, ok := c.session(ctx); ok {
		if err := c.do(ctx, http.MethodPost, "/auth/logout", s.Token, nil, nil); err != nil {
			c.logger.Debug(ctx, "remote logout failed", logger.Error(err))
		}
	}
	c.clearSession(ctx)
}

func (c *Client) LoadConfigurations(ctx context.Context) ([]model.WheelConfiguration, error) {
	s, err := c.requireSession(ctx)
	if err != nil {
		return nil, err
	}
	var resp wire.Envelope[[]wire.SpinnerItem]
	err = c.authed(ctx, s, http.MethodGet, "/items/spinners", nil, &resp)
	if err != nil {
		if cached, ok := c.fallback(ctx, s, client.OpLoadConfigurations, err); ok {
			return cached, nil
		}
		return nil, err
	}
	out := make([]model.WheelConfiguration, len(resp.Data))
	for i, item := range resp.Data {
		out[i] = item.ToModel()
	}
	c.storeCache(ctx, s.UserID, out)
	return out, nil
}

func (c *Client) LoadConfigurationByID(ctx context.Context, id string) (model.WheelConfiguration, error) {
	s, err := c.requireSession(ctx)
	if err != nil {
		return model.WheelConfiguration{}, err
	}
	var resp wire.Envelope[wire.SpinnerItem]
	err = c.authed(ctx, s, http.MethodGet, "/items/spinners/"+url.PathEscape(id), nil, &resp)
	if err != nil {
		if cached, ok := c.fallback(ctx, s, client.OpLoadConfiguration, err); ok {
			for _, w := range cached {
				if w.ID == id {
					return w, nil
				}
			}
		}
		return model.WheelConfiguration{}, err
	}
	return resp.Data.ToModel(), nil
}

func (c *Client) SaveConfiguration(ctx context.Context, cfg model.WheelConfiguration) (string, error) {
	s, err := c.requireSession(ctx)
	if err != nil {
		return "", err
	}
	var resp wire.Envelope[wire.SpinnerItem]
	if cfg.ID == "" {
		item := wire.FromModel(cfg)
		item.UserCreated = ""
		err = c.authed(ctx, s, http.MethodPost, "/items/spinners", item, &resp)
	} else {
		err = c.authed(ctx, s, http.MethodPatch, "/items/spinners/"+url.PathEscape(cfg.ID), wire.PatchFromModel(cfg), &resp)
	}
	if err != nil {
		return "", err
	}
	return resp.Data.ID, nil
}

func (c *Client) DeleteConfiguration(ctx context.Context, id string) error {
	s, err := c.requireSession(ctx)
	if err != nil {
		return err
	}
	return c.authed(ctx, s, http.MethodDelete, "/items/spinners/"+url.PathEscape(id), nil, nil)
}

func (c *Client) SetActiveConfiguration(ctx context.Context, id string) error {
	if err := c.cache.Set(ctx, KeyActiveID, id); err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	return nil
}

func (c *Client) GetActiveConfigurationID(ctx context.Context) (string, bool) {
	id, ok, err := c.cache.Get(ctx, KeyActiveID)
	if err != nil || !ok || id == "" {
		return "", false
	}
	return id, true
}

func (c *Client) GetEnvironmentConfig(context.Context) model.EnvironmentConfig {
	return c.env
}

func (c *Client) session(ctx context.Context) (session, bool) {
	raw, ok, err := c.cache.Get(ctx, KeySession)
	if err != nil || !ok {
		return session{}, false
	}
	var s session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || !s.IsAuthenticated || s.Token == "" {
		return session{}, false
	}
	if s.ExpiresAt > 0 && c.now().UnixMilli() >= s.ExpiresAt {
		return session{}, false
	}
	return s, true
}

func (c *Client) requireSession(ctx context.Context) (session, error) {
	if err := ctx.Err(); err != nil {
		return session{}, fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	s, ok := c.session(ctx)
	if !ok {
		return session{}, client.ErrNotAuthenticated
	}
	return s, nil
}

func (c *Client) clearSession(ctx context.Context) {
	for _, key := range []string{KeySession, KeyCache} {
		if err := c.cache.Delete(ctx, key); err != nil {
			c.logger.Warn(ctx, "clearing cache key failed", logger.String("key", key), logger.Error(err))
		}
	}
}

// authed performs a token-bearing call and drops the session on 401.
func (c *Client) authed(ctx context.Context, s session, method, path string, body, out any) error {
	err := c.do(ctx, method, path, s.Token, body, out)
	if errors.Is(err, client.ErrNotAuthenticated) {
		c.clearSession(ctx)
	}
	return err
}

// fallback serves the cached list for s when err is a transport failure.
func (c *Client) fallback(ctx context.Context, s session, op string, err error) ([]model.WheelConfiguration, bool) {
	if !errors.Is(err, client.ErrTransport) {
		return nil, false
	}
	raw, ok, cerr := c.cache.Get(ctx, KeyCache)
	if cerr != nil || !ok {
		return nil, false
	}
	var cached cachedList
	if json.Unmarshal([]byte(raw), &cached) != nil || cached.UserID != s.UserID {
		return nil, false
	}
	metrics.RecordCacheFallback(op)
	c.logger.Warn(ctx, "serving cached spinners", logger.String("operation", op), logger.Error(err))
	return model.CloneAll(cached.Spinners), true
}

func (c *Client) storeCache(ctx context.Context, userID string, list []model.WheelConfiguration) {
	raw, err := json.Marshal(cachedList{UserID: userID, Spinners: list})
	if err == nil {
		err = c.cache.Set(ctx, KeyCache, string(raw))
	}
	if err != nil {
		c.logger.Warn(ctx, "caching spinners failed", logger.Error(err))
	}
}

// do sends one request and maps the outcome onto client sentinels.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", client.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode %s %s: %v", client.ErrTransport, method, path, err)
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return client.ErrNotAuthenticated
	case resp.StatusCode == http.StatusNotFound:
		return client.ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s: %s", client.ErrTransport, method, path, resp.Status)
	default:
		return fmt.Errorf("%w: %s %s: %s", ErrRejected, method, path, errorMessage(resp.Body, resp.Status))
	}
}

func errorMessage(r io.Reader, fallback string) string {
	var body wire.ErrorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil || len(body.Errors) == 0 {
		return fallback
	}
	return body.Errors[0].Message
}
