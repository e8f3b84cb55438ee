// Package service composes a host: it picks the client variant from
// configuration and wires the session, editor and wheels around it.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/spinner/internal/adapters/extension"
	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/adapters/memory"
	"github.com/okian/spinner/internal/adapters/rest"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/config"
	"github.com/okian/spinner/internal/domain/animation"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/domain/selection"
	"github.com/okian/spinner/internal/editor"
	"github.com/okian/spinner/internal/session"
	"github.com/okian/spinner/pkg/logger"
)

// Host owns the long-lived pieces of one running host.
type Host struct {
	mu sync.Mutex

	cfg    *config.Config
	logger logger.Logger

	store     kv.Store
	ownsStore bool
	client    client.Client
	variant   string
	session   *session.Controller
	editor    *editor.Editor
	signal    *session.Signal

	clock animation.Clock
	rng   selection.RNG

	started bool
	stopped bool
}

// New builds a host from cfg. Call Start to begin the initial loads and Stop
// to release storage.
func New(cfg *config.Config, opts ...Option) (*Host, error) {
	if cfg == nil {
		cfg = config.New()
	}
	h := &Host{
		cfg:    cfg,
		logger: logger.NewNop(),
		clock:  animation.RealClock(),
		rng:    selection.SecureRNG(),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.store == nil {
		store, err := openStore(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		h.store, h.ownsStore = store, true
	}

	if h.client == nil {
		c, variant, err := h.buildClient()
		if err != nil {
			h.closeStore()
			return nil, err
		}
		h.client, h.variant = c, variant
	} else {
		h.variant = "custom"
	}
	h.client = client.Instrument(h.client, h.variant, h.logger.Named("client"))

	h.signal = session.NewSignal(cfg.PrefersContrast)
	sessionOpts := []session.Option{
		session.WithPreferenceStore(h.store),
		session.WithContrastSignal(h.signal),
		session.WithLogger(h.logger.Named("session")),
	}
	if cfg.HighContrast != nil {
		sessionOpts = append(sessionOpts, session.WithHighContrastOverride(*cfg.HighContrast))
	}
	h.session = session.New(h.client, sessionOpts...)
	h.editor = editor.New(h.client, h.session, editor.WithLogger(h.logger.Named("editor")))
	return h, nil
}

func openStore(path string) (kv.Store, error) {
	if path == "" {
		return kv.NewMemoryStore(), nil
	}
	store, err := kv.OpenSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open host storage: %w", err)
	}
	return store, nil
}

// environment converts the wheel defaults in the configuration.
func environment(cfg *config.Config) model.EnvironmentConfig {
	return model.EnvironmentConfig{
		Version:         model.EnvironmentConfigVersion,
		DefaultDuration: cfg.DefaultDuration,
		PrimaryColor:    cfg.PrimaryColor,
		SecondaryColor:  cfg.SecondaryColor,
		ShowConfetti:    cfg.ShowConfetti,
	}
}

func (h *Host) buildClient() (client.Client, string, error) {
	env := environment(h.cfg)
	switch h.cfg.Client {
	case config.ClientMemory:
		return memory.New(
			memory.WithEnvironment(env),
			memory.WithAccount(h.cfg.SeedEmail, h.cfg.SeedPassword),
		), client.VariantMemory, nil
	case config.ClientExtension:
		var auth extension.Authenticator
		if h.cfg.SeedEmail != "" {
			auth = extension.LocalAccount(h.cfg.SeedEmail, h.cfg.SeedPassword)
		} else {
			auth = rest.New(h.cfg.APIURL, rest.WithTimeout(h.cfg.HTTPTimeout), rest.WithLogger(h.logger))
		}
		return extension.New(h.store, auth,
			extension.WithEnvironment(env),
			extension.WithLogger(h.logger.Named("extension")),
		), client.VariantExtension, nil
	case config.ClientREST:
		return rest.New(h.cfg.APIURL,
			rest.WithTimeout(h.cfg.HTTPTimeout),
			rest.WithCache(h.store),
			rest.WithEnvironment(env),
			rest.WithLogger(h.logger.Named("rest")),
		), client.VariantREST, nil
	default:
		return nil, "", fmt.Errorf("%w: unknown client %q", config.ErrInvalidConfig, h.cfg.Client)
	}
}

// Start launches the session loads. Calling it again does nothing.
func (h *Host) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started || h.stopped {
		return
	}
	h.started = true
	h.logger.Info(ctx, "host starting", logger.String("client", h.variant))
	h.session.Start(ctx)
}

// Stop closes the session and any storage the host opened.
func (h *Host) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	h.session.Close()
	h.closeStore()
	h.logger.Info(context.Background(), "host stopped")
}

func (h *Host) closeStore() {
	if !h.ownsStore {
		return
	}
	if closer, ok := h.store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

func (h *Host) Client() client.Client        { return h.client }
func (h *Host) Variant() string              { return h.variant }
func (h *Host) Session() *session.Controller { return h.session }
func (h *Host) Editor() *editor.Editor       { return h.editor }

// ContrastSignal is fed by the host's platform preference probe.
func (h *Host) ContrastSignal() *session.Signal { return h.signal }

// NewWheel builds an animation controller for cfg using the host's clock,
// randomness and revolution range.
func (h *Host) NewWheel(cfg model.WheelConfiguration, onComplete func(model.Segment)) *animation.Controller {
	engine := selection.New(
		selection.WithRNG(h.rng),
		selection.WithRevolutions(h.cfg.MinRevolutions, h.cfg.MaxRevolutions),
	)
	duration := cfg.SpinDuration()
	if duration <= 0 {
		duration = model.WheelConfiguration{Duration: h.cfg.DefaultDuration}.SpinDuration()
	}
	return animation.New(cfg.Segments, duration, onComplete,
		animation.WithEngine(engine),
		animation.WithClock(h.clock),
		animation.WithLogger(h.logger.Named("wheel")),
	)
}

// ActiveWheel builds a wheel for the session's active configuration.
func (h *Host) ActiveWheel(onComplete func(model.Segment)) (*animation.Controller, model.WheelConfiguration, bool) {
	cfg, ok := h.session.ActiveConfiguration()
	if !ok {
		return nil, model.WheelConfiguration{}, false
	}
	return h.NewWheel(cfg, onComplete), cfg, true
}
