// Package session holds the per-host view of who is signed in, which wheel
// configurations they own, which one is active and whether high contrast is
// on.
//
// A Controller is an explicit value: hosts may build as many as they like.
// Load failures are logged and leave the last-known value in place; nothing
// retries on its own.
package session

import (
	"context"
	"strconv"
	"sync"

	"github.com/okian/spinner/internal/adapters/kv"
	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
	"github.com/okian/spinner/pkg/metrics"
)

// Controller is safe for concurrent use.
type Controller struct {
	client client.Client
	prefs  kv.Store
	signal ContrastSignal
	logger logger.Logger

	override *bool

	mu              sync.RWMutex
	auth            model.AuthState
	authLoading     bool
	settings        []model.WheelConfiguration
	settingsLoading bool
	activeID        string
	hasActive       bool
	settingActive   bool
	highContrast    bool
	persisted       bool
	closed          bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int

	cancelSignal func()
	startOnce    sync.Once
	ready        chan struct{}
}

// New creates a controller over c and resolves the initial high contrast
// mode. Call Start to run the initial loads.
func New(c client.Client, opts ...Option) *Controller {
	s := &Controller{
		client:      c,
		prefs:       kv.NewMemoryStore(),
		logger:      logger.NewNop(),
		authLoading: true,
		subs:        make(map[int]func()),
		ready:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resolveContrast(context.Background())
	if s.signal != nil {
		s.cancelSignal = s.signal.Subscribe(s.onSignal)
	}
	metrics.UpdateHighContrast(s.highContrast)
	return s
}

// resolveContrast applies override, then persisted preference, then the
// platform signal.
func (s *Controller) resolveContrast(ctx context.Context) {
	if s.override != nil {
		s.highContrast = *s.override
		return
	}
	raw, ok, err := s.prefs.Get(ctx, PreferenceKey)
	if err != nil {
		s.logger.Warn(ctx, "reading contrast preference failed", logger.Error(err))
	}
	if ok {
		if v, perr := strconv.ParseBool(raw); perr == nil {
			s.highContrast = v
			s.persisted = true
			return
		}
	}
	if s.signal != nil {
		s.highContrast = s.signal.PrefersMoreContrast()
	}
}

func (s *Controller) onSignal(prefers bool) {
	s.mu.Lock()
	if s.closed || s.persisted || s.override != nil || s.highContrast == prefers {
		s.mu.Unlock()
		return
	}
	s.highContrast = prefers
	s.mu.Unlock()

	metrics.UpdateHighContrast(prefers)
	s.notify()
}

// Start runs the auth and active id loads in the background. Settings load
// after auth when the user is signed in. Subsequent calls do nothing.
func (s *Controller) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.loadAuth(ctx)
		}()
		go func() {
			defer wg.Done()
			s.loadActive(ctx)
		}()
		go func() {
			wg.Wait()
			close(s.ready)
		}()
	})
}

// Ready is closed once the loads launched by Start have finished.
func (s *Controller) Ready() <-chan struct{} {
	return s.ready
}

func (s *Controller) loadAuth(ctx context.Context) {
	state := s.client.GetAuthInfo(ctx)

	s.mu.Lock()
	s.auth = state
	s.authLoading = false
	s.mu.Unlock()
	s.notify()

	if state.IsAuthenticated {
		_ = s.RefreshSettings(ctx)
	}
}

func (s *Controller) loadActive(ctx context.Context) {
	id, ok := s.client.GetActiveConfigurationID(ctx)

	s.mu.Lock()
	s.activeID, s.hasActive = id, ok
	s.mu.Unlock()
	s.notify()
}

func (s *Controller) Auth() model.AuthState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auth
}

func (s *Controller) IsAuthLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authLoading
}

// SpinnerSettings returns a copy of the last loaded list, or nil before the
// first successful load.
func (s *Controller) SpinnerSettings() []model.WheelConfiguration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneAll(s.settings)
}

func (s *Controller) IsLoadingSettings() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingsLoading
}

func (s *Controller) ActiveSpinnerID() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, s.hasActive
}

func (s *Controller) IsSettingActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settingActive
}

func (s *Controller) HighContrastMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highContrast
}

// ActiveConfiguration returns the loaded configuration matching the active
// id. Without a match it falls back to the first loaded configuration.
func (s *Controller) ActiveConfiguration() (model.WheelConfiguration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.settings) == 0 {
		return model.WheelConfiguration{}, false
	}
	if s.hasActive {
		for _, w := range s.settings {
			if w.ID == s.activeID {
				return w.Clone(), true
			}
		}
	}
	return s.settings[0].Clone(), true
}

// RefreshSettings reloads the configuration list. The cached list is only
// replaced when the load succeeds.
func (s *Controller) RefreshSettings(ctx context.Context) error {
	s.mu.Lock()
	s.settingsLoading = true
	s.mu.Unlock()
	s.notify()

	list, err := s.client.LoadConfigurations(ctx)

	s.mu.Lock()
	s.settingsLoading = false
	if err == nil {
		if list == nil {
			list = []model.WheelConfiguration{}
		}
		s.settings = model.CloneAll(list)
	}
	s.mu.Unlock()

	metrics.RecordSettingsRefresh(err == nil, len(list))
	if err != nil {
		s.logger.Warn(ctx, "loading spinner settings failed", logger.Error(err))
	}
	s.notify()
	return err
}

// SetActiveSpinner marks id active. The cached id changes only when the
// client accepts it.
func (s *Controller) SetActiveSpinner(ctx context.Context, id string) error {
	s.mu.Lock()
	s.settingActive = true
	s.mu.Unlock()
	s.notify()

	err := s.client.SetActiveConfiguration(ctx, id)

	s.mu.Lock()
	s.settingActive = false
	if err == nil {
		s.activeID, s.hasActive = id, true
	}
	s.mu.Unlock()

	metrics.RecordActiveChange(err == nil)
	if err != nil {
		s.logger.Warn(ctx, "setting active spinner failed", logger.String("id", id), logger.Error(err))
	}
	s.notify()
	return err
}

// ToggleHighContrastMode flips the mode, persists it and returns the new
// value. Once persisted the platform signal no longer applies.
func (s *Controller) ToggleHighContrastMode(ctx context.Context) bool {
	s.mu.Lock()
	s.highContrast = !s.highContrast
	enabled := s.highContrast
	s.persisted = true
	s.mu.Unlock()

	if err := s.prefs.Set(ctx, PreferenceKey, strconv.FormatBool(enabled)); err != nil {
		s.logger.Warn(ctx, "persisting contrast preference failed", logger.Error(err))
	}
	metrics.UpdateHighContrast(enabled)
	s.notify()
	return enabled
}

// Authenticate signs in through the client and reloads settings on success.
func (s *Controller) Authenticate(ctx context.Context, email, password string) model.AuthState {
	state := s.client.Authenticate(ctx, email, password)

	s.mu.Lock()
	s.auth = state
	s.authLoading = false
	if !state.IsAuthenticated {
		s.settings = nil
	}
	s.mu.Unlock()
	s.notify()

	if state.IsAuthenticated {
		_ = s.RefreshSettings(ctx)
	}
	return state
}

// Logout signs out and forgets the loaded settings.
func (s *Controller) Logout(ctx context.Context) {
	s.client.Logout(ctx)

	s.mu.Lock()
	s.auth = model.Unauthenticated()
	s.settings = nil
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn to run after every state change. fn runs on the
// goroutine that made the change and must not block.
func (s *Controller) Subscribe(fn func()) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Controller) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close stops listening to the contrast signal.
func (s *Controller) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancelSignal
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
