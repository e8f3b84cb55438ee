// Package editor manages one draft wheel configuration at a time on top of
// a session. Drafts are validated before any client call.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/okian/spinner/internal/client"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/session"
	"github.com/okian/spinner/pkg/logger"
)

const defaultDraftName = "New Spinner"

// Editor is safe for concurrent use.
type Editor struct {
	client    client.Client
	session   *session.Controller
	logger    logger.Logger
	draftName string

	mu      sync.Mutex
	draft   model.WheelConfiguration
	open    bool
	message string
}

// New creates an editor that persists through c and refreshes s.
func New(c client.Client, s *session.Controller, opts ...Option) *Editor {
	e := &Editor{
		client:    c,
		session:   s,
		logger:    logger.NewNop(),
		draftName: defaultDraftName,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Editor) signedIn() error {
	if !e.session.Auth().IsAuthenticated {
		return ErrSignInRequired
	}
	return nil
}

// Create opens a new draft seeded from the environment defaults.
func (e *Editor) Create(ctx context.Context) error {
	if err := e.signedIn(); err != nil {
		return err
	}
	draft := model.NewWheel(e.draftName, e.client.GetEnvironmentConfig(ctx))

	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft, e.open, e.message = draft, true, ""
	return nil
}

// Edit opens the stored configuration id as the draft.
func (e *Editor) Edit(ctx context.Context, id string) error {
	if err := e.signedIn(); err != nil {
		return err
	}
	cfg, err := e.client.LoadConfigurationByID(ctx, id)
	if err != nil {
		return e.clientError(err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft, e.open, e.message = cfg, true, ""
	return nil
}

// Draft returns a copy of the open draft.
func (e *Editor) Draft() (model.WheelConfiguration, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return model.WheelConfiguration{}, false
	}
	return e.draft.Clone(), true
}

func (e *Editor) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Message is the user-facing text of the last failure, empty after success.
func (e *Editor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

// mutate applies fn to the open draft.
func (e *Editor) mutate(fn func(d *model.WheelConfiguration) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.open {
		return ErrNotOpen
	}
	return fn(&e.draft)
}

func (e *Editor) Rename(name string) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		d.Name = name
		return nil
	})
}

// SetDuration sets the spin length in seconds. Range is checked on Save.
func (e *Editor) SetDuration(seconds float64) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		d.Duration = seconds
		return nil
	})
}

func (e *Editor) SetColors(primary, secondary string) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		d.PrimaryColor, d.SecondaryColor = primary, secondary
		return nil
	})
}

func (e *Editor) SetShowConfetti(show bool) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		d.ShowConfetti = show
		return nil
	})
}

// AddSegment appends a segment and returns it.
func (e *Editor) AddSegment(label string) (model.Segment, error) {
	seg := model.NewSegment(label)
	err := e.mutate(func(d *model.WheelConfiguration) error {
		d.Segments = append(d.Segments, seg)
		return nil
	})
	return seg, err
}

// UpdateSegment replaces the label, value and colour of segment id.
func (e *Editor) UpdateSegment(id, label, value, color string) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		i := segmentIndex(d.Segments, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSegment, id)
		}
		s := &d.Segments[i]
		s.Label, s.Value, s.Color = label, value, color
		return nil
	})
}

// RemoveSegment deletes segment id unless that would leave fewer than
// MinSegments.
func (e *Editor) RemoveSegment(id string) error {
	return e.mutate(func(d *model.WheelConfiguration) error {
		i := segmentIndex(d.Segments, id)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownSegment, id)
		}
		if len(d.Segments) <= MinSegments {
			return ErrTooFewSegments
		}
		d.Segments = append(d.Segments[:i], d.Segments[i+1:]...)
		return nil
	})
}

// Save validates and persists the draft. On failure the draft stays open
// and Message explains why; on success the editor closes and the session
// settings are refreshed.
func (e *Editor) Save(ctx context.Context) (string, error) {
	if err := e.signedIn(); err != nil {
		return "", err
	}
	draft, ok := e.Draft()
	if !ok {
		return "", ErrNotOpen
	}
	if err := Validate(draft); err != nil {
		e.setMessage(err.Error())
		return "", err
	}

	id, err := e.client.SaveConfiguration(ctx, draft)
	if err != nil {
		err = e.clientError(err)
		e.logger.Warn(ctx, "saving spinner failed", logger.String("name", draft.Name), logger.Error(err))
		return "", err
	}

	e.mu.Lock()
	e.draft, e.open, e.message = model.WheelConfiguration{}, false, ""
	e.mu.Unlock()

	e.logger.Info(ctx, "spinner saved", logger.String("id", id))
	_ = e.session.RefreshSettings(ctx)
	return id, nil
}

// Delete removes configuration id and refreshes the session settings.
func (e *Editor) Delete(ctx context.Context, id string) error {
	if err := e.signedIn(); err != nil {
		return err
	}
	if err := e.client.DeleteConfiguration(ctx, id); err != nil {
		return e.clientError(err)
	}

	e.mu.Lock()
	if e.open && e.draft.ID == id {
		e.draft, e.open = model.WheelConfiguration{}, false
	}
	e.message = ""
	e.mu.Unlock()

	_ = e.session.RefreshSettings(ctx)
	return nil
}

// Activate makes id the active configuration.
func (e *Editor) Activate(ctx context.Context, id string) error {
	if err := e.signedIn(); err != nil {
		return err
	}
	if err := e.session.SetActiveSpinner(ctx, id); err != nil {
		return e.clientError(err)
	}
	return nil
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.draft, e.open, e.message = model.WheelConfiguration{}, false, ""
}

// clientError records the user-facing message for err. A rejected session
// is also reported as ErrSignInRequired.
func (e *Editor) clientError(err error) error {
	e.setMessage(userMessage(err))
	if errors.Is(err, client.ErrNotAuthenticated) {
		return fmt.Errorf("%w: %w", ErrSignInRequired, err)
	}
	return err
}

func (e *Editor) setMessage(msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.message = msg
}

func userMessage(err error) string {
	for _, kind := range []error{client.ErrNotAuthenticated, client.ErrNotFound, client.ErrTransport} {
		if errors.Is(err, kind) {
			return kind.Error()
		}
	}
	return err.Error()
}

func segmentIndex(segs []model.Segment, id string) int {
	for i, s := range segs {
		if s.ID == id {
			return i
		}
	}
	return -1
}
