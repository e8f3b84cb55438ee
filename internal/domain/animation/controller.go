// Package animation drives a single wheel's spin over time.
//
// The logical spinning flag and the completion timer are separate: once a
// spin starts, its timer runs to completion even if the flag is lowered, and
// the next spin needs the flag to go low and then high again.
package animation

import (
	"context"
	"sync"
	"time"

	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/internal/domain/selection"
	"github.com/okian/spinner/pkg/logger"
	"github.com/okian/spinner/pkg/metrics"
)

// State of a wheel.
type State int

const (
	Idle State = iota
	Spinning
	Settled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Spinning:
		return "spinning"
	case Settled:
		return "settled"
	default:
		return "unknown"
	}
}

// Reasons reported when a spin request is dropped.
const (
	ignoredNoSegments = "no_segments"
	ignoredInFlight   = "already_spinning"
	ignoredClosed     = "closed"
)

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	engine     *selection.Engine
	clock      Clock
	logger     logger.Logger
	onComplete func(model.Segment)

	segments []model.Segment
	duration time.Duration

	state  State
	flag   bool
	timer  Timer
	gen    uint64
	closed bool

	start     float64
	target    float64
	startedAt time.Time
	spinFor   time.Duration

	pending     int
	pendingSeg  model.Segment
	winner      model.Segment
	winnerIndex int
	hasWinner   bool
}

// New creates a controller for segments spinning for duration. onComplete
// receives the winner exactly once per spin and may be nil.
func New(segments []model.Segment, duration time.Duration, onComplete func(model.Segment), opts ...Option) *Controller {
	c := &Controller{
		engine:      selection.New(),
		clock:       RealClock(),
		logger:      logger.NewNop(),
		onComplete:  onComplete,
		segments:    cloneSegments(segments),
		duration:    duration,
		winnerIndex: -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetSpinning applies the external spin flag and reports whether a new spin
// started.
func (c *Controller) SetSpinning(on bool) bool {
	ctx := context.Background()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		metrics.RecordSpinIgnored(ignoredClosed)
		return false
	}
	if !on {
		c.flag = false
		if c.state == Settled {
			c.state = Idle
		}
		return false
	}

	wasOn := c.flag
	c.flag = true
	if wasOn || c.state == Spinning {
		metrics.RecordSpinIgnored(ignoredInFlight)
		return false
	}
	if len(c.segments) == 0 {
		c.flag = false
		metrics.RecordSpinIgnored(ignoredNoSegments)
		c.logger.Debug(ctx, "spin ignored: no segments")
		return false
	}

	plan, err := c.engine.Spin(c.target, len(c.segments))
	if err != nil {
		c.flag = false
		c.logger.Warn(ctx, "spin planning failed", logger.Error(err))
		return false
	}

	c.gen++
	gen := c.gen
	c.state = Spinning
	c.start = c.target
	c.target = plan.Target
	c.startedAt = c.clock.Now()
	c.spinFor = c.duration
	c.pending = plan.Winner
	c.pendingSeg = c.segments[plan.Winner].Clone()
	c.hasWinner = false
	c.timer = c.clock.AfterFunc(c.duration, func() { c.complete(gen) })

	metrics.RecordSpinStarted(c.duration.Seconds())
	c.logger.Debug(ctx, "spin started",
		logger.Int("segments", len(c.segments)),
		logger.Float64("target", plan.Target),
		logger.Duration("duration", c.duration),
	)
	return true
}

// Spin is shorthand for lowering and raising the flag.
func (c *Controller) Spin() bool {
	c.SetSpinning(false)
	return c.SetSpinning(true)
}

func (c *Controller) complete(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.gen || c.state != Spinning {
		c.mu.Unlock()
		return
	}
	c.state = Settled
	c.timer = nil
	c.winnerIndex = c.pending
	c.winner = c.pendingSeg
	c.hasWinner = true
	winner, idx, cb := c.winner, c.winnerIndex, c.onComplete
	c.mu.Unlock()

	metrics.RecordSpinCompleted(idx)
	c.logger.Info(context.Background(), "spin settled",
		logger.String("segment", winner.ID),
		logger.String("label", winner.Label),
		logger.Int("index", idx),
	)
	if cb != nil {
		cb(winner)
	}
}

// Close cancels any pending completion. No callback runs after Close.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.gen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// SetSegments replaces the segments used by the next spin. A spin in flight
// still settles on the segment it picked.
func (c *Controller) SetSegments(segments []model.Segment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.segments = cloneSegments(segments)
}

// Segments returns a copy of the current segments.
func (c *Controller) Segments() []model.Segment {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneSegments(c.segments)
}

// SetDuration changes the duration of the next spin. Non-positive values are ignored.
func (c *Controller) SetDuration(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.duration = d
}

// Duration returns the configured spin duration.
func (c *Controller) Duration() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsSpinning reports the external flag, not the animation.
func (c *Controller) IsSpinning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.flag
}

// Winner returns the last settled segment.
func (c *Controller) Winner() (model.Segment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.winner, c.hasWinner
}

// WinnerIndex returns the last settled index or -1.
func (c *Controller) WinnerIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hasWinner {
		return -1
	}
	return c.winnerIndex
}

// Rotation returns the committed target rotation in degrees.
func (c *Controller) Rotation() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// Progress returns how far the current spin is at t, in [0, 1].
func (c *Controller) Progress(t time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progress(t)
}

// RotationAt returns the rendered rotation at t using an ease-out curve.
func (c *Controller) RotationAt(t time.Time) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Spinning {
		return c.target
	}
	return c.start + (c.target-c.start)*easeOutCubic(c.progress(t))
}

func (c *Controller) progress(t time.Time) float64 {
	switch {
	case c.state == Spinning:
		if c.spinFor <= 0 {
			return 1
		}
		p := float64(t.Sub(c.startedAt)) / float64(c.spinFor)
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	case c.startedAt.IsZero():
		return 0
	default:
		return 1
	}
}

func easeOutCubic(p float64) float64 {
	q := 1 - p
	return 1 - q*q*q
}

func cloneSegments(in []model.Segment) []model.Segment {
	out := make([]model.Segment, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}
