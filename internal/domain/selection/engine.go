// Package selection picks a winning segment and computes the rotation that
// parks it under the pointer.
//
// Geometry: the pointer sits at the top of the wheel. Segment i of n is
// centred at wheel angle i*360/n, measured clockwise. Rotations are absolute
// degrees and only ever grow.
package selection

import (
	"fmt"
	"math"
)

// Default revolution bounds.
const (
	MinRevolutions = 3
	MaxRevolutions = 5
)

// Engine is safe for concurrent use when its RNG is.
type Engine struct {
	rng    RNG
	minRev int
	maxRev int
}

// Plan is the outcome of one draw.
type Plan struct {
	Winner int
	Target float64
}

// New creates an Engine backed by crypto/rand unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{
		rng:    SecureRNG(),
		minRev: MinRevolutions,
		maxRev: MaxRevolutions,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Revolutions returns the configured bounds.
func (e *Engine) Revolutions() (int, int) { return e.minRev, e.maxRev }

// ArcWidth is the angle each of n segments occupies.
func ArcWidth(n int) float64 { return 360 / float64(n) }

// ChooseWinner returns a uniform index in [0, n).
func (e *Engine) ChooseWinner(n int) (int, error) {
	if n < 1 {
		return 0, ErrNoSegments
	}
	return e.rng.Intn(n), nil
}

// TargetRotation returns an absolute rotation greater than current that
// leaves segment winner centred under the pointer.
func (e *Engine) TargetRotation(current float64, n, winner int) (float64, error) {
	if n < 1 {
		return 0, ErrNoSegments
	}
	if winner < 0 || winner >= n {
		return 0, fmt.Errorf("%w: %d of %d", ErrWinnerOutOfRange, winner, n)
	}
	revs := e.minRev
	if span := e.maxRev - e.minRev; span > 0 {
		revs += e.rng.Intn(span + 1)
	}
	base := current - normalize(current)
	return base + float64(revs)*360 + (360 - float64(winner)*ArcWidth(n)), nil
}

// Spin chooses a winner and its target in one call.
func (e *Engine) Spin(current float64, n int) (Plan, error) {
	winner, err := e.ChooseWinner(n)
	if err != nil {
		return Plan{}, err
	}
	target, err := e.TargetRotation(current, n, winner)
	if err != nil {
		return Plan{}, err
	}
	return Plan{Winner: winner, Target: target}, nil
}

// SegmentAt returns the index of the segment under the pointer at rotation.
func SegmentAt(rotation float64, n int) int {
	if n < 1 {
		return -1
	}
	arc := ArcWidth(n)
	theta := normalize(-rotation)
	return int(math.Floor((theta+arc/2)/arc)) % n
}

// normalize maps deg into [0, 360).
func normalize(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}
