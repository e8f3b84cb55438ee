// Package model contains domain models passed between layers.
package model

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Segment is one selectable slice of the wheel.
// Fields mirror the JSON stored by every client variant.
type Segment struct {
	ID    string `json:"id"`              // unique within a configuration
	Label string `json:"label"`           // text rendered on the slice
	Value string `json:"value"`           // opaque payload handed back to the host
	Color string `json:"color,omitempty"` // optional override of the alternating palette

	// Weight is accepted and stored but selection is uniform.
	Weight *float64 `json:"weight,omitempty"`
}

// WheelConfiguration is a named, persisted set of segments plus presentation settings.
type WheelConfiguration struct {
	ID             string    `json:"id,omitempty"` // empty until persisted
	Name           string    `json:"name"`
	Segments       []Segment `json:"segments"`
	Duration       float64   `json:"duration"` // seconds
	PrimaryColor   string    `json:"primaryColor"`
	SecondaryColor string    `json:"secondaryColor"`
	ShowConfetti   bool      `json:"showConfetti"`
	OwnerID        string    `json:"ownerId,omitempty"`
}

// Persisted reports whether the configuration has been assigned an id.
func (w WheelConfiguration) Persisted() bool { return w.ID != "" }

// SpinDuration converts Duration to a time.Duration.
func (w WheelConfiguration) SpinDuration() time.Duration {
	return time.Duration(w.Duration * float64(time.Second))
}

// Clone returns a deep copy so stored configurations are never aliased by callers.
func (w WheelConfiguration) Clone() WheelConfiguration {
	out := w
	if w.Segments != nil {
		out.Segments = make([]Segment, len(w.Segments))
		for i, s := range w.Segments {
			out.Segments[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a copy of the segment with its own weight pointer.
func (s Segment) Clone() Segment {
	if s.Weight != nil {
		w := *s.Weight
		s.Weight = &w
	}
	return s
}

// CloneAll deep-copies a list of configurations.
func CloneAll(in []WheelConfiguration) []WheelConfiguration {
	if in == nil {
		return nil
	}
	out := make([]WheelConfiguration, len(in))
	for i, w := range in {
		out[i] = w.Clone()
	}
	return out
}

// NewSegmentID returns a short random segment id.
func NewSegmentID() string {
	return gonanoid.Must(12)
}

// NewSegment builds a segment with a fresh id; value defaults to the label.
func NewSegment(label string) Segment {
	return Segment{ID: NewSegmentID(), Label: label, Value: label}
}

// NewWheel creates an unsaved draft seeded from environment defaults with
// two starter segments.
func NewWheel(name string, env EnvironmentConfig) WheelConfiguration {
	return WheelConfiguration{
		Name:           name,
		Segments:       []Segment{NewSegment("Option 1"), NewSegment("Option 2")},
		Duration:       env.DefaultDuration,
		PrimaryColor:   env.PrimaryColor,
		SecondaryColor: env.SecondaryColor,
		ShowConfetti:   env.ShowConfetti,
	}
}
