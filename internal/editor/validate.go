package editor

import (
	"fmt"
	"strings"

	"github.com/okian/spinner/internal/domain/model"
)

// Accepted spin durations in seconds.
const (
	MinDuration = 1
	MaxDuration = 60
)

// MinSegments is the smallest wheel the editor will save.
const MinSegments = 2

// Validate reports the first rule cfg breaks, wrapped in
// ErrInvalidConfiguration.
func Validate(cfg model.WheelConfiguration) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	}
	if len(cfg.Segments) < MinSegments {
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, ErrTooFewSegments)
	}
	if cfg.Duration < MinDuration || cfg.Duration > MaxDuration {
		return fmt.Errorf("%w: duration must be between %d and %d seconds", ErrInvalidConfiguration, MinDuration, MaxDuration)
	}
	seen := make(map[string]struct{}, len(cfg.Segments))
	for i, s := range cfg.Segments {
		if strings.TrimSpace(s.Label) == "" {
			return fmt.Errorf("%w: segment %d has no label", ErrInvalidConfiguration, i+1)
		}
		if s.ID == "" {
			return fmt.Errorf("%w: segment %d has no id", ErrInvalidConfiguration, i+1)
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("%w: duplicate segment id %q", ErrInvalidConfiguration, s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}
