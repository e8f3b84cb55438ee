package editor

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrSignInRequired       = errors.New("sign in to manage spinners")
	ErrTooFewSegments       = errors.New("a spinner needs at least two segments")
	ErrNotOpen              = errors.New("no spinner is being edited")
	ErrUnknownSegment       = errors.New("unknown segment")
)
