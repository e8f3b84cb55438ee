package selection

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNoSegments       = errors.New("selection requires at least one segment")
	ErrWinnerOutOfRange = errors.New("winner index out of range")
)
