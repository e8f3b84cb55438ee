package rest

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrRejected = errors.New("request rejected")
)
