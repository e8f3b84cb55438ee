package client

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotAuthenticated = errors.New("Not authenticated") //nolint:staticcheck // shown to users verbatim
	ErrNotFound         = errors.New("Configuration not found")
	ErrTransport        = errors.New("Storage unavailable")
)

// Result labels used for metrics.
const (
	ResultSuccess          = "success"
	ResultRejected         = "rejected"
	ResultNotAuthenticated = "not_authenticated"
	ResultNotFound         = "not_found"
	ResultTransport        = "transport"
	ResultError            = "error"
)

// ResultOf maps an operation error to its metrics label.
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case errors.Is(err, ErrNotAuthenticated):
		return ResultNotAuthenticated
	case errors.Is(err, ErrNotFound):
		return ResultNotFound
	case errors.Is(err, ErrTransport):
		return ResultTransport
	default:
		return ResultError
	}
}
