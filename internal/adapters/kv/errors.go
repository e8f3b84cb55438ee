package kv

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrClosed    = errors.New("kv store closed")
	ErrEmptyPath = errors.New("kv storage path is required")
)
