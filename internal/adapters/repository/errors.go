package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrNotFound           = errors.New("record not found")
	ErrConflict           = errors.New("record already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmptyPath          = errors.New("storage path is required")
)
