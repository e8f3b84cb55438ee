package repository

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithBcryptCost sets the password hashing cost. Values outside bcrypt's
// accepted range are ignored.
func WithBcryptCost(cost int) Option {
	return func(s *SQLiteStore) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.bcryptCost = cost
		}
	}
}

// WithNow overrides the timestamp source.
func WithNow(now func() time.Time) Option {
	return func(s *SQLiteStore) {
		if now != nil {
			s.now = now
		}
	}
}
