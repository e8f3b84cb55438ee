// Package client defines the contract every host environment implements for
// authentication and wheel configuration persistence.
//
// Expected failures never panic. Operations that can fail return one of the
// sentinel errors in this package, possibly wrapped; the sentinel's message
// is the text shown to the user.
package client

import (
	"context"

	"github.com/okian/spinner/internal/domain/model"
)

// Variant names used in logs and metrics.
const (
	VariantMemory    = "memory"
	VariantExtension = "extension"
	VariantREST      = "rest"
)

// Client is implemented by each host environment.
type Client interface {
	// GetAuthInfo never fails; it returns the unauthenticated state instead.
	GetAuthInfo(ctx context.Context) model.AuthState

	// Authenticate returns the unauthenticated state on bad credentials or
	// transport errors.
	Authenticate(ctx context.Context, email, password string) model.AuthState

	// Logout is best effort and clears local session markers.
	Logout(ctx context.Context)

	LoadConfigurations(ctx context.Context) ([]model.WheelConfiguration, error)
	LoadConfigurationByID(ctx context.Context, id string) (model.WheelConfiguration, error)

	// SaveConfiguration creates when cfg.ID is empty and returns the new id.
	// Updating an unknown id fails with ErrNotFound.
	SaveConfiguration(ctx context.Context, cfg model.WheelConfiguration) (string, error)

	DeleteConfiguration(ctx context.Context, id string) error

	// SetActiveConfiguration does not check that id exists.
	SetActiveConfiguration(ctx context.Context, id string) error
	GetActiveConfigurationID(ctx context.Context) (string, bool)

	GetEnvironmentConfig(ctx context.Context) model.EnvironmentConfig
}
