package extension

import (
	"context"
	"crypto/subtle"

	"github.com/google/uuid"

	"github.com/okian/spinner/internal/domain/model"
)

// Authenticator verifies credentials on behalf of the extension. The REST
// client satisfies it, so the extension can sign in against the API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (model.AuthState, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, email, password string) (model.AuthState, error)

func (f AuthenticatorFunc) Login(ctx context.Context, email, password string) (model.AuthState, error) {
	return f(ctx, email, password)
}

// LocalAccount accepts exactly one email and password pair. The user id is
// derived from the email so it stays stable across restarts.
func LocalAccount(email, password string) Authenticator {
	userID := uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
	return AuthenticatorFunc(func(ctx context.Context, e, p string) (model.AuthState, error) {
		if err := ctx.Err(); err != nil {
			return model.Unauthenticated(), err
		}
		if e != email || subtle.ConstantTimeCompare([]byte(p), []byte(password)) != 1 {
			return model.Unauthenticated(), nil
		}
		return model.AuthState{
			IsAuthenticated: true,
			Email:           email,
			Token:           "local-" + uuid.NewString(),
			UserID:          userID,
		}, nil
	})
}
