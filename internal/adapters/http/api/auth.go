package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/adapters/repository"
	"github.com/okian/spinner/pkg/logger"
)

// AuthHandler handles login, logout and the current user.
type AuthHandler struct {
	store  repository.Store
	tokens *TokenIssuer
	logger logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(store repository.Store, tokens *TokenIssuer, l logger.Logger) *AuthHandler {
	return &AuthHandler{store: store, tokens: tokens, logger: logger.OrNop(l)}
}

// HandleLogin handles POST /auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	var req wire.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, NewKind(op, ErrBadRequest))
		return
	}
	user, err := h.store.VerifyPassword(r.Context(), req.Email, req.Password)
	if errors.Is(err, repository.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, wire.CodeInvalidCredentials, Wrap(op, err))
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "login lookup failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, wire.CodeInternal, Wrap(op, err))
		return
	}
	token, exp, err := h.tokens.Issue(user.ID, user.Email)
	if err != nil {
		h.logger.Error(r.Context(), "token issue failed", logger.Error(err))
		writeError(w, http.StatusInternalServerError, wire.CodeInternal, Wrap(op, err))
		return
	}
	h.logger.Info(r.Context(), "user logged in", logger.String("user_id", user.ID))
	writeData(w, http.StatusOK, wire.LoginData{
		AccessToken: token,
		Expires:     exp.Sub(h.tokens.now()).Milliseconds(),
	})
}

// HandleLogout handles POST /auth/logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.tokens.Revoke(claimsFrom(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe handles GET /users/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	const op = "api.users_me"
	claims := claimsFrom(r.Context())
	user, err := h.store.UserByID(r.Context(), claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, wire.CodeInvalidToken, WrapKind(op, ErrUnauthorized, err))
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, wire.CodeInternal, Wrap(op, err))
		return
	}
	writeData(w, http.StatusOK, wire.User{ID: user.ID, Email: user.Email})
}
