package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/spinner/internal/adapters/http/wire"
	"github.com/okian/spinner/internal/adapters/repository"
	"github.com/okian/spinner/internal/domain/model"
	"github.com/okian/spinner/pkg/logger"
)

// SpinnersHandler serves the spinners collection of the signed-in user.
type SpinnersHandler struct {
	store  repository.Store
	logger logger.Logger
}

// NewSpinnersHandler creates a new spinners handler.
func NewSpinnersHandler(store repository.Store, l logger.Logger) *SpinnersHandler {
	return &SpinnersHandler{store: store, logger: logger.OrNop(l)}
}

// HandleList handles GET /items/spinners.
func (h *SpinnersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_spinners"
	owner := claimsFrom(r.Context()).Subject
	list, err := h.store.ListSpinners(r.Context(), owner)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	items := make([]wire.SpinnerItem, len(list))
	for i, s := range list {
		items[i] = wire.FromModel(s)
	}
	writeData(w, http.StatusOK, items)
}

// HandleGet handles GET /items/spinners/{id}.
func (h *SpinnersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_spinner"
	owner := claimsFrom(r.Context()).Subject
	s, err := h.store.GetSpinner(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromModel(s))
}

// HandleCreate handles POST /items/spinners.
func (h *SpinnersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_spinner"
	var item wire.SpinnerItem
	if err := decodeBody(w, r, &item); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, WrapKind(op, ErrBadRequest, err))
		return
	}
	cfg := item.ToModel()
	if err := validateSpinner(cfg); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, WrapKind(op, ErrBadRequest, err))
		return
	}
	owner := claimsFrom(r.Context()).Subject
	created, err := h.store.CreateSpinner(r.Context(), owner, cfg)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeData(w, http.StatusCreated, wire.FromModel(created))
}

// HandleUpdate handles PATCH /items/spinners/{id}.
func (h *SpinnersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_spinner"
	var patch wire.SpinnerPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, WrapKind(op, ErrBadRequest, err))
		return
	}
	owner := claimsFrom(r.Context()).Subject
	current, err := h.store.GetSpinner(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	next := patch.Apply(current)
	if err := validateSpinner(next); err != nil {
		writeError(w, http.StatusBadRequest, wire.CodeInvalidPayload, WrapKind(op, ErrBadRequest, err))
		return
	}
	updated, err := h.store.UpdateSpinner(r.Context(), owner, next)
	if err != nil {
		h.fail(w, r, op, err)
		return
	}
	writeData(w, http.StatusOK, wire.FromModel(updated))
}

// HandleDelete handles DELETE /items/spinners/{id}.
func (h *SpinnersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_spinner"
	owner := claimsFrom(r.Context()).Subject
	if err := h.store.DeleteSpinner(r.Context(), owner, r.PathValue("id")); err != nil {
		h.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SpinnersHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, wire.CodeNotFound, Wrap(op, err))
		return
	}
	h.logger.Error(r.Context(), "spinner storage failed", logger.String("op", op), logger.Error(err))
	writeError(w, http.StatusInternalServerError, wire.CodeInternal, Wrap(op, err))
}

// validateSpinner enforces what the engine needs; editors apply stricter rules.
func validateSpinner(cfg model.WheelConfiguration) error {
	switch {
	case strings.TrimSpace(cfg.Name) == "":
		return errors.New("name is required")
	case cfg.Duration <= 0:
		return errors.New("duration must be positive")
	case len(cfg.Segments) == 0:
		return errors.New("at least one segment is required")
	}
	for i, s := range cfg.Segments {
		if strings.TrimSpace(s.ID) == "" {
			return fmt.Errorf("segment %d: id is required", i)
		}
	}
	return nil
}
