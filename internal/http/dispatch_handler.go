package http

import (
	"io"
	"net/http"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/session"
)

const maxActionBodySize = 1 << 20

type DispatchHandler struct {
	sessions *session.Manager
}

func NewDispatchHandler(sessions *session.Manager) *DispatchHandler {
	return &DispatchHandler{sessions: sessions}
}

// Dispatch applies one raw action envelope to the session's container and
// returns the resulting state.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxActionBodySize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "invalid_request", "request body too large")
		return
	}

	a, err := action.Decode(body)
	if err != nil {
		handleError(w, err)
		return
	}

	state := h.sessions.Get(r.Context(), getSessionID(r.Context())).Dispatch(a)
	respondJSON(w, http.StatusOK, toStateResponse(state.Cart, state.Users))
}

// GetState returns the session's whole state.
func (h *DispatchHandler) GetState(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.View(r.Context(), getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, toStateResponse(state.Cart, state.Users))
}

// EndSession forgets the session and its cached cart.
func (h *DispatchHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Drop(r.Context(), getSessionID(r.Context())); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
