package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_comics/internal/service"
	"github.com/fjod/go_comics/internal/session"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	sessions *session.Manager
	actions  *service.UserActions
	timeout  time.Duration
}

const defaultUpstreamTimeout = 10 * time.Second

func NewUserHandler(sessions *session.Manager, actions *service.UserActions, timeout time.Duration) *UserHandler {
	if timeout <= 0 {
		timeout = defaultUpstreamTimeout
	}
	return &UserHandler{
		sessions: sessions,
		actions:  actions,
		timeout:  timeout,
	}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := chi.URLParam(r, "id")
	st := h.sessions.Get(ctx, getSessionID(ctx))
	if err := h.actions.FetchUser(ctx, st, id); err != nil {
		handleError(w, err)
		return
	}

	user, ok := st.State().Users.User(id)
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "user not found")
		return
	}
	respondJSON(w, http.StatusOK, toUserDTO(user))
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	st := h.sessions.Get(ctx, getSessionID(ctx))
	created, err := h.actions.SaveUser(ctx, st, req.toUser(""))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserDTO(created))
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	st := h.sessions.Get(ctx, getSessionID(ctx))
	updated, err := h.actions.SaveUser(ctx, st, req.toUser(chi.URLParam(r, "id")))
	if err != nil {
		handleError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserDTO(updated))
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	st := h.sessions.Get(ctx, getSessionID(ctx))
	if err := h.actions.DeleteUser(ctx, st, chi.URLParam(r, "id")); err != nil {
		handleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGroup lists a group's members. Ids associated before their record was
// loaded appear in UserIDs only.
func (h *UserHandler) GetGroup(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	users := h.sessions.View(r.Context(), getSessionID(r.Context())).Users

	ids := users.Group(key)
	resp := GroupResponse{
		GroupKey: key,
		UserIDs:  ids,
		Users:    make([]UserDTO, 0, len(ids)),
	}
	if resp.UserIDs == nil {
		resp.UserIDs = []string{}
	}
	for _, id := range ids {
		if user, ok := users.User(id); ok {
			resp.Users = append(resp.Users, toUserDTO(user))
		}
	}
	respondJSON(w, http.StatusOK, resp)
}
