package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/catalog"
	"github.com/fjod/go_comics/internal/session"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	catalog  *catalog.Catalog
	sessions *session.Manager
}

func NewCartHandler(c *catalog.Catalog, sessions *session.Manager) *CartHandler {
	return &CartHandler{catalog: c, sessions: sessions}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.View(r.Context(), getSessionID(r.Context()))
	respondJSON(w, http.StatusOK, toCartResponse(state.Cart))
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	add, err := action.NewAddToCart(req.ID)
	if err != nil {
		handleError(w, err)
		return
	}

	if _, ok := h.catalog.Item(req.ID); !ok {
		respondError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	st := h.sessions.Get(r.Context(), getSessionID(r.Context()))
	state := st.Dispatch(add)
	respondJSON(w, http.StatusOK, toCartResponse(state.Cart))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.dispatchForItem(w, r, func(id int64) (action.Action, error) {
		return action.NewRemoveFromCart(id)
	})
}

func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.dispatchForItem(w, r, func(id int64) (action.Action, error) {
		return action.NewIncrementQuantity(id)
	})
}

func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.dispatchForItem(w, r, func(id int64) (action.Action, error) {
		return action.NewDecrementQuantity(id)
	})
}

func (h *CartHandler) SetShipping(w http.ResponseWriter, r *http.Request) {
	var req ShippingRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Applied == nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "applied is required")
		return
	}

	st := h.sessions.Get(r.Context(), getSessionID(r.Context()))
	state := st.Dispatch(action.NewSetShipping(*req.Applied))
	respondJSON(w, http.StatusOK, toCartResponse(state.Cart))
}

// dispatchForItem applies the action built from the {id} path parameter.
// Ids that are not in the cart leave it unchanged.
func (h *CartHandler) dispatchForItem(w http.ResponseWriter, r *http.Request, build func(int64) (action.Action, error)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid product id")
		return
	}

	a, err := build(id)
	if err != nil {
		handleError(w, err)
		return
	}

	st := h.sessions.Get(r.Context(), getSessionID(r.Context()))
	state := st.Dispatch(a)
	respondJSON(w, http.StatusOK, toCartResponse(state.Cart))
}
