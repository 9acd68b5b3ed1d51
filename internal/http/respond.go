package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_comics/internal/action"
	"github.com/fjod/go_comics/internal/gateway"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError converts domain and gateway errors to HTTP responses.
func handleError(w http.ResponseWriter, err error) {
	var statusErr *gateway.StatusError

	switch {
	case errors.Is(err, action.ErrInvalidAction), errors.Is(err, action.ErrUnknownAction):
		respondError(w, http.StatusBadRequest, "invalid_action", err.Error())
	case errors.Is(err, gateway.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "not_found", "user not found")
	case errors.Is(err, gateway.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "users api unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "users api timed out")
	case errors.As(err, &statusErr):
		if statusErr.StatusCode >= 400 && statusErr.StatusCode < 500 {
			respondError(w, statusErr.StatusCode, "upstream_rejected", statusErr.Message)
			return
		}
		respondError(w, http.StatusBadGateway, "upstream_error", "users api error")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
