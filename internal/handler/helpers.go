package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/boddenberg/pix-gateway-proxy/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Shared helper functions
// ============================================================

// NetworkErrorMessage is the error text of a 502 answer.
const NetworkErrorMessage = "Network error when contacting gateway"

type errorResponse struct {
	Error string `json:"error"`
}

type networkErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes data as the response body. Statuses that cannot carry a
// body (1xx, 204, 304) get the status line and headers only.
func writeJSON(w http.ResponseWriter, status int, data any) {
	if !bodyAllowed(status) {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

// pathID returns the {id} route segment decoded. chi matches on RawPath
// when the request carries escapes like %2F, and then hands back the
// segment still escaped.
func pathID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, nil
	}
	return url.PathUnescape(id)
}

// handleServiceError maps domain errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	var validation *domain.ErrValidation
	var configuration *domain.ErrConfiguration
	var network *domain.ErrNetwork

	switch {
	case errors.As(err, &validation):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, validation.Message)
	case errors.As(err, &configuration):
		logger.Error("gateway misconfigured", zap.Error(err))
		writeError(w, http.StatusInternalServerError, configuration.Message)
	case errors.As(err, &network):
		logger.Warn("gateway unreachable",
			zap.String("operation", network.Operation),
			zap.String("details", network.Details),
		)
		writeJSON(w, http.StatusBadGateway, networkErrorResponse{
			Error:   NetworkErrorMessage,
			Details: network.Details,
		})
	default:
		logger.Error("unexpected error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
