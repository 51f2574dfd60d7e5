package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/equimeter/internal/contracts"
	"github.com/wonny/equimeter/pkg/logger"
)

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps the error taxonomy onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInsufficientData), errors.Is(err, contracts.ErrNotCalculable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure logs err and answers with the mapped status and a fixed message
func respondFailure(w http.ResponseWriter, log *logger.Logger, err error, message string) {
	status := statusFor(err)
	entry := log.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	respondJSON(w, status, map[string]string{
		"error":  message,
		"reason": contracts.Reason(err),
	})
}

// symbolParam reads {symbol} from the path or ?symbol= from the query
func symbolParam(r *http.Request) string {
	if s := mux.Vars(r)["symbol"]; s != "" {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(r.URL.Query().Get("symbol"))
}

// requireSymbol writes a 400 and returns false when no symbol was given
func requireSymbol(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := symbolParam(r)
	if symbol == "" {
		respondError(w, http.StatusBadRequest, "Symbol is required")
		return "", false
	}
	return symbol, true
}
