// Package handlers maps HTTP requests onto the application services.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/bbthechange/hangoutsBackend-sub012/pkg/errors"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// respondAppError maps the application error taxonomy onto HTTP statuses.
// Unknown errors become opaque 500s so internals never leak.
func respondAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if appErr := errors.GetAppError(err); appErr != nil {
		if appErr.HTTPStatus >= 500 {
			logger.Error("request failed", zap.Error(err))
			respondJSON(w, appErr.HTTPStatus, errorResponse{Error: "Internal server error"})
			return
		}
		respondJSON(w, appErr.HTTPStatus, errorResponse{Error: appErr.Message, Code: appErr.Code})
		return
	}
	logger.Error("request failed", zap.Error(err))
	respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal server error"})
}
