// Package handler exposes the folder hierarchy over HTTP. Handlers stay
// thin: decode, delegate to a service, translate the error.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"arbor/internal/domain"
	"arbor/internal/httputil"
)

// handleError translates a service error into an HTTP problem response.
// Unrecognized errors are logged and surface as an opaque 500.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) {
		httputil.RespondErrorWithExtras(w, conflictErr.StatusCode(), conflictErr.Message, map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		})
		return
	}

	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
		return
	}

	// Wrapped sentinels from the repository layer.
	switch {
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidOperation):
		httputil.RespondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// requireQuery returns the query parameter or writes a 400 and reports false
func requireQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := r.URL.Query().Get(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" query parameter is required")
		return "", false
	}
	return value, true
}
