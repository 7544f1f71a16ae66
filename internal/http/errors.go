// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/stocktrack/inventory-service/internal/inventory"
	"github.com/stocktrack/inventory-service/internal/obs"
	"github.com/stocktrack/inventory-service/internal/store"
)

// apiError is the JSON error payload. Index is set for batch failures,
// Field for uniqueness conflicts.
type apiError struct {
	Message string `json:"message"`
	Index   *int   `json:"index,omitempty"`
	Field   string `json:"field,omitempty"`
}

// WriteMessage writes a plain {message} payload with the given status.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(apiError{Message: message})
}

// WriteError maps a tagged error to its status code and payload. Batch
// errors and uniqueness conflicts are client errors with a pointer to the
// failing entry or field; anything unrecognized is internal and surfaced
// without details.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var batchErr *inventory.BatchError
	var conflictErr *store.ConflictError
	switch {
	case errors.As(err, &batchErr):
		idx := batchErr.Index
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(apiError{Message: batchErr.Error(), Index: &idx})
	case errors.As(err, &conflictErr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(apiError{
			Message: fmt.Sprintf("A %s already exists with this %s", conflictErr.Entity, conflictErr.Field),
			Field:   conflictErr.Field,
		})
	case errors.Is(err, store.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, "Not found")
	default:
		obs.Logger.Error("internal_error",
			"error", err,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
		WriteMessage(w, http.StatusInternalServerError, "An unhandled error occurred")
	}
}
