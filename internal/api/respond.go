package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/lepinkainen/readersrealm/internal/catalog"
)

type errorBody struct {
	Error string `json:"error"`
}

// respondJSON writes v as a JSON body with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Debug("Failed to write JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

// respondCatalogError maps a catalog error to a status code. Details of
// upstream failures are logged, never sent.
func respondCatalogError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *catalog.NotFoundError
	switch {
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, nf.Message)
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, catalog.ErrUpstream):
		slog.Error("Upstream catalog failure", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, catalog.ErrUpstream.Error())
	case errors.Is(err, context.Canceled):
		slog.Debug("Request cancelled", "path", r.URL.Path)
	default:
		slog.Error("Request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
