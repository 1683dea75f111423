package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rmarrand/sponsorhub-backend/internal/domain"
	"github.com/rmarrand/sponsorhub-backend/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// actionResponse is the JSON envelope every action renders: the re-display
// dataset plus, for invalid outcomes, the field-to-code error map.
type actionResponse struct {
	Data   pipeline.Dataset  `json:"data"`
	Errors map[string]string `json:"errors,omitempty"`
}

// writeResult renders a pipeline outcome. okStatus is the status for the
// success case (200, or 201 for creations).
func writeResult(w http.ResponseWriter, res *pipeline.Result, okStatus int) {
	switch res.Status {
	case pipeline.StatusForbidden:
		writeError(w, http.StatusForbidden, "forbidden")
	case pipeline.StatusInvalid:
		writeJSON(w, http.StatusUnprocessableEntity, actionResponse{
			Data:   res.Dataset,
			Errors: res.Errors.Map(),
		})
	default:
		writeJSON(w, okStatus, actionResponse{Data: res.Dataset})
	}
}

// handleError maps infrastructure errors that escape the pipeline. Validation
// outcomes never arrive here; they are rendered from the result.
func handleError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict, retry the request")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	default:
		log.ErrorContext(r.Context(), "internal error", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
