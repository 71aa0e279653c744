package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avasseur/reelpress/internal/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// writeStageError maps a pipeline error to a transport status. The job is
// all-or-nothing from the caller's perspective: one error kind, one
// message, no partial results.
func writeStageError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidReference):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnresolvableID):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrAllStrategiesFailed),
		errors.Is(err, domain.ErrExtractionFailed),
		errors.Is(err, domain.ErrDirectFetchFailed):
		status = http.StatusBadGateway
	}
	writeError(w, status, domain.ErrorKind(err), err.Error())
}
