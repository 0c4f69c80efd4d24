package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/presshub/presshub/internal/domain"
	"github.com/presshub/presshub/internal/scheduler"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// mapError translates domain sentinel errors to HTTP status codes.
// All mapping lives here so individual handlers stay concise.
func mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrSlugTaken),
		errors.Is(err, domain.ErrRevisionMismatch),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, scheduler.ErrPassInProgress):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidTitle),
		errors.Is(err, domain.ErrInvalidSlug),
		errors.Is(err, domain.ErrInvalidBody),
		errors.Is(err, domain.ErrPublishAtRequired),
		errors.Is(err, domain.ErrPublishAtInPast):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
