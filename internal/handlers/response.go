package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/repository"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, notification.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidChannel),
		errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrInvalidScope),
		errors.Is(err, events.ErrInvalidEvent),
		errors.Is(err, events.ErrUnknownEventType):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides internal error details from the caller; client errors are
// echoed back since they describe the caller's own input.
func writeError(w http.ResponseWriter, logger zerolog.Logger, err error, msg string) {
	status := errorStatus(err)
	body := map[string]string{"error": msg}
	if status < http.StatusInternalServerError {
		body["detail"] = err.Error()
		logger.Warn().Err(err).Int("status", status).Msg(msg)
	} else {
		logger.Error().Err(err).Int("status", status).Msg(msg)
	}
	writeJSON(w, status, body)
}
