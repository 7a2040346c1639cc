package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
)

type SettingsHandler struct {
	service *notification.SettingsService
	logger  zerolog.Logger
}

func NewSettingsHandler(service *notification.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service: service,
		logger:  logger.With().Str("handler", "settings").Logger(),
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	key, err := settingsKey(r)
	if err != nil {
		writeError(w, h.logger, err, "Invalid settings key")
		return
	}
	s, err := h.service.SettingsFor(r.Context(), key)
	if err != nil {
		writeError(w, h.logger, err, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ToggleChannel serves .../channels/{channel}/{action} with action enable or disable.
func (h *SettingsHandler) ToggleChannel(w http.ResponseWriter, r *http.Request) {
	key, err := settingsKey(r)
	if err != nil {
		writeError(w, h.logger, err, "Invalid settings key")
		return
	}
	vars := mux.Vars(r)
	channel, err := models.ParseChannel(vars["channel"])
	if err != nil {
		writeError(w, h.logger, err, "Invalid channel")
		return
	}

	var s *models.NotificationSettings
	switch vars["action"] {
	case "enable":
		s, err = h.service.EnableChannel(r.Context(), key, channel)
	case "disable":
		s, err = h.service.DisableChannel(r.Context(), key, channel)
	default:
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "Failed to update channel")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// ToggleCategory serves .../channels/{channel}/categories/{category}/{action}.
func (h *SettingsHandler) ToggleCategory(w http.ResponseWriter, r *http.Request) {
	key, err := settingsKey(r)
	if err != nil {
		writeError(w, h.logger, err, "Invalid settings key")
		return
	}
	vars := mux.Vars(r)
	channel, err := models.ParseChannel(vars["channel"])
	if err != nil {
		writeError(w, h.logger, err, "Invalid channel")
		return
	}
	category, err := models.ParseCategory(vars["category"])
	if err != nil {
		writeError(w, h.logger, err, "Invalid category")
		return
	}

	var s *models.NotificationSettings
	switch vars["action"] {
	case "enable":
		s, err = h.service.EnableCategory(r.Context(), key, channel, category)
	case "disable":
		s, err = h.service.DisableCategory(r.Context(), key, channel, category)
	default:
		http.Error(w, "Unknown action", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, h.logger, err, "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func settingsKey(r *http.Request) (models.SettingsKey, error) {
	vars := mux.Vars(r)
	scope, err := models.ParseScope(vars["scope"])
	if err != nil {
		return models.SettingsKey{}, err
	}
	key := models.SettingsKey{Scope: scope, ID: vars["id"]}
	return key, key.Validate()
}
