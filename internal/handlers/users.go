package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
)

type localeRequest struct {
	Locale string `json:"locale"`
}

type emailRequest struct {
	EmailAddress string `json:"email_address"`
}

type pushTokenRequest struct {
	Token string `json:"token"`
}

// UserHandler manages the contact data stored on user settings.
type UserHandler struct {
	service *notification.SettingsService
	logger  zerolog.Logger
}

func NewUserHandler(service *notification.SettingsService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("handler", "users").Logger(),
	}
}

func (h *UserHandler) UpdateLocale(w http.ResponseWriter, r *http.Request) {
	var req localeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, err := h.service.UpdateLocale(r.Context(), userID(r), models.Locale(req.Locale))
	h.respond(w, s, err, "Failed to update locale")
}

func (h *UserHandler) UpdateEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, err := h.service.UpdateEmailAddress(r.Context(), userID(r), req.EmailAddress)
	h.respond(w, s, err, "Failed to update email address")
}

func (h *UserHandler) RemoveEmail(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.RemoveEmailAddress(r.Context(), userID(r))
	h.respond(w, s, err, "Failed to remove email address")
}

func (h *UserHandler) AddPushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, err := h.service.AddPushDeviceToken(r.Context(), userID(r), req.Token)
	h.respond(w, s, err, "Failed to add push device token")
}

func (h *UserHandler) RemovePushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	s, err := h.service.RemovePushDeviceToken(r.Context(), userID(r), req.Token)
	h.respond(w, s, err, "Failed to remove push device token")
}

func (h *UserHandler) respond(w http.ResponseWriter, s *models.NotificationSettings, err error, msg string) {
	if err != nil {
		writeError(w, h.logger, err, msg)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func userID(r *http.Request) models.UserID {
	return models.UserID(mux.Vars(r)["id"])
}
