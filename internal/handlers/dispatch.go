package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/middleware"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
)

type dispatchRequest struct {
	DispatchID string         `json:"dispatch_id"`
	AccountID  string         `json:"account_id"`
	UserID     string         `json:"user_id"`
	Event      events.Payload `json:"event"`
}

type DispatchHandler struct {
	dispatcher *notification.Dispatcher
	logger     zerolog.Logger
}

func NewDispatchHandler(dispatcher *notification.Dispatcher, logger zerolog.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatcher: dispatcher,
		logger:     logger.With().Str("handler", "dispatch").Logger(),
	}
}

func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: %w", notification.ErrInvalidInput, err), "Invalid request payload")
		return
	}

	tracing := map[string]string{}
	if id, ok := middleware.RequestIDFromContext(r.Context()); ok {
		tracing["request_id"] = id
	}

	result, err := h.dispatcher.Dispatch(r.Context(), notification.DispatchRequest{
		DispatchID:  req.DispatchID,
		Recipient:   models.Recipient{AccountID: models.AccountID(req.AccountID), UserID: models.UserID(req.UserID)},
		Event:       req.Event.Event,
		TracingData: tracing,
	})
	if err != nil {
		writeError(w, h.logger, err, "Failed to dispatch notification")
		return
	}
	writeJSON(w, http.StatusAccepted, result)
}
