package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/stanstork/notifications/internal/handlers"
)

type Handlers struct {
	Settings      *handlers.SettingsHandler
	Users         *handlers.UserHandler
	Notifications *handlers.NotificationHandler
	Dispatch      *handlers.DispatchHandler
}

// NewRouter sets up the API routes
func NewRouter(h Handlers) *mux.Router {
	router := mux.NewRouter()

	// Health check route
	router.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	settings := api.PathPrefix("/settings/{scope}/{id}").Subrouter()
	settings.HandleFunc("", h.Settings.Get).Methods(http.MethodGet)
	settings.HandleFunc("/channels/{channel}/{action:enable|disable}", h.Settings.ToggleChannel).Methods(http.MethodPost)
	settings.HandleFunc("/channels/{channel}/categories/{category}/{action:enable|disable}", h.Settings.ToggleCategory).Methods(http.MethodPost)

	users := api.PathPrefix("/users/{id}").Subrouter()
	users.HandleFunc("/locale", h.Users.UpdateLocale).Methods(http.MethodPut)
	users.HandleFunc("/email", h.Users.UpdateEmail).Methods(http.MethodPut)
	users.HandleFunc("/email", h.Users.RemoveEmail).Methods(http.MethodDelete)
	users.HandleFunc("/push-tokens", h.Users.AddPushToken).Methods(http.MethodPost)
	users.HandleFunc("/push-tokens", h.Users.RemovePushToken).Methods(http.MethodDelete)
	users.HandleFunc("/notifications", h.Notifications.List).Methods(http.MethodGet)
	users.HandleFunc("/notifications/{notificationID}/read", h.Notifications.MarkRead).Methods(http.MethodPost)

	api.HandleFunc("/dispatch", h.Dispatch.Dispatch).Methods(http.MethodPost)

	return router
}
