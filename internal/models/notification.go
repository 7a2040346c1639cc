package models

import (
	"time"
)

// InAppNotification is a message shown inside the app, stored per user.
type InAppNotification struct {
	ID             string               `json:"id" db:"id"`
	UserID         UserID               `json:"user_id" db:"user_id"`
	IdempotencyKey string               `json:"-" db:"idempotency_key"`
	EventType      string               `json:"event_type" db:"event_type"`
	Category       NotificationCategory `json:"category" db:"category"`
	Title          string               `json:"title" db:"title"`
	Body           string               `json:"body" db:"body"`
	DeepLink       DeepLink             `json:"deep_link,omitempty" db:"deep_link"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	ReadAt         *time.Time           `json:"read_at,omitempty" db:"read_at"`
}
