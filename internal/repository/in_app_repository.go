package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/stanstork/notifications/internal/models"
)

const (
	defaultInAppLimit = 25
	maxInAppLimit     = 100
)

// InAppRepository stores in-app notifications per user.
type InAppRepository interface {
	// Create is idempotent on IdempotencyKey: a second call with the same key
	// returns the stored notification and created == false.
	Create(ctx context.Context, params CreateInAppParams) (notif models.InAppNotification, created bool, err error)
	ListRecent(ctx context.Context, userID models.UserID, limit int) ([]models.InAppNotification, error)
	MarkRead(ctx context.Context, userID models.UserID, notificationID string) (models.InAppNotification, error)
}

type CreateInAppParams struct {
	UserID         models.UserID
	IdempotencyKey string
	EventType      string
	Category       models.NotificationCategory
	Title          string
	Body           string
	DeepLink       models.DeepLink
}

type inAppRepository struct {
	db *sql.DB
}

func NewInAppRepository(db *sql.DB) InAppRepository {
	return &inAppRepository{db: db}
}

const inAppColumns = `id, user_id, idempotency_key, event_type, category, title, body, deep_link, created_at, read_at`

func (r *inAppRepository) Create(ctx context.Context, params CreateInAppParams) (models.InAppNotification, bool, error) {
	const insert = `
		INSERT INTO in_app_notifications (user_id, idempotency_key, event_type, category, title, body, deep_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (idempotency_key) DO NOTHING
		RETURNING ` + inAppColumns

	var deepLink interface{}
	if !params.DeepLink.IsNone() {
		deepLink = string(params.DeepLink)
	}

	row := r.db.QueryRowContext(ctx, insert,
		params.UserID, params.IdempotencyKey, params.EventType, params.Category,
		strings.TrimSpace(params.Title), strings.TrimSpace(params.Body), deepLink)
	notif, err := scanInApp(row)
	if err == nil {
		return notif, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.InAppNotification{}, false, storageErr("create in-app notification", err)
	}

	const existing = `SELECT ` + inAppColumns + ` FROM in_app_notifications WHERE idempotency_key = $1`
	notif, err = scanInApp(r.db.QueryRowContext(ctx, existing, params.IdempotencyKey))
	if err != nil {
		return models.InAppNotification{}, false, storageErr("load existing in-app notification", err)
	}
	return notif, false, nil
}

func (r *inAppRepository) ListRecent(ctx context.Context, userID models.UserID, limit int) ([]models.InAppNotification, error) {
	const query = `
		SELECT ` + inAppColumns + `
		FROM in_app_notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, normalizeLimit(limit))
	if err != nil {
		return nil, storageErr("list in-app notifications", err)
	}
	defer rows.Close()

	var notifications []models.InAppNotification
	for rows.Next() {
		notif, err := scanInApp(rows)
		if err != nil {
			return nil, storageErr("scan in-app notification", err)
		}
		notifications = append(notifications, notif)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list in-app notifications", err)
	}
	return notifications, nil
}

func (r *inAppRepository) MarkRead(ctx context.Context, userID models.UserID, notificationID string) (models.InAppNotification, error) {
	const query = `
		UPDATE in_app_notifications
		SET read_at = COALESCE(read_at, NOW())
		WHERE id = $1 AND user_id = $2
		RETURNING ` + inAppColumns
	notif, err := scanInApp(r.db.QueryRowContext(ctx, query, strings.TrimSpace(notificationID), userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.InAppNotification{}, ErrNotFound
		}
		return models.InAppNotification{}, storageErr("mark in-app notification read", err)
	}
	return notif, nil
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > maxInAppLimit {
		return defaultInAppLimit
	}
	return limit
}

func scanInApp(scanner interface {
	Scan(dest ...interface{}) error
}) (models.InAppNotification, error) {
	var (
		notif    models.InAppNotification
		deepLink sql.NullString
		readAt   sql.NullTime
	)

	if err := scanner.Scan(
		&notif.ID,
		&notif.UserID,
		&notif.IdempotencyKey,
		&notif.EventType,
		&notif.Category,
		&notif.Title,
		&notif.Body,
		&deepLink,
		&notif.CreatedAt,
		&readAt,
	); err != nil {
		return models.InAppNotification{}, err
	}

	if deepLink.Valid {
		notif.DeepLink = models.DeepLink(deepLink.String)
	}
	if readAt.Valid {
		t := readAt.Time
		notif.ReadAt = &t
	}

	return notif, nil
}
