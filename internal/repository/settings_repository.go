package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stanstork/notifications/internal/models"
)

// SettingsRepository loads and persists notification settings records.
type SettingsRepository interface {
	// Find returns ErrNotFound when no record exists for key.
	Find(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error)
	// Persist inserts or updates s atomically. It fails with ErrConflict if the
	// stored revision differs from s.Revision, and on success bumps
	// s.Revision and the timestamps.
	Persist(ctx context.Context, s *models.NotificationSettings) error
}

const settingsDocumentVersion = 1

// settingsDocument is the stored JSON form. Fields are added, never renamed;
// missing fields decode to safe zero values.
type settingsDocument struct {
	Version          int                                       `json:"version"`
	Channels         map[models.Channel]models.ChannelSettings `json:"channels,omitempty"`
	Locale           models.Locale                             `json:"locale,omitempty"`
	PushDeviceTokens []string                                  `json:"push_device_tokens,omitempty"`
	EmailAddress     string                                    `json:"email_address,omitempty"`
}

func encodeSettings(s *models.NotificationSettings) ([]byte, error) {
	return json.Marshal(settingsDocument{
		Version:          settingsDocumentVersion,
		Channels:         s.Channels,
		Locale:           s.Locale,
		PushDeviceTokens: s.PushDeviceTokens,
		EmailAddress:     s.EmailAddress,
	})
}

func decodeSettings(key models.SettingsKey, raw []byte) (*models.NotificationSettings, error) {
	var doc settingsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode settings %s: %w", key, err)
	}
	s := models.NewNotificationSettings(key)
	for ch, cs := range doc.Channels {
		s.Channels[ch] = cs
	}
	s.Locale = doc.Locale
	s.PushDeviceTokens = doc.PushDeviceTokens
	s.EmailAddress = doc.EmailAddress
	return s, nil
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Find(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error) {
	const query = `
		SELECT revision, document, created_at, updated_at
		FROM notification_settings
		WHERE scope = $1 AND owner_id = $2
	`
	var (
		revision         int64
		raw              []byte
		created, updated sql.NullTime
	)
	row := r.db.QueryRowContext(ctx, query, key.Scope, key.ID)
	if err := row.Scan(&revision, &raw, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, storageErr("find settings", err)
	}
	s, err := decodeSettings(key, raw)
	if err != nil {
		return nil, storageErr("find settings", err)
	}
	s.Revision = revision
	s.CreatedAt = created.Time
	s.UpdatedAt = updated.Time
	return s, nil
}

func (r *settingsRepository) Persist(ctx context.Context, s *models.NotificationSettings) error {
	doc, err := encodeSettings(s)
	if err != nil {
		return storageErr("encode settings", err)
	}

	var row *sql.Row
	if !s.IsPersisted() {
		const insert = `
			INSERT INTO notification_settings (scope, owner_id, revision, document)
			VALUES ($1, $2, 1, $3)
			ON CONFLICT (scope, owner_id) DO NOTHING
			RETURNING revision, created_at, updated_at
		`
		row = r.db.QueryRowContext(ctx, insert, s.Key.Scope, s.Key.ID, doc)
	} else {
		const update = `
			UPDATE notification_settings
			SET document = $3, revision = revision + 1, updated_at = NOW()
			WHERE scope = $1 AND owner_id = $2 AND revision = $4
			RETURNING revision, created_at, updated_at
		`
		row = r.db.QueryRowContext(ctx, update, s.Key.Scope, s.Key.ID, doc, s.Revision)
	}

	if err := row.Scan(&s.Revision, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrConflict
		}
		return storageErr("persist settings", err)
	}
	return nil
}
