package repository

import (
	"context"
	"sync"
	"time"

	"github.com/stanstork/notifications/internal/models"
)

// MemorySettingsRepository keeps settings in process memory. It stores the
// encoded document, like the Postgres repository, so callers never share
// mutable state with the store.
type MemorySettingsRepository struct {
	mu      sync.Mutex
	records map[models.SettingsKey]memorySettingsRecord
	now     func() time.Time
}

type memorySettingsRecord struct {
	revision  int64
	document  []byte
	createdAt time.Time
	updatedAt time.Time
}

func NewMemorySettingsRepository() *MemorySettingsRepository {
	return &MemorySettingsRepository{
		records: make(map[models.SettingsKey]memorySettingsRecord),
		now:     time.Now,
	}
}

func (r *MemorySettingsRepository) Find(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("find settings", err)
	}
	r.mu.Lock()
	rec, ok := r.records[key]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	s, err := decodeSettings(key, rec.document)
	if err != nil {
		return nil, storageErr("find settings", err)
	}
	s.Revision = rec.revision
	s.CreatedAt = rec.createdAt
	s.UpdatedAt = rec.updatedAt
	return s, nil
}

func (r *MemorySettingsRepository) Persist(ctx context.Context, s *models.NotificationSettings) error {
	if err := ctx.Err(); err != nil {
		return storageErr("persist settings", err)
	}
	doc, err := encodeSettings(s)
	if err != nil {
		return storageErr("encode settings", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[s.Key]
	switch {
	case !s.IsPersisted() && exists:
		return ErrConflict
	case s.IsPersisted() && (!exists || current.revision != s.Revision):
		return ErrConflict
	}

	now := r.now()
	rec := memorySettingsRecord{
		revision:  current.revision + 1,
		document:  doc,
		createdAt: current.createdAt,
		updatedAt: now,
	}
	if !exists {
		rec.createdAt = now
	}
	r.records[s.Key] = rec

	s.Revision = rec.revision
	s.CreatedAt = rec.createdAt
	s.UpdatedAt = rec.updatedAt
	return nil
}
