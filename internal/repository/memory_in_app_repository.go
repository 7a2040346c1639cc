package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/stanstork/notifications/internal/models"
)

// MemoryInAppRepository is an InAppRepository backed by process memory.
type MemoryInAppRepository struct {
	mu    sync.Mutex
	byID  map[string]models.InAppNotification
	byKey map[string]string
	now   func() time.Time
}

func NewMemoryInAppRepository() *MemoryInAppRepository {
	return &MemoryInAppRepository{
		byID:  make(map[string]models.InAppNotification),
		byKey: make(map[string]string),
		now:   time.Now,
	}
}

func (r *MemoryInAppRepository) Create(ctx context.Context, params CreateInAppParams) (models.InAppNotification, bool, error) {
	if err := ctx.Err(); err != nil {
		return models.InAppNotification{}, false, storageErr("create in-app notification", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[params.IdempotencyKey]; ok {
		return r.byID[id], false, nil
	}

	notif := models.InAppNotification{
		ID:             uuid.NewString(),
		UserID:         params.UserID,
		IdempotencyKey: params.IdempotencyKey,
		EventType:      params.EventType,
		Category:       params.Category,
		Title:          strings.TrimSpace(params.Title),
		Body:           strings.TrimSpace(params.Body),
		DeepLink:       params.DeepLink,
		CreatedAt:      r.now(),
	}
	r.byID[notif.ID] = notif
	r.byKey[params.IdempotencyKey] = notif.ID
	return notif, true, nil
}

func (r *MemoryInAppRepository) ListRecent(ctx context.Context, userID models.UserID, limit int) ([]models.InAppNotification, error) {
	if err := ctx.Err(); err != nil {
		return nil, storageErr("list in-app notifications", err)
	}

	r.mu.Lock()
	var out []models.InAppNotification
	for _, n := range r.byID {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit = normalizeLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryInAppRepository) MarkRead(ctx context.Context, userID models.UserID, notificationID string) (models.InAppNotification, error) {
	if err := ctx.Err(); err != nil {
		return models.InAppNotification{}, storageErr("mark in-app notification read", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.byID[strings.TrimSpace(notificationID)]
	if !ok || n.UserID != userID {
		return models.InAppNotification{}, ErrNotFound
	}
	if n.ReadAt == nil {
		now := r.now()
		n.ReadAt = &now
		r.byID[n.ID] = n
	}
	return n, nil
}
