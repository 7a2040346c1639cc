package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/repository"
)

var errBoom = errors.New("boom")

func translator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	return tr
}

// flakyRepo fails the next conflicts persists with ErrConflict and every call
// with failWith when set.
type flakyRepo struct {
	*repository.MemorySettingsRepository
	mu        sync.Mutex
	conflicts int
	failWith  error
	persists  int
}

func newFlakyRepo() *flakyRepo {
	return &flakyRepo{MemorySettingsRepository: repository.NewMemorySettingsRepository()}
}

func (r *flakyRepo) Find(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error) {
	r.mu.Lock()
	failWith := r.failWith
	r.mu.Unlock()
	if failWith != nil {
		return nil, failWith
	}
	return r.MemorySettingsRepository.Find(ctx, key)
}

func (r *flakyRepo) Persist(ctx context.Context, s *models.NotificationSettings) error {
	r.mu.Lock()
	r.persists++
	if r.failWith != nil {
		r.mu.Unlock()
		return r.failWith
	}
	if r.conflicts > 0 {
		r.conflicts--
		r.mu.Unlock()
		return repository.ErrConflict
	}
	r.mu.Unlock()
	return r.MemorySettingsRepository.Persist(ctx, s)
}

func storageFailure() error {
	return fmt.Errorf("%w: connection refused", repository.ErrStorage)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []notification.Job
	fail map[models.Channel]error
}

func (q *recordingQueue) Enqueue(_ context.Context, job notification.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if err := q.fail[job.Channel]; err != nil {
		return err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type fakePushSender struct {
	mu      sync.Mutex
	sent    []notification.PushMessage
	invalid []string
	err     error
}

func (s *fakePushSender) Send(_ context.Context, msg notification.PushMessage) (notification.PushResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return notification.PushResult{InvalidTokens: s.invalid}, s.err
	}
	s.sent = append(s.sent, msg)
	return notification.PushResult{InvalidTokens: s.invalid}, nil
}

type fakeEmailSender struct {
	mu   sync.Mutex
	sent []notification.EmailMessage
	err  error
}

func (s *fakeEmailSender) Send(_ context.Context, msg notification.EmailMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type failingDeduper struct{}

func (failingDeduper) Seen(context.Context, string) (bool, error) { return false, storageFailure() }
func (failingDeduper) Mark(context.Context, string) error         { return storageFailure() }

var nopLogger = zerolog.Nop()

func jsonRoundTrip(j notification.Job) (notification.Job, error) {
	raw, err := json.Marshal(j)
	if err != nil {
		return notification.Job{}, err
	}
	var out notification.Job
	err = json.Unmarshal(raw, &out)
	return out, err
}
