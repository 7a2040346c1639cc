package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/repository"
)

func TestMemorySettingsRepositoryFindMissing(t *testing.T) {
	repo := repository.NewMemorySettingsRepository()
	_, err := repo.Find(context.Background(), models.UserKey("u1"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemorySettingsRepositoryPersistAndFind(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySettingsRepository()

	s := models.NewNotificationSettings(models.UserKey("u1"))
	s.DisableChannel(models.ChannelEmail)
	s.DisableCategory(models.ChannelPush, models.CategoryPrice)
	s.UpdateLocale("es")
	s.AddPushDeviceToken("tok-1")
	s.UpdateEmailAddress("ana@example.com")

	require.NoError(t, repo.Persist(ctx, s))
	assert.Equal(t, int64(1), s.Revision)
	assert.False(t, s.CreatedAt.IsZero())

	got, err := repo.Find(ctx, models.UserKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, s.Revision, got.Revision)
	assert.False(t, got.IsChannelEnabled(models.ChannelEmail))
	assert.False(t, got.ShouldSend(models.ChannelPush, models.CategoryPrice))
	assert.True(t, got.ShouldSend(models.ChannelPush, models.CategoryCircles))
	assert.Equal(t, models.Locale("es"), got.Locale)
	assert.Equal(t, []string{"tok-1"}, got.PushDeviceTokens)
	assert.Equal(t, "ana@example.com", got.EmailAddress)

	// Mutating the loaded copy must not leak into the store.
	got.EnableChannel(models.ChannelEmail)
	again, err := repo.Find(ctx, models.UserKey("u1"))
	require.NoError(t, err)
	assert.False(t, again.IsChannelEnabled(models.ChannelEmail))
}

func TestMemorySettingsRepositoryScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySettingsRepository()

	account := models.NewNotificationSettings(models.AccountKey("same-id"))
	account.DisableChannel(models.ChannelPush)
	require.NoError(t, repo.Persist(ctx, account))

	_, err := repo.Find(ctx, models.UserKey("same-id"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMemorySettingsRepositoryConflicts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemorySettingsRepository()
	key := models.UserKey("u1")

	first := models.NewNotificationSettings(key)
	require.NoError(t, repo.Persist(ctx, first))

	// A second fresh record for the same key loses the insert race.
	assert.ErrorIs(t, repo.Persist(ctx, models.NewNotificationSettings(key)), repository.ErrConflict)

	a, err := repo.Find(ctx, key)
	require.NoError(t, err)
	b, err := repo.Find(ctx, key)
	require.NoError(t, err)

	a.DisableChannel(models.ChannelPush)
	require.NoError(t, repo.Persist(ctx, a))
	assert.Equal(t, int64(2), a.Revision)

	b.DisableChannel(models.ChannelEmail)
	assert.ErrorIs(t, repo.Persist(ctx, b), repository.ErrConflict)
	assert.Equal(t, int64(1), b.Revision)
}

func TestMemorySettingsRepositoryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	repo := repository.NewMemorySettingsRepository()
	_, err := repo.Find(ctx, models.UserKey("u1"))
	assert.ErrorIs(t, err, repository.ErrStorage)
	assert.ErrorIs(t, repo.Persist(ctx, models.NewNotificationSettings(models.UserKey("u1"))), repository.ErrStorage)
}
