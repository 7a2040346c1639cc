package notification_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/notification"
	"github.com/stanstork/notifications/internal/repository"
)

type runnerFixture struct {
	settingsRepo *flakyRepo
	settings     *notification.SettingsService
	inApp        *repository.MemoryInAppRepository
	push         *fakePushSender
	email        *fakeEmailSender
	deduper      notification.Deduper
	runner       *notification.JobRunner
}

func newRunnerFixture(t *testing.T, tr *i18n.Translator) *runnerFixture {
	t.Helper()
	f := &runnerFixture{
		settingsRepo: newFlakyRepo(),
		inApp:        repository.NewMemoryInAppRepository(),
		push:         &fakePushSender{},
		email:        &fakeEmailSender{},
		deduper:      notification.NewMemoryDeduper(),
	}
	f.settings = notification.NewSettingsService(f.settingsRepo, nopLogger)
	f.build(tr)

	ctx := context.Background()
	_, err := f.settings.AddPushDeviceToken(ctx, "u1", "tok-1")
	require.NoError(t, err)
	_, err = f.settings.UpdateEmailAddress(ctx, "u1", "ana@example.com")
	require.NoError(t, err)
	return f
}

func (f *runnerFixture) build(tr *i18n.Translator) {
	f.runner = notification.NewJobRunner(f.settings, f.deduper, nopLogger,
		notification.NewPushExecutor(f.push, tr, f.settings, nopLogger),
		notification.NewEmailExecutor(f.email, tr, nopLogger),
		notification.NewInAppExecutor(f.inApp, tr, nopLogger),
	)
}

func job(channel models.Channel, e events.Event) notification.Job {
	return notification.NewJob("d-1", models.Recipient{UserID: "u1"}, channel, e, nil)
}

func requireJobError(t *testing.T, err error) *notification.JobError {
	t.Helper()
	var je *notification.JobError
	require.True(t, errors.As(err, &je), "expected *JobError, got %T: %v", err, err)
	return je
}

func TestRunDeliversEveryChannel(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	e := events.IdentityVerificationApproved{}

	for _, ch := range models.AllChannels {
		require.NoError(t, f.runner.Run(ctx, job(ch, e)), ch)
	}

	require.Len(t, f.push.sent, 1)
	assert.Equal(t, []string{"tok-1"}, f.push.sent[0].Tokens)
	assert.Equal(t, "identity_verification_approved", f.push.sent[0].Data["event_type"])

	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "ana@example.com", f.email.sent[0].To)
	assert.Equal(t, "d-1:u1:email", f.email.sent[0].Reference)
	assert.Contains(t, f.email.sent[0].HTMLBody, "<html")

	stored, err := f.inApp.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.CategoryAdminNotification, stored[0].Category)
}

func TestRunSkipsAlreadyDeliveredJob(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	j := job(models.ChannelPush, events.IdentityVerificationReviewStarted{})

	require.NoError(t, f.runner.Run(ctx, j))
	require.NoError(t, f.runner.Run(ctx, j))
	assert.Len(t, f.push.sent, 1)
}

func TestRunRechecksSettingsAtExecution(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	j := job(models.ChannelPush, events.CircleGrew{UserID: "u1", CircleType: events.CircleInner})

	_, err := f.settings.DisableCategory(ctx, models.UserKey("u1"), models.ChannelPush, models.CategoryCircles)
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(ctx, j))
	assert.Empty(t, f.push.sent)
}

func TestRunInAppIsIdempotentWithoutDeduper(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	j := job(models.ChannelInApp, events.IdentityVerificationReviewStarted{})

	require.NoError(t, f.runner.Run(ctx, j))
	// A fresh runner forgets deliveries, the repository still dedupes.
	f.deduper = notification.NewMemoryDeduper()
	f.build(translator(t))
	require.NoError(t, f.runner.Run(ctx, j))

	stored, err := f.inApp.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestRunSkipsMissingContactData(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	_, err := f.settings.RemoveEmailAddress(ctx, "u1")
	require.NoError(t, err)
	_, err = f.settings.RemovePushDeviceToken(ctx, "u1", "tok-1")
	require.NoError(t, err)

	require.NoError(t, f.runner.Run(ctx, job(models.ChannelEmail, events.IdentityVerificationApproved{})))
	require.NoError(t, f.runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))
	assert.Empty(t, f.email.sent)
	assert.Empty(t, f.push.sent)
}

func TestRunRemovesInvalidPushTokens(t *testing.T) {
	ctx := context.Background()
	f := newRunnerFixture(t, translator(t))
	f.push.invalid = []string{"tok-1"}

	require.NoError(t, f.runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))

	s, err := f.settings.SettingsFor(ctx, models.UserKey("u1"))
	require.NoError(t, err)
	assert.Empty(t, s.PushDeviceTokens)
}

func TestRunClassifiesFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("render error is fatal", func(t *testing.T) {
		tr, err := i18n.NewTranslator(map[string]map[string]any{
			"en": {"identity_verification_approved": map[string]any{"title": "Verified"}},
		})
		require.NoError(t, err)
		f := newRunnerFixture(t, tr)

		je := requireJobError(t, f.runner.Run(ctx, job(models.ChannelEmail, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindRender, je.Kind)
		assert.False(t, je.Retryable())
		assert.ErrorIs(t, je, events.ErrRender)
	})

	t.Run("storage error is retryable", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		f.settingsRepo.failWith = storageFailure()

		je := requireJobError(t, f.runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindStorage, je.Kind)
		assert.True(t, je.Retryable())
	})

	t.Run("dedupe ledger outage is retryable", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		f.deduper = failingDeduper{}
		f.build(translator(t))

		je := requireJobError(t, f.runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindStorage, je.Kind)
		assert.True(t, je.Retryable())
		assert.Empty(t, f.push.sent)
	})

	t.Run("transient executor error is retryable", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		f.push.err = errBoom

		je := requireJobError(t, f.runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindExecutor, je.Kind)
		assert.True(t, je.Retryable())
		assert.ErrorIs(t, je, errBoom)
	})

	t.Run("permanent executor error is fatal", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		f.email.err = notification.Permanent(errBoom)

		je := requireJobError(t, f.runner.Run(ctx, job(models.ChannelEmail, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindExecutor, je.Kind)
		assert.False(t, je.Retryable())
	})

	t.Run("invalid job is fatal", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		bad := job(models.ChannelPush, events.IdentityVerificationApproved{})
		bad.Payload = events.Payload{}

		je := requireJobError(t, f.runner.Run(ctx, bad))
		assert.Equal(t, notification.KindValidation, je.Kind)
		assert.False(t, je.Retryable())
	})

	t.Run("channel without executor is fatal", func(t *testing.T) {
		f := newRunnerFixture(t, translator(t))
		runner := notification.NewJobRunner(f.settings, nil, nopLogger)

		je := requireJobError(t, runner.Run(ctx, job(models.ChannelPush, events.IdentityVerificationApproved{})))
		assert.Equal(t, notification.KindValidation, je.Kind)
		assert.Equal(t, "d-1:u1:push", je.JobID)
	})
}

func TestJobSurvivesJSON(t *testing.T) {
	j := job(models.ChannelInApp, events.TransactionInfo{
		UserID:           "u1",
		TransactionType:  events.TxLightningPayment,
		SettlementAmount: models.Money{Currency: "BTC", MinorUnits: 21},
	})
	raw, err := jsonRoundTrip(j)
	require.NoError(t, err)
	assert.Equal(t, j.Event(), raw.Event())
	assert.Equal(t, j.ID, raw.ID)
	assert.True(t, j.EnqueuedAt.Equal(raw.EnqueuedAt))
}

func TestRunDeliversOneDispatchToEveryRecipient(t *testing.T) {
	ctx := context.Background()
	tr := translator(t)
	f := newRunnerFixture(t, tr)
	_, err := f.settings.AddPushDeviceToken(ctx, "u2", "tok-2")
	require.NoError(t, err)

	queue := &recordingQueue{}
	d := notification.NewDispatcher(f.settings, tr, queue, nopLogger)
	for _, user := range []models.UserID{"u1", "u2"} {
		_, err := d.Dispatch(ctx, notification.DispatchRequest{
			DispatchID: "evt-42",
			Recipient:  models.Recipient{UserID: user},
			Event:      events.IdentityVerificationReviewStarted{},
		})
		require.NoError(t, err)
	}

	require.Len(t, queue.jobs, 4)
	ids := make(map[string]struct{})
	for _, j := range queue.jobs {
		ids[j.ID] = struct{}{}
		require.NoError(t, f.runner.Run(ctx, j))
	}
	assert.Len(t, ids, 4)

	require.Len(t, f.push.sent, 2)
	assert.ElementsMatch(t, []string{"tok-1", "tok-2"}, []string{f.push.sent[0].Tokens[0], f.push.sent[1].Tokens[0]})
	for _, user := range []models.UserID{"u1", "u2"} {
		stored, err := f.inApp.ListRecent(ctx, user, 10)
		require.NoError(t, err)
		assert.Len(t, stored, 1, user)
	}
}
