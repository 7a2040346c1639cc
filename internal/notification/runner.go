package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/models"
)

// Delivery is what an executor needs to send one job: the decoded event, the
// recipient's user settings as of execution time and the resolved locale.
type Delivery struct {
	Job    Job
	Event  events.Event
	User   *models.NotificationSettings
	Locale models.Locale
}

// Executor delivers a job on one channel. Implementations must be idempotent
// per job ID and wrap rejections that retrying cannot fix with Permanent.
type Executor interface {
	Channel() models.Channel
	Deliver(ctx context.Context, d Delivery) error
}

// JobRunner executes jobs handed over by the substrate.
type JobRunner struct {
	settings  *SettingsService
	deduper   Deduper
	executors map[models.Channel]Executor
	logger    zerolog.Logger
}

func NewJobRunner(settings *SettingsService, deduper Deduper, logger zerolog.Logger, executors ...Executor) *JobRunner {
	byChannel := make(map[models.Channel]Executor, len(executors))
	for _, ex := range executors {
		if ex != nil {
			byChannel[ex.Channel()] = ex
		}
	}
	if deduper == nil {
		deduper = NewMemoryDeduper()
	}
	return &JobRunner{
		settings:  settings,
		deduper:   deduper,
		executors: byChannel,
		logger:    logger.With().Str("component", "job_runner").Logger(),
	}
}

// Run executes one job. The returned error is always a *JobError so the
// caller can ask whether it is worth retrying.
func (r *JobRunner) Run(ctx context.Context, job Job) error {
	log := r.logger.With().
		Str("job_id", job.ID).
		Str("dispatch_id", job.DispatchID).
		Str("channel", string(job.Channel)).
		Fields(tracingFields(job.TracingData)).
		Logger()

	if err := r.run(ctx, job, log); err != nil {
		je := classify(job, err)
		log.Error().Err(je.Err).
			Str("kind", string(je.Kind)).
			Bool("retryable", je.Retryable()).
			Msg("notification job failed")
		return je
	}
	return nil
}

func (r *JobRunner) run(ctx context.Context, job Job, log zerolog.Logger) error {
	if err := job.Validate(); err != nil {
		return err
	}
	executor, ok := r.executors[job.Channel]
	if !ok {
		return fmt.Errorf("%w: no executor for channel %q", ErrInvalidInput, job.Channel)
	}

	seen, err := r.deduper.Seen(ctx, job.ID)
	if err != nil {
		return err
	}
	if seen {
		log.Info().Msg("job already delivered, skipping")
		return nil
	}

	e := job.Event()
	var account *models.NotificationSettings
	if job.Recipient.AccountID != "" {
		if account, err = r.settings.SettingsFor(ctx, models.AccountKey(job.Recipient.AccountID)); err != nil {
			return err
		}
	}
	user, err := r.settings.SettingsFor(ctx, models.UserKey(job.Recipient.UserID))
	if err != nil {
		return err
	}
	if !Allowed(e, account, user, job.Channel) {
		log.Info().Msg("channel no longer allowed by settings, skipping")
		return nil
	}

	err = executor.Deliver(ctx, Delivery{Job: job, Event: e, User: user, Locale: user.Locale})
	if err != nil {
		return err
	}

	if err := r.deduper.Mark(ctx, job.ID); err != nil {
		log.Warn().Err(err).Msg("delivered but failed to record delivery")
	}
	log.Info().Str("event_type", string(e.Type())).Msg("notification delivered")
	return nil
}

func tracingFields(data map[string]string) map[string]interface{} {
	fields := make(map[string]interface{}, len(data))
	for k, v := range data {
		fields["trace."+k] = v
	}
	return fields
}
