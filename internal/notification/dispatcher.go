package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

// Enqueuer hands a job to the execution substrate. Enqueueing a job whose ID
// is already known must succeed without creating a second execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, job Job) error
}

type DispatchRequest struct {
	// DispatchID makes a retried dispatch idempotent. Generated when empty.
	DispatchID  string
	Recipient   models.Recipient
	Event       events.Event
	TracingData map[string]string
}

type DispatchResult struct {
	DispatchID string   `json:"dispatch_id"`
	Plan       SendPlan `json:"plan"`
	JobIDs     []string `json:"job_ids"`
}

type Dispatcher struct {
	settings *SettingsService
	tr       *i18n.Translator
	queue    Enqueuer
	logger   zerolog.Logger
}

func NewDispatcher(settings *SettingsService, tr *i18n.Translator, queue Enqueuer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		tr:       tr,
		queue:    queue,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Dispatch plans the event for the recipient and enqueues one job per planned
// channel. A failed enqueue does not stop the remaining channels; the joined
// error reports every failure and JobIDs lists what was enqueued.
func (d *Dispatcher) Dispatch(ctx context.Context, req DispatchRequest) (DispatchResult, error) {
	if req.Event == nil {
		return DispatchResult{}, fmt.Errorf("%w: event is required", ErrInvalidInput)
	}
	if err := req.Recipient.Validate(); err != nil {
		return DispatchResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := req.Event.Validate(); err != nil {
		return DispatchResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	account, user, err := d.recipientSettings(ctx, req.Recipient)
	if err != nil {
		return DispatchResult{}, err
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = uuid.NewString()
	}
	result := DispatchResult{
		DispatchID: dispatchID,
		Plan:       Plan(d.tr, req.Event, account, user, user.Locale),
	}

	log := d.logger.With().
		Str("dispatch_id", dispatchID).
		Str("event_type", string(req.Event.Type())).
		Str("user_id", string(req.Recipient.UserID)).
		Logger()

	var errs []error
	for _, entry := range result.Plan.Entries {
		if entry.RenderError != "" {
			log.Warn().Str("channel", string(entry.Channel)).Str("render_error", entry.RenderError).
				Msg("message does not render, job will fail")
		}
		job := NewJob(dispatchID, req.Recipient, entry.Channel, req.Event, req.TracingData)
		if err := d.queue.Enqueue(ctx, job); err != nil {
			log.Error().Err(err).Str("job_id", job.ID).Msg("failed to enqueue notification job")
			errs = append(errs, fmt.Errorf("enqueue %s: %w", job.ID, err))
			continue
		}
		result.JobIDs = append(result.JobIDs, job.ID)
	}

	log.Info().
		Interface("channels", result.Plan.Channels()).
		Int("jobs", len(result.JobIDs)).
		Msg("notification dispatched")
	return result, errors.Join(errs...)
}

// recipientSettings loads the account record, when the recipient has an
// account, and the user record. Missing records come back as defaults.
func (d *Dispatcher) recipientSettings(ctx context.Context, r models.Recipient) (account, user *models.NotificationSettings, err error) {
	if strings.TrimSpace(string(r.AccountID)) != "" {
		if account, err = d.settings.SettingsFor(ctx, models.AccountKey(r.AccountID)); err != nil {
			return nil, nil, err
		}
	}
	if user, err = d.settings.SettingsFor(ctx, models.UserKey(r.UserID)); err != nil {
		return nil, nil, err
	}
	return account, user, nil
}
