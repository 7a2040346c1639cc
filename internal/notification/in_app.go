package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/repository"
)

// InAppExecutor stores the notification for display inside the app. The job
// ID is the idempotency key, so a redelivered job finds the existing row.
type InAppExecutor struct {
	repo   repository.InAppRepository
	tr     *i18n.Translator
	logger zerolog.Logger
}

func NewInAppExecutor(repo repository.InAppRepository, tr *i18n.Translator, logger zerolog.Logger) *InAppExecutor {
	return &InAppExecutor{
		repo:   repo,
		tr:     tr,
		logger: logger.With().Str("executor", "in_app").Logger(),
	}
}

func (x *InAppExecutor) Channel() models.Channel { return models.ChannelInApp }

func (x *InAppExecutor) Deliver(ctx context.Context, d Delivery) error {
	msg := d.Event.RenderInApp(x.tr, d.Locale)
	notif, created, err := x.repo.Create(ctx, repository.CreateInAppParams{
		UserID:         d.Job.Recipient.UserID,
		IdempotencyKey: d.Job.ID,
		EventType:      string(d.Event.Type()),
		Category:       d.Event.Category(),
		Title:          msg.Title,
		Body:           msg.Body,
		DeepLink:       d.Event.DeepLink(),
	})
	if err != nil {
		return err
	}
	if !created {
		x.logger.Info().Str("job_id", d.Job.ID).Str("notification_id", notif.ID).Msg("in-app notification already stored")
	}
	return nil
}

// InAppService exposes a user's stored in-app notifications.
type InAppService struct {
	repo repository.InAppRepository
}

func NewInAppService(repo repository.InAppRepository) *InAppService {
	return &InAppService{repo: repo}
}

func (s *InAppService) ListRecent(ctx context.Context, userID models.UserID, limit int) ([]models.InAppNotification, error) {
	if err := (models.Recipient{UserID: userID}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.repo.ListRecent(ctx, userID, limit)
}

func (s *InAppService) MarkRead(ctx context.Context, userID models.UserID, notificationID string) (models.InAppNotification, error) {
	return s.repo.MarkRead(ctx, userID, notificationID)
}
