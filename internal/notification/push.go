package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/stanstork/notifications/internal/config"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

type PushMessage struct {
	Tokens   []string
	Title    string
	Body     string
	DeepLink models.DeepLink
	Data     map[string]string
}

// PushResult lists tokens the provider rejected as unregistered.
type PushResult struct {
	InvalidTokens []string
}

type PushSender interface {
	Send(ctx context.Context, msg PushMessage) (PushResult, error)
}

type PushExecutor struct {
	sender   PushSender
	tr       *i18n.Translator
	settings *SettingsService
	logger   zerolog.Logger
}

func NewPushExecutor(sender PushSender, tr *i18n.Translator, settings *SettingsService, logger zerolog.Logger) *PushExecutor {
	return &PushExecutor{
		sender:   sender,
		tr:       tr,
		settings: settings,
		logger:   logger.With().Str("executor", "push").Logger(),
	}
}

func (x *PushExecutor) Channel() models.Channel { return models.ChannelPush }

func (x *PushExecutor) Deliver(ctx context.Context, d Delivery) error {
	if len(d.User.PushDeviceTokens) == 0 {
		x.logger.Debug().Str("job_id", d.Job.ID).Msg("recipient has no push device tokens")
		return nil
	}

	msg := d.Event.RenderPush(x.tr, d.Locale)
	data := map[string]string{
		"event_type": string(d.Event.Type()),
		"category":   string(d.Event.Category()),
	}
	if link := d.Event.DeepLink(); !link.IsNone() {
		data["deep_link"] = string(link)
	}

	res, err := x.sender.Send(ctx, PushMessage{
		Tokens:   d.User.PushDeviceTokens,
		Title:    msg.Title,
		Body:     msg.Body,
		DeepLink: d.Event.DeepLink(),
		Data:     data,
	})
	if len(res.InvalidTokens) > 0 {
		x.removeInvalidTokens(ctx, d, res.InvalidTokens)
	}
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	return nil
}

// removeInvalidTokens is best effort: the next delivery retries the removal.
func (x *PushExecutor) removeInvalidTokens(ctx context.Context, d Delivery, tokens []string) {
	if _, err := x.settings.RemovePushDeviceTokens(ctx, d.Job.Recipient.UserID, tokens); err != nil {
		x.logger.Warn().Err(err).Str("job_id", d.Job.ID).Msg("failed to remove invalid push device tokens")
		return
	}
	x.logger.Info().
		Str("job_id", d.Job.ID).
		Int("removed", len(tokens)).
		Msg("removed invalid push device tokens")
}

// FirebaseSender is the Firebase Cloud Messaging adapter. Delivery is logged
// only and no token is ever reported invalid.
// TODO: send through the FCM HTTP v1 API and map UNREGISTERED responses to
// PushResult.InvalidTokens.
type FirebaseSender struct {
	enabled   bool
	projectID string
	logger    zerolog.Logger
}

func NewFirebaseSender(cfg config.FirebaseConfig, logger zerolog.Logger) *FirebaseSender {
	return &FirebaseSender{
		enabled:   cfg.Enabled && cfg.ProjectID != "",
		projectID: cfg.ProjectID,
		logger:    logger.With().Str("sender", "firebase").Logger(),
	}
}

func (s *FirebaseSender) Send(_ context.Context, msg PushMessage) (PushResult, error) {
	if !s.enabled {
		return PushResult{}, nil
	}
	s.logger.Info().
		Str("project_id", s.projectID).
		Int("tokens", len(msg.Tokens)).
		Str("title", msg.Title).
		Str("deep_link", string(msg.DeepLink)).
		Msg("firebase push dispatched (mock)")
	return PushResult{}, nil
}

func (s *FirebaseSender) String() string {
	if !s.enabled {
		return "FirebaseSender(disabled)"
	}
	return fmt.Sprintf("FirebaseSender(project=%s)", s.projectID)
}
