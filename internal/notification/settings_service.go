package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/stanstork/notifications/internal/models"
	"github.com/stanstork/notifications/internal/repository"
)

const defaultPersistAttempts = 3

// SettingsService owns every mutation of notification settings. Each mutation
// is a read-modify-persist cycle; the record is returned only once persisted.
type SettingsService struct {
	repo     repository.SettingsRepository
	logger   zerolog.Logger
	attempts int
}

func NewSettingsService(repo repository.SettingsRepository, logger zerolog.Logger) *SettingsService {
	return &SettingsService{
		repo:     repo,
		logger:   logger.With().Str("component", "settings_service").Logger(),
		attempts: defaultPersistAttempts,
	}
}

// SettingsFor never fails because a record is missing; it synthesizes the
// all-enabled default instead.
func (s *SettingsService) SettingsFor(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.load(ctx, key)
}

func (s *SettingsService) EnableChannel(ctx context.Context, key models.SettingsKey, channel models.Channel) (*models.NotificationSettings, error) {
	return s.update(ctx, key, "enable_channel", func(ns *models.NotificationSettings) {
		ns.EnableChannel(channel)
	}, validChannel(channel))
}

func (s *SettingsService) DisableChannel(ctx context.Context, key models.SettingsKey, channel models.Channel) (*models.NotificationSettings, error) {
	return s.update(ctx, key, "disable_channel", func(ns *models.NotificationSettings) {
		ns.DisableChannel(channel)
	}, validChannel(channel))
}

func (s *SettingsService) EnableCategory(ctx context.Context, key models.SettingsKey, channel models.Channel, category models.NotificationCategory) (*models.NotificationSettings, error) {
	return s.update(ctx, key, "enable_category", func(ns *models.NotificationSettings) {
		ns.EnableCategory(channel, category)
	}, validChannel(channel), validCategory(category))
}

func (s *SettingsService) DisableCategory(ctx context.Context, key models.SettingsKey, channel models.Channel, category models.NotificationCategory) (*models.NotificationSettings, error) {
	return s.update(ctx, key, "disable_category", func(ns *models.NotificationSettings) {
		ns.DisableCategory(channel, category)
	}, validChannel(channel), validCategory(category))
}

// UpdateLocale stores the user's preferred locale in canonical BCP 47 form.
func (s *SettingsService) UpdateLocale(ctx context.Context, userID models.UserID, locale models.Locale) (*models.NotificationSettings, error) {
	tag, err := language.Parse(strings.TrimSpace(locale.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: locale %q: %v", ErrInvalidInput, locale, err)
	}
	return s.update(ctx, models.UserKey(userID), "update_locale", func(ns *models.NotificationSettings) {
		ns.UpdateLocale(models.Locale(tag.String()))
	})
}

func (s *SettingsService) AddPushDeviceToken(ctx context.Context, userID models.UserID, token string) (*models.NotificationSettings, error) {
	return s.update(ctx, models.UserKey(userID), "add_push_device_token", func(ns *models.NotificationSettings) {
		ns.AddPushDeviceToken(token)
	}, nonEmpty("push device token", token))
}

func (s *SettingsService) RemovePushDeviceToken(ctx context.Context, userID models.UserID, token string) (*models.NotificationSettings, error) {
	return s.update(ctx, models.UserKey(userID), "remove_push_device_token", func(ns *models.NotificationSettings) {
		ns.RemovePushDeviceToken(token)
	}, nonEmpty("push device token", token))
}

// RemovePushDeviceTokens drops every token in one persist. Used by the push
// executor when the provider reports tokens as no longer registered.
func (s *SettingsService) RemovePushDeviceTokens(ctx context.Context, userID models.UserID, tokens []string) (*models.NotificationSettings, error) {
	return s.update(ctx, models.UserKey(userID), "remove_push_device_tokens", func(ns *models.NotificationSettings) {
		for _, token := range tokens {
			ns.RemovePushDeviceToken(token)
		}
	})
}

func (s *SettingsService) UpdateEmailAddress(ctx context.Context, userID models.UserID, address string) (*models.NotificationSettings, error) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(address))
	if err != nil {
		return nil, fmt.Errorf("%w: email address %q: %v", ErrInvalidInput, address, err)
	}
	return s.update(ctx, models.UserKey(userID), "update_email_address", func(ns *models.NotificationSettings) {
		ns.UpdateEmailAddress(parsed.Address)
	})
}

func (s *SettingsService) RemoveEmailAddress(ctx context.Context, userID models.UserID) (*models.NotificationSettings, error) {
	return s.update(ctx, models.UserKey(userID), "remove_email_address", func(ns *models.NotificationSettings) {
		ns.RemoveEmailAddress()
	})
}

func (s *SettingsService) load(ctx context.Context, key models.SettingsKey) (*models.NotificationSettings, error) {
	ns, err := s.repo.Find(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return models.NewNotificationSettings(key), nil
	}
	if err != nil {
		return nil, err
	}
	return ns, nil
}

// update applies mutate to a private copy and persists it. A concurrent
// writer makes Persist fail with ErrConflict, in which case the whole cycle
// is replayed against the fresh record.
func (s *SettingsService) update(ctx context.Context, key models.SettingsKey, op string, mutate func(*models.NotificationSettings), checks ...error) (*models.NotificationSettings, error) {
	if err := key.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	for _, err := range checks {
		if err != nil {
			return nil, err
		}
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		current, err := s.load(ctx, key)
		if err != nil {
			return nil, err
		}
		next := current.Clone()
		mutate(next)

		err = s.repo.Persist(ctx, next)
		if err == nil {
			s.logger.Debug().
				Str("op", op).
				Str("key", key.String()).
				Int64("revision", next.Revision).
				Msg("settings updated")
			return next, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn().
			Str("op", op).
			Str("key", key.String()).
			Int("attempt", attempt).
			Msg("settings changed concurrently, retrying")
	}
	return nil, fmt.Errorf("%s %s: %w", op, key, lastErr)
}

func validChannel(channel models.Channel) error {
	if parsed, err := models.ParseChannel(string(channel)); err != nil || parsed != channel {
		return fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidChannel)
	}
	return nil
}

func validCategory(category models.NotificationCategory) error {
	if parsed, err := models.ParseCategory(string(category)); err != nil || parsed != category {
		return fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidCategory)
	}
	return nil
}

func nonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, field)
	}
	return nil
}
