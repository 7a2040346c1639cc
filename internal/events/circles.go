package events

import (
	"fmt"
	"strconv"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

type CircleType string

const (
	CircleInner CircleType = "inner"
	CircleOuter CircleType = "outer"
)

func (c CircleType) validate() error {
	if c != CircleInner && c != CircleOuter {
		return fmt.Errorf("%w: circle type %q", ErrInvalidEvent, c)
	}
	return nil
}

func (c CircleType) localized(tr *i18n.Translator, locale models.Locale) string {
	return tr.T(locale.String(), "circle_type."+string(c))
}

type CircleTimeFrame string

const (
	TimeFrameMonth   CircleTimeFrame = "month"
	TimeFrameAllTime CircleTimeFrame = "all_time"
)

// CircleGrew is sent when someone joins one of the user's circles.
type CircleGrew struct {
	UserID              models.UserID `json:"user_id"`
	CircleType          CircleType    `json:"circle_type"`
	ThisMonthCircleSize uint32        `json:"this_month_circle_size"`
	AllTimeCircleSize   uint32        `json:"all_time_circle_size"`
}

func (CircleGrew) Type() EventType { return TypeCircleGrew }

func (CircleGrew) Category() models.NotificationCategory { return models.CategoryCircles }

func (CircleGrew) DeepLink() models.DeepLink { return models.DeepLinkCircles }

func (e CircleGrew) Validate() error {
	return e.CircleType.validate()
}

func (e CircleGrew) args(tr *i18n.Translator, locale models.Locale) []string {
	return []string{
		"circle_type", e.CircleType.localized(tr, locale),
		"this_month", strconv.FormatUint(uint64(e.ThisMonthCircleSize), 10),
		"all_time", strconv.FormatUint(uint64(e.AllTimeCircleSize), 10),
	}
}

func (e CircleGrew) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	args := e.args(tr, locale)
	return LocalizedPush{
		Title: tr.T(locale.String(), "circle_grew.title", args...),
		Body:  tr.T(locale.String(), "circle_grew.body", args...),
	}
}

func (CircleGrew) ShouldSendEmail() bool { return false }

func (e CircleGrew) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale, "circle_grew.title", "circle_grew.body", e.args(tr, locale)...)
}

func (CircleGrew) ShouldSendInApp() bool { return false }

func (e CircleGrew) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (CircleGrew) sealed() {}

// CircleThresholdReached is sent when a circle crosses a milestone size,
// either within the current month or over its whole lifetime.
type CircleThresholdReached struct {
	UserID     models.UserID   `json:"user_id"`
	CircleType CircleType      `json:"circle_type"`
	TimeFrame  CircleTimeFrame `json:"time_frame"`
	Threshold  uint32          `json:"threshold"`
}

func (CircleThresholdReached) Type() EventType { return TypeCircleThresholdReached }

func (CircleThresholdReached) Category() models.NotificationCategory {
	return models.CategoryCircles
}

func (CircleThresholdReached) DeepLink() models.DeepLink { return models.DeepLinkCircles }

func (e CircleThresholdReached) Validate() error {
	if err := e.CircleType.validate(); err != nil {
		return err
	}
	if e.TimeFrame != TimeFrameMonth && e.TimeFrame != TimeFrameAllTime {
		return fmt.Errorf("%w: time frame %q", ErrInvalidEvent, e.TimeFrame)
	}
	return nil
}

func (e CircleThresholdReached) bodyKey() string {
	return "circle_threshold_reached.body." + string(e.TimeFrame)
}

func (e CircleThresholdReached) args(tr *i18n.Translator, locale models.Locale) []string {
	return []string{
		"circle_type", e.CircleType.localized(tr, locale),
		"threshold", strconv.FormatUint(uint64(e.Threshold), 10),
	}
}

func (e CircleThresholdReached) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	args := e.args(tr, locale)
	return LocalizedPush{
		Title: tr.T(locale.String(), "circle_threshold_reached.title", args...),
		Body:  tr.T(locale.String(), e.bodyKey(), args...),
	}
}

func (CircleThresholdReached) ShouldSendEmail() bool { return false }

func (e CircleThresholdReached) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale, "circle_threshold_reached.title", e.bodyKey(), e.args(tr, locale)...)
}

func (CircleThresholdReached) ShouldSendInApp() bool { return false }

func (e CircleThresholdReached) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (CircleThresholdReached) sealed() {}
