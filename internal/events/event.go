// Package events defines the closed set of notification events. Each variant
// knows its category, deep link, which channels it supports and how to render
// itself for a locale. Dispatch code never switches on the variant: all
// variant-specific policy lives behind the Event interface.
package events

import (
	"errors"
	"fmt"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

var (
	// ErrRender marks a structurally missing locale resource. It is a data
	// defect and never transient.
	ErrRender           = errors.New("render error")
	ErrUnknownEventType = errors.New("unknown notification event type")
	ErrInvalidEvent     = errors.New("invalid notification event")
)

// EventType is the stable wire discriminator of a variant.
type EventType string

const (
	TypeCircleGrew                        EventType = "circle_grew"
	TypeCircleThresholdReached            EventType = "circle_threshold_reached"
	TypeIdentityVerificationApproved      EventType = "identity_verification_approved"
	TypeIdentityVerificationDeclined      EventType = "identity_verification_declined"
	TypeIdentityVerificationReviewStarted EventType = "identity_verification_review_started"
	TypeTransactionInfo                   EventType = "transaction_info"
	TypePriceChanged                      EventType = "price_changed"
)

// AllEventTypes lists every variant. Decode must handle each of them.
var AllEventTypes = []EventType{
	TypeCircleGrew,
	TypeCircleThresholdReached,
	TypeIdentityVerificationApproved,
	TypeIdentityVerificationDeclined,
	TypeIdentityVerificationReviewStarted,
	TypeTransactionInfo,
	TypePriceChanged,
}

type LocalizedPush struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// LocalizedEmail carries an HTML body.
type LocalizedEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type LocalizedInApp struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Event is implemented only by the variants in this package.
type Event interface {
	Type() EventType
	Category() models.NotificationCategory
	DeepLink() models.DeepLink
	Validate() error

	// RenderPush never fails; missing translations fall back to the
	// default locale.
	RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush

	ShouldSendEmail() bool
	// RenderEmail fails with ErrRender only if a required resource is absent
	// from both the requested and the default locale.
	RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error)

	ShouldSendInApp() bool
	RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp

	sealed()
}

// SupportsChannel reports the event's own static opt-in for a channel. Push
// has no event level opt-out.
func SupportsChannel(e Event, channel models.Channel) bool {
	switch channel {
	case models.ChannelPush:
		return true
	case models.ChannelEmail:
		return e.ShouldSendEmail()
	case models.ChannelInApp:
		return e.ShouldSendInApp()
	default:
		panic(fmt.Sprintf("events: unhandled channel %q", channel))
	}
}

func renderError(t EventType, locale models.Locale, err error) error {
	return fmt.Errorf("%w: %s email for locale %q: %w", ErrRender, t, locale, err)
}
