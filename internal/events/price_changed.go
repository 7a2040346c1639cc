package events

import (
	"fmt"
	"math"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

type PriceDirection string

const (
	PriceUp   PriceDirection = "up"
	PriceDown PriceDirection = "down"
)

// PriceChanged is a push-only update on a significant bitcoin price move.
type PriceChanged struct {
	PriceOfOneBitcoin     models.Money   `json:"price_of_one_bitcoin"`
	Direction             PriceDirection `json:"direction"`
	PriceChangePercentage float64        `json:"price_change_percentage"`
}

func (PriceChanged) Type() EventType { return TypePriceChanged }

func (PriceChanged) Category() models.NotificationCategory { return models.CategoryPrice }

func (PriceChanged) DeepLink() models.DeepLink { return models.DeepLinkPrice }

func (e PriceChanged) Validate() error {
	if e.Direction != PriceUp && e.Direction != PriceDown {
		return fmt.Errorf("%w: price direction %q", ErrInvalidEvent, e.Direction)
	}
	if math.IsNaN(e.PriceChangePercentage) || math.IsInf(e.PriceChangePercentage, 0) {
		return fmt.Errorf("%w: price change percentage is not a number", ErrInvalidEvent)
	}
	return validateMoney(e.PriceOfOneBitcoin)
}

func (e PriceChanged) args(tr *i18n.Translator, locale models.Locale) []string {
	return []string{
		"price", formatMoney(tr, locale, e.PriceOfOneBitcoin),
		"percent", printerFor(tr, locale).Sprintf("%.1f", math.Abs(e.PriceChangePercentage)),
	}
}

func (e PriceChanged) bodyKey() string {
	return "price_changed.body." + string(e.Direction)
}

func (e PriceChanged) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	args := e.args(tr, locale)
	return LocalizedPush{
		Title: tr.T(locale.String(), "price_changed.title", args...),
		Body:  tr.T(locale.String(), e.bodyKey(), args...),
	}
}

func (PriceChanged) ShouldSendEmail() bool { return false }

func (e PriceChanged) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale, "price_changed.title", e.bodyKey(), e.args(tr, locale)...)
}

func (PriceChanged) ShouldSendInApp() bool { return false }

func (e PriceChanged) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (PriceChanged) sealed() {}
