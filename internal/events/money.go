package events

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

func printerFor(tr *i18n.Translator, locale models.Locale) *message.Printer {
	return message.NewPrinter(language.Make(tr.Resolve(locale.String())))
}

// formatMoney renders BTC as a sat count and fiat with the locale's currency
// symbol and number formatting.
func formatMoney(tr *i18n.Translator, locale models.Locale, m models.Money) string {
	p := printerFor(tr, locale)
	code := strings.ToUpper(strings.TrimSpace(m.Currency))
	if code == "BTC" || code == "SAT" {
		return tr.N(locale.String(), "unit.sats", int(m.MinorUnits), "count", p.Sprintf("%d", m.MinorUnits))
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fmt.Sprintf("%d %s", m.MinorUnits, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	amount := float64(m.MinorUnits) / math.Pow10(scale)
	return p.Sprint(currency.Symbol(unit.Amount(amount)))
}

func validateMoney(m models.Money) error {
	if strings.TrimSpace(m.Currency) == "" {
		return fmt.Errorf("%w: money without currency", ErrInvalidEvent)
	}
	return nil
}
