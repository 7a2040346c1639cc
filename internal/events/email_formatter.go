package events

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var genericEmailTemplate = template.Must(template.ParseFS(templateFS, "templates/generic_email.html"))

type genericEmailData struct {
	Lang   string
	Title  string
	Body   string
	Footer string
}

// genericEmail renders titleKey/bodyKey into the shared HTML layout. Every key
// is required: a key missing from both the requested and the default locale
// is a render error.
func genericEmail(tr *i18n.Translator, t EventType, locale models.Locale, titleKey, bodyKey string, args ...string) (LocalizedEmail, error) {
	lang := tr.Resolve(locale.String())

	title, err := tr.Require(lang, titleKey, args...)
	if err != nil {
		return LocalizedEmail{}, renderError(t, locale, err)
	}
	body, err := tr.Require(lang, bodyKey, args...)
	if err != nil {
		return LocalizedEmail{}, renderError(t, locale, err)
	}
	footer, err := tr.Require(lang, "email.footer")
	if err != nil {
		return LocalizedEmail{}, renderError(t, locale, err)
	}

	var buf bytes.Buffer
	if err := genericEmailTemplate.Execute(&buf, genericEmailData{
		Lang:   lang,
		Title:  title,
		Body:   body,
		Footer: footer,
	}); err != nil {
		return LocalizedEmail{}, renderError(t, locale, err)
	}
	return LocalizedEmail{Subject: title, Body: buf.String()}, nil
}
