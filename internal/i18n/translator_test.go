package i18n_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stanstork/notifications/internal/i18n"
)

func newTestTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.NewTranslator(map[string]map[string]any{
		"en": {
			"greeting": "Hello, %{name}!",
			"nested":   map[string]any{"title": "Nested title"},
			"items":    map[string]any{"one": "%{count} item", "other": "%{count} items"},
			"only_en":  "English only",
		},
		"es": {
			"greeting": "¡Hola, %{name}!",
			"nested":   map[string]any{"title": "Título anidado"},
		},
		"pt": {
			"greeting": "Olá, %{name}!",
		},
	})
	require.NoError(t, err)
	return tr
}

func TestTranslatorT(t *testing.T) {
	tr := newTestTranslator(t)

	tests := []struct {
		name   string
		locale string
		key    string
		args   []string
		want   string
	}{
		{"exact locale", "es", "greeting", []string{"name", "Ana"}, "¡Hola, Ana!"},
		{"nested key", "es", "nested.title", nil, "Título anidado"},
		{"regional locale matches base", "pt-BR", "greeting", []string{"name", "Rui"}, "Olá, Rui!"},
		{"missing key falls back to default", "es", "only_en", nil, "English only"},
		{"unsupported locale falls back", "ja", "greeting", []string{"name", "Kenji"}, "Hello, Kenji!"},
		{"malformed locale falls back", "!!", "nested.title", nil, "Nested title"},
		{"empty locale falls back", "", "only_en", nil, "English only"},
		{"unknown key yields key", "en", "does.not.exist", nil, "does.not.exist"},
		{"unknown placeholder is kept", "en", "greeting", []string{"other", "x"}, "Hello, %{name}!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.T(tt.locale, tt.key, tt.args...))
		})
	}
}

func TestTranslatorRequire(t *testing.T) {
	tr := newTestTranslator(t)

	got, err := tr.Require("es", "only_en")
	require.NoError(t, err)
	assert.Equal(t, "English only", got)

	_, err = tr.Require("es", "missing.key")
	assert.ErrorIs(t, err, i18n.ErrMissingResource)
}

func TestTranslatorPlural(t *testing.T) {
	tr := newTestTranslator(t)
	assert.Equal(t, "1 item", tr.N("en", "items", 1))
	assert.Equal(t, "5 items", tr.N("en", "items", 5))
	assert.Equal(t, "0 items", tr.N("es", "items", 0))
}

func TestTranslatorResolveAndSupported(t *testing.T) {
	tr := newTestTranslator(t)
	assert.Equal(t, []string{"en", "es", "pt"}, tr.SupportedLocales())
	assert.Equal(t, "es", tr.Resolve("es-MX"))
	assert.Equal(t, "en", tr.Resolve("fr"))
	assert.True(t, tr.Has("es", "greeting"))
	assert.False(t, tr.Has("es", "only_en"))
}

func TestNewTranslatorErrors(t *testing.T) {
	_, err := i18n.NewTranslator(nil)
	assert.ErrorIs(t, err, i18n.ErrNoTranslations)

	_, err = i18n.NewTranslator(map[string]map[string]any{"es": {"a": "b"}})
	assert.ErrorIs(t, err, i18n.ErrMissingResource)

	_, err = i18n.NewTranslator(map[string]map[string]any{"en": {"a": "b"}, "not a locale!": {}})
	assert.Error(t, err)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml":   {Data: []byte("en:\n  hello: \"Hello\"\n")},
		"locales/es.yml":    {Data: []byte("es:\n  hello: \"Hola\"\n")},
		"locales/README.md": {Data: []byte("ignored")},
	}
	translations, err := i18n.LoadFS(fsys, "locales")
	require.NoError(t, err)

	tr, err := i18n.NewTranslator(translations, i18n.WithDefaultLocale("en"))
	require.NoError(t, err)
	assert.Equal(t, "Hola", tr.T("es", "hello"))
}

func TestParseYAMLRejectsFlatDocument(t *testing.T) {
	_, err := i18n.ParseYAML([]byte("en: \"not a map\"\n"))
	assert.Error(t, err)
}

func TestEmbeddedLocalesLoad(t *testing.T) {
	tr, err := i18n.LoadEmbedded()
	require.NoError(t, err)
	assert.Equal(t, "en", tr.DefaultLocale())
	assert.Contains(t, tr.SupportedLocales(), "es")
	assert.Equal(t, "Identidad verificada", tr.T("es", "identity_verification_approved.title"))
	// de is only partially translated.
	assert.Equal(t, "Verification in review", tr.T("de", "identity_verification_review_started.title"))
	assert.Same(t, i18n.Default(), i18n.Default())
}
