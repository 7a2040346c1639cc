// Package i18n holds the process-wide translation table used to render
// notifications. A Translator is immutable once built and safe for concurrent
// use without locking.
package i18n

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"
)

// DefaultLocale is the locale every lookup falls back to.
const DefaultLocale = "en"

var (
	ErrMissingResource = errors.New("missing locale resource")
	ErrNoTranslations  = errors.New("no translations loaded")
)

// Translator resolves dotted keys such as "circle_grew.title" for a locale.
type Translator struct {
	tables        map[string]map[string]string
	defaultLocale string
	supported     []string
	matcher       language.Matcher
	logger        zerolog.Logger
}

// Option configures a Translator.
type Option func(*Translator)

func WithDefaultLocale(locale string) Option {
	return func(t *Translator) {
		if locale = strings.TrimSpace(locale); locale != "" {
			t.defaultLocale = locale
		}
	}
}

// WithLogger logs missing translations at debug level.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Translator) {
		t.logger = logger.With().Str("component", "i18n").Logger()
	}
}

// NewTranslator builds a translator from per-locale nested maps, as produced
// by ParseYAML.
func NewTranslator(translations map[string]map[string]any, opts ...Option) (*Translator, error) {
	t := &Translator{
		tables:        make(map[string]map[string]string, len(translations)),
		defaultLocale: DefaultLocale,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if len(translations) == 0 {
		return nil, ErrNoTranslations
	}
	for locale, tree := range translations {
		if _, err := language.Parse(locale); err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
		}
		flat := make(map[string]string)
		flatten("", tree, flat)
		t.tables[locale] = flat
	}
	if _, ok := t.tables[t.defaultLocale]; !ok {
		return nil, fmt.Errorf("%w: default locale %q has no translations", ErrMissingResource, t.defaultLocale)
	}

	// The default locale goes first so the matcher falls back to it.
	t.supported = append(t.supported, t.defaultLocale)
	others := make([]string, 0, len(t.tables)-1)
	for locale := range t.tables {
		if locale != t.defaultLocale {
			others = append(others, locale)
		}
	}
	sort.Strings(others)
	t.supported = append(t.supported, others...)

	tags := make([]language.Tag, len(t.supported))
	for i, locale := range t.supported {
		tags[i] = language.MustParse(locale)
	}
	t.matcher = language.NewMatcher(tags)

	return t, nil
}

func (t *Translator) DefaultLocale() string {
	return t.defaultLocale
}

// SupportedLocales returns the loaded locales, default first.
func (t *Translator) SupportedLocales() []string {
	return append([]string(nil), t.supported...)
}

// Resolve maps a requested locale onto the closest supported one. Unknown or
// malformed locales resolve to the default locale.
func (t *Translator) Resolve(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return t.defaultLocale
	}
	if _, ok := t.tables[locale]; ok {
		return locale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return t.defaultLocale
	}
	_, idx, conf := t.matcher.Match(tag)
	if conf == language.No {
		return t.defaultLocale
	}
	return t.supported[idx]
}

// T translates key, substituting %{name} placeholders from args given as
// name, value pairs. It never fails: a key missing in the requested locale
// falls back to the default locale, and a key missing there too yields the
// key itself.
func (t *Translator) T(locale, key string, args ...string) string {
	if tmpl, ok := t.lookup(locale, key); ok {
		return interpolate(tmpl, args)
	}
	t.logger.Debug().Str("locale", locale).Str("key", key).Msg("translation missing in every locale")
	return interpolate(key, args)
}

// Require is like T but reports ErrMissingResource when the key is absent from
// both the requested and the default locale.
func (t *Translator) Require(locale, key string, args ...string) (string, error) {
	tmpl, ok := t.lookup(locale, key)
	if !ok {
		return "", fmt.Errorf("%w: %s (locale %s)", ErrMissingResource, key, locale)
	}
	return interpolate(tmpl, args), nil
}

// N picks the plural form key.one or key.other for n and adds a count
// argument unless one is given.
func (t *Translator) N(locale, key string, n int, args ...string) string {
	form := key + ".other"
	if n == 1 {
		form = key + ".one"
	}
	if !hasArg(args, "count") {
		args = append(args, "count", strconv.Itoa(n))
	}
	if tmpl, ok := t.lookup(locale, form); ok {
		return interpolate(tmpl, args)
	}
	return t.T(locale, key, args...)
}

// Has reports whether key exists in exactly the given locale, without
// fallback.
func (t *Translator) Has(locale, key string) bool {
	_, ok := t.tables[locale][key]
	return ok
}

func (t *Translator) lookup(locale, key string) (string, bool) {
	resolved := t.Resolve(locale)
	if v, ok := t.tables[resolved][key]; ok {
		return v, true
	}
	if resolved != t.defaultLocale {
		t.logger.Debug().Str("locale", resolved).Str("key", key).Msg("translation missing, using default locale")
	}
	v, ok := t.tables[t.defaultLocale][key]
	return v, ok
}

func flatten(prefix string, tree map[string]any, out map[string]string) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

var placeholder = regexp.MustCompile(`%\{([^}]+)\}`)

func interpolate(tmpl string, args []string) string {
	if len(args) < 2 || !strings.Contains(tmpl, "%{") {
		return tmpl
	}
	params := make(map[string]string, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		params[args[i]] = args[i+1]
	}
	return placeholder.ReplaceAllStringFunc(tmpl, func(m string) string {
		if v, ok := params[m[2:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func hasArg(args []string, name string) bool {
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == name {
			return true
		}
	}
	return false
}
