package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var embeddedLocales embed.FS

// ParseYAML parses a locale document whose top-level keys are locale codes:
//
//	en:
//	  circle_grew:
//	    title: "..."
func ParseYAML(content []byte) (map[string]map[string]any, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse locale yaml: %w", err)
	}
	out := make(map[string]map[string]any, len(doc))
	for locale, v := range doc {
		tree, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("invalid locale yaml for %q: expected map, got %T", locale, v)
		}
		out[locale] = tree
	}
	return out, nil
}

// LoadFS reads every *.yaml / *.yml file under dir and merges them. Later
// files win on duplicate locale keys.
func LoadFS(fsys fs.FS, dir string) (map[string]map[string]any, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales dir: %w", err)
	}
	merged := make(map[string]map[string]any)
	for _, e := range entries {
		ext := strings.ToLower(path.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		parsed, err := ParseYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name(), err)
		}
		for locale, tree := range parsed {
			merged[locale] = tree
		}
	}
	return merged, nil
}

// LoadEmbedded builds a translator from the locale files compiled into the
// binary.
func LoadEmbedded(opts ...Option) (*Translator, error) {
	translations, err := LoadFS(embeddedLocales, "locales")
	if err != nil {
		return nil, err
	}
	return NewTranslator(translations, opts...)
}

var (
	defaultOnce       sync.Once
	defaultTranslator *Translator
	defaultErr        error
)

// Init builds the process-wide translator exactly once. Later calls return the
// first result regardless of the options passed.
func Init(opts ...Option) (*Translator, error) {
	defaultOnce.Do(func() {
		defaultTranslator, defaultErr = LoadEmbedded(opts...)
	})
	return defaultTranslator, defaultErr
}

// Default returns the process-wide translator, building it from the embedded
// locales if Init was never called. It panics if those locales are broken,
// which can only happen with a bad build.
func Default() *Translator {
	t, err := Init()
	if err != nil {
		panic(fmt.Sprintf("i18n: embedded locales: %v", err))
	}
	return t
}
