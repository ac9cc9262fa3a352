// Package i18n renders notification texts from embedded locale files.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLocale is used when neither the context nor the translator names one
const DefaultLocale = "en"

type ctxKey struct{}

// Translator looks up messages in the bundled locales
type Translator struct {
	bundle        *i18n.Bundle
	defaultLocale string
}

// NewTranslator loads every embedded locale file
func NewTranslator(defaultLocale string) (*Translator, error) {
	if defaultLocale == "" {
		defaultLocale = DefaultLocale
	}
	if _, err := language.Parse(defaultLocale); err != nil {
		return nil, fmt.Errorf("i18n: invalid default locale %q: %w", defaultLocale, err)
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("i18n: read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("i18n: read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("i18n: parse %s: %w", e.Name(), err)
		}
	}

	return &Translator{bundle: bundle, defaultLocale: defaultLocale}, nil
}

// WithLocale returns a new context carrying the given locale string (e.g. "ar", "en").
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, locale)
}

// LocaleFromContext returns the context locale, or fallback when unset
func LocaleFromContext(ctx context.Context, fallback string) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return fallback
}

// Languages lists the locales loaded into the bundle
func (t *Translator) Languages() []language.Tag {
	return t.bundle.LanguageTags()
}

// Localize translates messageID, failing when no locale defines it
func (t *Translator) Localize(ctx context.Context, messageID string, templateData map[string]interface{}) (string, error) {
	lang := LocaleFromContext(ctx, t.defaultLocale)
	l := i18n.NewLocalizer(t.bundle, lang, t.defaultLocale)

	return l.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
}

// T translates messageID and falls back to the ID itself
func (t *Translator) T(ctx context.Context, messageID string, templateData ...map[string]interface{}) string {
	var data map[string]interface{}
	if len(templateData) > 0 {
		data = templateData[0]
	}

	msg, err := t.Localize(ctx, messageID, data)
	if err != nil {
		return messageID
	}
	return msg
}
