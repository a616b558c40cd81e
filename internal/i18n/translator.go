// Package i18n resolves the request language and translates message keys.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Bundle holds the message catalog and the supported locales. It is
// immutable after construction and shared by all requests.
type Bundle struct {
	cat       *catalog.Builder
	matcher   language.Matcher
	supported []language.Tag
	fallback  language.Tag
}

// NewBundle builds the catalog for the supported locales. The default
// locale must be one of them.
func NewBundle(supported []string, defaultLocale string) (*Bundle, error) {
	fallback, err := language.Parse(strings.TrimSpace(defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("default locale %q: %w", defaultLocale, err)
	}
	tags := []language.Tag{fallback}
	found := false
	for _, s := range supported {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		tag, err := language.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("supported locale %q: %w", s, err)
		}
		if tag == fallback {
			found = true
			continue
		}
		tags = append(tags, tag)
	}
	if !found {
		return nil, fmt.Errorf("default locale %q is not supported", defaultLocale)
	}

	cat := catalog.NewBuilder(catalog.Fallback(fallback))
	for key, byLang := range translations {
		for _, tag := range tags {
			msg, ok := byLang[tag]
			if !ok {
				msg = key
			}
			if err := cat.SetString(tag, key, msg); err != nil {
				return nil, fmt.Errorf("catalog %s %q: %w", tag, key, err)
			}
		}
	}
	return &Bundle{
		cat:       cat,
		matcher:   language.NewMatcher(tags),
		supported: tags,
		fallback:  fallback,
	}, nil
}

// Match picks the best supported locale for an Accept-Language value or
// a bare tag, falling back to the default locale.
func (b *Bundle) Match(lang string) language.Tag {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		return b.fallback
	}
	prefs, _, err := language.ParseAcceptLanguage(lang)
	if err != nil || len(prefs) == 0 {
		return b.fallback
	}
	_, idx, conf := b.matcher.Match(prefs...)
	if conf == language.No {
		return b.fallback
	}
	return b.supported[idx]
}

// Translator creates a per-request translator for lang.
func (b *Bundle) Translator(lang string) *Translator {
	t := &Translator{bundle: b}
	t.SetLang(lang)
	return t
}

// Translator renders message keys in one language. It belongs to a
// single request.
type Translator struct {
	bundle  *Bundle
	tag     language.Tag
	printer *message.Printer
}

// SetLang switches the translator language.
func (t *Translator) SetLang(lang string) {
	t.tag = t.bundle.Match(lang)
	t.printer = message.NewPrinter(t.tag, message.Catalog(t.bundle.cat))
}

// Lang returns the active language tag.
func (t *Translator) Lang() string { return t.tag.String() }

// Translate renders key with args. Unknown keys are used as the format
// string itself.
func (t *Translator) Translate(key string, args ...any) string {
	return t.printer.Sprintf(key, args...)
}
