package models

import "strings"

// Locale is a content language code.
type Locale string

// Supported locales
const (
	LocaleEN      Locale = "en"
	LocalePT      Locale = "pt"
	DefaultLocale        = LocaleEN
)

// ParseLocale maps a request value such as "pt-BR" or "PT" onto a supported
// locale, defaulting to English.
func ParseLocale(s string) Locale {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i >= 0 {
		s = s[:i]
	}
	switch Locale(s) {
	case LocalePT:
		return LocalePT
	default:
		return DefaultLocale
	}
}

// Localized holds a default value and optional per-locale translations.
type Localized[T any] struct {
	Default      T            `json:"default"`
	Translations map[Locale]T `json:"translations,omitempty"`
}

// Resolve returns the translation for locale, or the default value when no
// translation exists.
func (l Localized[T]) Resolve(locale Locale) T {
	if v, ok := l.Translations[locale]; ok {
		return v
	}
	return l.Default
}

// Translation returns the stored translation for locale without fallback.
func (l Localized[T]) Translation(locale Locale) (T, bool) {
	v, ok := l.Translations[locale]
	return v, ok
}

// LocalizedString builds a Localized string. Empty translations are treated
// as missing.
func LocalizedString(def, pt string) Localized[string] {
	l := Localized[string]{Default: def}
	if pt != "" {
		l.Translations = map[Locale]string{LocalePT: pt}
	}
	return l
}

// LocalizedList builds a Localized string list. Empty translations are
// treated as missing.
func LocalizedList(def, pt []string) Localized[[]string] {
	l := Localized[[]string]{Default: def}
	if len(pt) > 0 {
		l.Translations = map[Locale][]string{LocalePT: pt}
	}
	return l
}
