package i18n

import "strings"

// Language is a supported UI language code.
type Language string

const (
	English  Language = "en"
	Japanese Language = "ja"
)

// Fallback is used when neither a persisted choice nor the device locale
// yields a supported language.
const Fallback = English

// Supported lists the selectable languages in display order.
func Supported() []Language {
	return []Language{English, Japanese}
}

// Parse validates a stored or user-supplied language code.
func Parse(code string) (Language, bool) {
	switch Language(code) {
	case English, Japanese:
		return Language(code), true
	default:
		return "", false
	}
}

// FromLocale maps a device-reported locale identifier to a supported
// language using only the primary subtag, e.g. "ja-JP" and "ja_JP" both
// resolve to Japanese while anything non-Japanese falls back to English.
func FromLocale(locale string) Language {
	primary := strings.ToLower(locale)
	if i := strings.IndexAny(primary, "-_"); i >= 0 {
		primary = primary[:i]
	}
	if primary == string(Japanese) {
		return Japanese
	}
	return Fallback
}
