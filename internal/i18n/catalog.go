package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed locales/*.json
var localeFS embed.FS

type catalog map[Language]map[string]string

func loadCatalog() (catalog, error) {
	cat := catalog{}
	for _, lang := range []Language{English, Japanese} {
		data, err := localeFS.ReadFile(fmt.Sprintf("locales/%s.json", lang))
		if err != nil {
			return nil, fmt.Errorf("read %s catalog: %w", lang, err)
		}
		messages := map[string]string{}
		if err := json.Unmarshal(data, &messages); err != nil {
			return nil, fmt.Errorf("decode %s catalog: %w", lang, err)
		}
		cat[lang] = messages
	}
	return cat, nil
}

// lookup resolves key in lang, falling back to English and finally to the
// key itself so missing translations stay visible rather than blank.
func (c catalog) lookup(lang Language, key string) string {
	if msg, ok := c[lang][key]; ok {
		return msg
	}
	if msg, ok := c[Fallback][key]; ok {
		return msg
	}
	return key
}
