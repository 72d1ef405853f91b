// Package i18n holds the bot's message catalogs.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localesFS embed.FS

// DefaultLanguage is used when a key or a language is missing.
const DefaultLanguage = "en"

// Languages lists the supported language codes, DefaultLanguage first.
var Languages = []string{DefaultLanguage, "uk"}

// supported is index-aligned with Languages.
var supported = language.NewMatcher([]language.Tag{language.English, language.Ukrainian})

// Localizer resolves message keys against the embedded catalogs.
type Localizer struct {
	// translations is filled by NewLocalizer and only read afterwards.
	translations map[string]map[string]string
}

// NewLocalizer loads a catalog for every supported language.
func NewLocalizer() (*Localizer, error) {
	translations := make(map[string]map[string]string, len(Languages))
	for _, lang := range Languages {
		catalog, err := readCatalog(lang)
		if err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
		translations[lang] = catalog
	}
	return &Localizer{translations: translations}, nil
}

func readCatalog(lang string) (map[string]string, error) {
	name := "locales/" + lang + ".json"
	data, err := localesFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read locale file %s: %w", name, err)
	}

	var catalog map[string]string
	if err = json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to unmarshal locale file %s: %w", name, err)
	}
	return catalog, nil
}

// Get returns the message for key in lang, falling back to DefaultLanguage
// and then to the key itself.
func (l *Localizer) Get(lang, key string) string {
	if msg, ok := l.translations[lang][key]; ok {
		return msg
	}
	if msg, ok := l.translations[DefaultLanguage][key]; ok {
		return msg
	}
	return key
}

// GetWithData is Get with {name} placeholders filled from data.
// Example: GetWithData("en", "list.header", map[string]any{"page": 2}).
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	msg := l.Get(lang, key)
	if len(data) == 0 {
		return msg
	}

	pairs := make([]string, 0, 2*len(data))
	for name, value := range data {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// NormalizeLanguageCode maps a Telegram language code such as "en-US" to one
// of Languages. Anything unsupported becomes DefaultLanguage.
func NormalizeLanguageCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	// "ua" is the country; clients send it in place of "uk" often enough.
	if code == "ua" || strings.HasPrefix(code, "ua-") {
		return "uk"
	}

	tag, err := language.Parse(code)
	if err != nil {
		return DefaultLanguage
	}
	_, index, confidence := supported.Match(tag)
	if confidence < language.High {
		return DefaultLanguage
	}
	return Languages[index]
}
