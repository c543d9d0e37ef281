package localization

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

type Service struct {
	translations map[string]map[string]interface{}
	fallback     string
}

// NewService loads every embedded translation file. Lookups in an unknown
// language use fallback.
func NewService(fallback string) (*Service, error) {
	s := &Service{
		translations: make(map[string]map[string]interface{}),
		fallback:     fallback,
	}

	files, err := fs.Glob(translationsFS, "translations/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}

	for _, file := range files {
		lang := strings.TrimSuffix(path.Base(file), ".yaml")

		data, err := translationsFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}

		var translations map[string]interface{}
		if err := yaml.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}

		s.translations[lang] = translations
	}

	if _, ok := s.translations[fallback]; !ok {
		return nil, fmt.Errorf("no translations for fallback language %q", fallback)
	}

	return s, nil
}

// Get retrieves a translation by key for the given language
// Key format: "section.subsection.key" or "section.key"
// Params can contain placeholders like {{name}}, {{amount}}, etc.
func (s *Service) Get(lang, key string, params map[string]interface{}) string {
	langTranslations, ok := s.translations[lang]
	if !ok {
		langTranslations = s.translations[s.fallback]
	}

	parts := strings.Split(key, ".")
	var current interface{} = langTranslations

	for _, part := range parts {
		if m, ok := current.(map[string]interface{}); ok {
			current = m[part]
		} else {
			return key
		}
	}

	text, ok := current.(string)
	if !ok {
		return key
	}

	return s.replacePlaceholders(text, params)
}

// replacePlaceholders substitutes every {{key}} in one pass, so parameter
// values are never expanded again.
func (s *Service) replacePlaceholders(text string, params map[string]interface{}) string {
	if len(params) == 0 {
		return text
	}

	pairs := make([]string, 0, len(params)*2)
	for key, value := range params {
		pairs = append(pairs, "{{"+key+"}}", fmt.Sprint(value))
	}

	return strings.NewReplacer(pairs...).Replace(text)
}
