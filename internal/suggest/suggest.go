// Package suggest maps an emotion label to display content and decides
// whether the uplift games are offered. Everything here is pure: the same
// label always yields the same answer.
package suggest

import (
	_ "embed"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"moodlift/internal/classify"
)

//go:embed suggestions.yaml
var suggestionsYAML []byte

// Suggestions is the content shown for one label.
type Suggestions struct {
	Glyph string
	Items []string
}

type emotionContent struct {
	Glyph       string   `yaml:"glyph"`
	Suggestions []string `yaml:"suggestions"`
}

type document struct {
	DefaultGlyph string                    `yaml:"default_glyph"`
	Emotions     map[string]emotionContent `yaml:"emotions"`
}

// Engine answers suggestion lookups from a fixed content table.
type Engine struct {
	defaultGlyph string
	emotions     map[string]emotionContent
}

// Parse builds an engine from YAML content. Emotion keys are normalized the
// same way lookups are.
func Parse(raw []byte) (*Engine, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("suggest: parse content: %w", err)
	}
	if doc.DefaultGlyph == "" {
		return nil, fmt.Errorf("suggest: default_glyph is required")
	}
	e := &Engine{
		defaultGlyph: doc.DefaultGlyph,
		emotions:     make(map[string]emotionContent, len(doc.Emotions)),
	}
	for label, content := range doc.Emotions {
		e.emotions[Normalize(label)] = content
	}
	return e, nil
}

var defaultEngine = mustParse(suggestionsYAML)

func mustParse(raw []byte) *Engine {
	e, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return e
}

// Default returns the engine built from the embedded content.
func Default() *Engine {
	return defaultEngine
}

// For returns the ordered suggestions and glyph for label. Unknown labels
// get no suggestions and the default glyph.
func (e *Engine) For(label string) Suggestions {
	content, ok := e.emotions[Normalize(label)]
	if !ok {
		return Suggestions{Glyph: e.defaultGlyph, Items: []string{}}
	}
	glyph := content.Glyph
	if glyph == "" {
		glyph = e.defaultGlyph
	}
	items := make([]string, len(content.Suggestions))
	copy(items, content.Suggestions)
	return Suggestions{Glyph: glyph, Items: items}
}

// For looks label up in the embedded content.
func For(label string) Suggestions {
	return defaultEngine.For(label)
}

// EligibleForUpliftGame reports whether the games should be offered for
// label: sad, angry, fear and neutral qualify; happy and anything outside
// the taxonomy do not.
func EligibleForUpliftGame(label string) bool {
	switch Normalize(label) {
	case classify.LabelSad, classify.LabelAngry, classify.LabelFear, classify.LabelNeutral:
		return true
	default:
		return false
	}
}

// Normalize lower-cases a label. Surrounding whitespace is kept, so " sad "
// is not a known label.
func Normalize(label string) string {
	// Casers carry state and are not safe to share between goroutines.
	return cases.Lower(language.Und).String(label)
}
