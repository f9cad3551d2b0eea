// Package textproc implements the text normalisation, person-entity
// extraction and string similarity used to clean catalog data.
package textproc

import "fmt"

// Options configure NewEngine.
type Options struct {
	// Extractor names the entity extractor ("heuristic", the default, or "prose").
	Extractor string
	// ExtraStopwords are appended to the English stop-word list.
	ExtraStopwords []string
}

// Engine bundles the normaliser, entity extractor and similarity measure.
// It is built once at startup and shared read-only between requests.
type Engine struct {
	normalizer *Normalizer
	extractor  EntityExtractor
}

// NewEngine builds an Engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	extractor, err := NewExtractor(opts.Extractor)
	if err != nil {
		return nil, fmt.Errorf("building text engine: %w", err)
	}

	words := make([]string, 0, len(EnglishStopwords)+len(opts.ExtraStopwords))
	words = append(words, EnglishStopwords...)
	words = append(words, opts.ExtraStopwords...)

	return &Engine{
		normalizer: NewNormalizer(words),
		extractor:  extractor,
	}, nil
}

// NewEngineWith builds an Engine from already constructed parts.
func NewEngineWith(normalizer *Normalizer, extractor EntityExtractor) *Engine {
	return &Engine{normalizer: normalizer, extractor: extractor}
}

// Normalize delegates to the engine's Normalizer.
func (e *Engine) Normalize(text string) string {
	return e.normalizer.Normalize(text)
}

// PersonEntities delegates to the engine's extractor.
func (e *Engine) PersonEntities(text string) []string {
	return e.extractor.PersonEntities(text)
}

// Similarity scores a and b with SequenceRatio.
func (e *Engine) Similarity(a, b string) float64 {
	return SequenceRatio(a, b)
}
