package textproc

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"
)

// Supported extractor names for NewExtractor.
const (
	ExtractorProse     = "prose"
	ExtractorHeuristic = "heuristic"
)

// EntityExtractor finds person names in free text.
type EntityExtractor interface {
	// PersonEntities returns the spans tagged as person names, in order of
	// appearance. It returns nil when none are found.
	PersonEntities(text string) []string
}

// NewExtractor returns the extractor registered under name.
func NewExtractor(name string) (EntityExtractor, error) {
	switch strings.ToLower(name) {
	case "", ExtractorHeuristic:
		return HeuristicExtractor{}, nil
	case ExtractorProse:
		return ProseExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown entity extractor %q", name)
	}
}

// ProseExtractor uses the prose averaged-perceptron NER model. The model
// rarely tags a bare name such as "Stephen King", so text with no PERSON span
// goes through HeuristicExtractor instead.
type ProseExtractor struct{}

// PersonEntities implements EntityExtractor.
func (ProseExtractor) PersonEntities(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		slog.Debug("Entity extraction failed, using heuristic", "text", text, "error", err)
		return HeuristicExtractor{}.PersonEntities(text)
	}

	var people []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			people = append(people, ent.Text)
		}
	}
	if len(people) == 0 {
		return HeuristicExtractor{}.PersonEntities(text)
	}
	return people
}

// HeuristicExtractor treats every run of capitalised words or initials as a
// person name. Tokens starting with a digit or bracket end the current run.
type HeuristicExtractor struct{}

// PersonEntities implements EntityExtractor.
func (HeuristicExtractor) PersonEntities(text string) []string {
	var (
		people []string
		run    []string
	)
	flush := func() {
		if len(run) > 0 {
			people = append(people, strings.Join(run, " "))
			run = run[:0]
		}
	}

	for _, tok := range strings.Fields(text) {
		word := strings.TrimRight(tok, ",;:!?\"')")
		if !isNameToken(word) {
			flush()
			continue
		}
		run = append(run, word)
		// A trailing comma separates two names, as in "Pratchett, Gaiman".
		if word != tok && !strings.HasSuffix(word, ".") {
			flush()
		}
	}
	flush()
	return people
}

func isNameToken(word string) bool {
	if word == "" {
		return false
	}
	first := []rune(word)[0]
	if !unicode.IsUpper(first) {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && r != '.' && r != '-' && r != '\'' {
			return false
		}
	}
	return true
}
