// Package authors collapses near-duplicate author search hits into one
// canonical entry per extracted person name.
package authors

import (
	"log/slog"

	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/metrics"
)

// DefaultThreshold separates "same entity" from "distinct entity" scores.
const DefaultThreshold = 0.85

// Matcher extracts person entities and scores string similarity.
// *textproc.Engine satisfies it.
type Matcher interface {
	PersonEntities(text string) []string
	Similarity(a, b string) float64
}

// Disambiguator maps author hits to canonical authors.
type Disambiguator struct {
	matcher   Matcher
	threshold float64
}

// NewDisambiguator returns a Disambiguator. A non-positive threshold selects
// DefaultThreshold.
func NewDisambiguator(m Matcher, threshold float64) *Disambiguator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Disambiguator{matcher: m, threshold: threshold}
}

// Disambiguate keeps one entry per distinct person entity, in order of first
// appearance. Only the first entity of each display name is used; hits with
// no entity are dropped. When an entity repeats and its similarity to the
// hit's display name is below the threshold, the later hit's key replaces the
// stored one.
func (d *Disambiguator) Disambiguate(hits []book.AuthorHit) []book.CanonicalAuthor {
	order := make([]string, 0, len(hits))
	keys := make(map[string]string, len(hits))

	for _, hit := range hits {
		entities := d.matcher.PersonEntities(hit.Name)
		if len(entities) == 0 {
			slog.Debug("No person entity in author name, dropping", "name", hit.Name, "key", hit.Key)
			metrics.AuthorsDropped.Inc()
			continue
		}
		entity := entities[0]

		if _, seen := keys[entity]; !seen {
			order = append(order, entity)
			keys[entity] = hit.Key
			continue
		}

		if score := d.matcher.Similarity(entity, hit.Name); score < d.threshold {
			slog.Debug("Replacing author key for near-duplicate",
				"entity", entity, "name", hit.Name, "similarity", score,
				"old_key", keys[entity], "new_key", hit.Key)
			keys[entity] = hit.Key
		}
	}

	out := make([]book.CanonicalAuthor, 0, len(order))
	for _, name := range order {
		out = append(out, book.CanonicalAuthor{Name: name, Key: keys[name]})
	}
	return out
}
