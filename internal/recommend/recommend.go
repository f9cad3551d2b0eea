// Package recommend ranks candidate works by the similarity of their
// descriptions to a base work.
package recommend

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/metrics"
)

// DefaultTopK is the number of recommendations returned when unset.
const DefaultTopK = 5

var (
	// ErrNoRecommendations is returned when the base work has no row in the
	// corpus, which happens when its own description could not be fetched.
	ErrNoRecommendations = errors.New("no recommendations available")

	// ErrNoDescription is returned by fetchers for works without a description.
	ErrNoDescription = errors.New("work has no description")
)

// DescriptionFetcher loads the description of a work by catalog key.
type DescriptionFetcher interface {
	Description(ctx context.Context, key string) (string, error)
}

// Normalizer prepares descriptions for vectorisation.
type Normalizer interface {
	Normalize(text string) string
}

// Engine produces content-based recommendations.
type Engine struct {
	normalizer Normalizer
	topK       int
}

// NewEngine returns an Engine. A non-positive topK selects DefaultTopK.
func NewEngine(n Normalizer, topK int) *Engine {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Engine{normalizer: n, topK: topK}
}

// TopK returns the configured result limit.
func (e *Engine) TopK() int { return e.topK }

type corpusEntry struct {
	hit  book.SearchHit
	text string
}

// Recommend fetches the description of every candidate sequentially, drops
// the ones that fail or have none, and returns up to TopK candidates ranked by
// cosine similarity to the base work. The base work is never returned.
//
// An empty corpus yields an empty result. If the corpus is not empty but has
// no row for base.Key, ErrNoRecommendations is returned.
func (e *Engine) Recommend(ctx context.Context, base book.WorkDetail, candidates []book.SearchHit, fetcher DescriptionFetcher) ([]book.SearchHit, error) {
	corpus := make([]corpusEntry, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, cand := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Repeated keys would add identical rows.
		if seen[cand.Key] {
			continue
		}
		seen[cand.Key] = true

		desc, err := fetcher.Description(ctx, cand.Key)
		switch {
		case errors.Is(err, ErrNoDescription) || (err == nil && desc == ""):
			slog.Debug("Candidate has no description, excluding", "key", cand.Key)
			metrics.CandidatesExcluded.WithLabelValues("no_description").Inc()
			continue
		case err != nil:
			slog.Warn("Failed to fetch candidate description, excluding", "key", cand.Key, "error", err)
			metrics.CandidatesExcluded.WithLabelValues("fetch_failed").Inc()
			continue
		}

		corpus = append(corpus, corpusEntry{hit: cand, text: e.normalizer.Normalize(desc)})
	}

	if len(corpus) == 0 {
		return []book.SearchHit{}, nil
	}

	baseIdx := -1
	for i, entry := range corpus {
		if entry.hit.Key == base.Key {
			baseIdx = i
			break
		}
	}
	if baseIdx < 0 {
		metrics.RecommendationsUnavailable.Inc()
		return nil, ErrNoRecommendations
	}

	docs := make([]string, len(corpus))
	for i, entry := range corpus {
		docs[i] = entry.text
	}
	m := vectorize(docs)

	return pickTop(corpus, rank(m, baseIdx), base.Key, e.topK), nil
}

type scored struct {
	idx   int
	score float64
}

// rank returns every row ordered by descending similarity to row base.
// Equal scores keep corpus order.
func rank(m matrix, base int) []scored {
	out := make([]scored, len(m.rows))
	for i, row := range m.rows {
		out[i] = scored{idx: i, score: cosine(m.rows[base], row)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score > out[j].score
	})
	return out
}

// pickTop takes the best k+1 rows, removes the base work and truncates to k.
func pickTop(corpus []corpusEntry, ranked []scored, baseKey string, k int) []book.SearchHit {
	if len(ranked) > k+1 {
		ranked = ranked[:k+1]
	}

	out := make([]book.SearchHit, 0, k)
	for _, s := range ranked {
		if corpus[s.idx].hit.Key == baseKey {
			continue
		}
		out = append(out, corpus[s.idx].hit)
	}
	if len(out) > k {
		out = out[:k]
	}
	return out
}
