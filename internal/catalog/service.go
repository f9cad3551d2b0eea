// Package catalog orchestrates Open Library lookups and the text-processing
// components behind every API operation.
package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/lepinkainen/readersrealm/internal/authors"
	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/genres"
	"github.com/lepinkainen/readersrealm/internal/metrics"
	"github.com/lepinkainen/readersrealm/internal/openlibrary"
	"github.com/lepinkainen/readersrealm/internal/recommend"
)

const (
	msgNoResults      = "No results found"
	msgBookNotFound   = "Book not found"
	msgNotEnglish     = "Book not available in English"
	msgAuthorNotFound = "Author not found"

	englishCode = "eng"
)

// Upstream is the subset of the Open Library client the service needs.
type Upstream interface {
	SearchTitle(ctx context.Context, query string, limit int) (*openlibrary.SearchResponse, error)
	SearchAuthors(ctx context.Context, query string) (*openlibrary.AuthorSearchResponse, error)
	Work(ctx context.Context, key string) (*openlibrary.Work, error)
	Author(ctx context.Context, key string) (openlibrary.Author, error)
	AuthorWorks(ctx context.Context, key string) (*openlibrary.AuthorWorksResponse, error)
	Ping(ctx context.Context) error
	CoverURL(coverID int, size string) string
}

// Options tune the service. Zero values select the defaults.
type Options struct {
	PlaceholderRating float64
	CandidateLimit    int
	HighestRatedQuery string
	HighestRatedLimit int
}

// Service answers catalog requests. It keeps no state between calls.
type Service struct {
	upstream    Upstream
	authors     *authors.Disambiguator
	genres      *genres.Clusterer
	recommender *recommend.Engine
	opts        Options
}

// NewService wires the service to its collaborators.
func NewService(up Upstream, d *authors.Disambiguator, c *genres.Clusterer, r *recommend.Engine, opts Options) *Service {
	if opts.PlaceholderRating == 0 {
		opts.PlaceholderRating = 4.5
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = 10
	}
	if opts.HighestRatedQuery == "" {
		opts.HighestRatedQuery = "fiction"
	}
	if opts.HighestRatedLimit <= 0 {
		opts.HighestRatedLimit = 10
	}
	return &Service{
		upstream:    up,
		authors:     d,
		genres:      c,
		recommender: r,
		opts:        opts,
	}
}

// SearchTitles runs a title search. An empty result is a NotFoundError.
func (s *Service) SearchTitles(ctx context.Context, query string) ([]book.SearchHit, error) {
	res, err := s.upstream.SearchTitle(ctx, query, 0)
	if err != nil {
		return nil, primaryError(err, msgNoResults)
	}
	if len(res.Docs) == 0 {
		return nil, notFound(msgNoResults)
	}
	return hitsFromDocs(res.Docs), nil
}

// SearchAuthors runs an author search and collapses name variants.
func (s *Service) SearchAuthors(ctx context.Context, query string) ([]book.CanonicalAuthor, error) {
	res, err := s.upstream.SearchAuthors(ctx, query)
	if err != nil {
		return nil, primaryError(err, msgNoResults)
	}
	if len(res.Docs) == 0 {
		return nil, notFound(msgNoResults)
	}

	hits := make([]book.AuthorHit, 0, len(res.Docs))
	for _, doc := range res.Docs {
		name := doc.Name
		if name == "" {
			name = book.NotAvailable
		}
		hits = append(hits, book.AuthorHit{Name: name, Key: doc.Key})
	}

	canonical := s.authors.Disambiguate(hits)
	if len(canonical) == 0 {
		return nil, notFound(msgNoResults)
	}
	return canonical, nil
}

// Book fetches a work and enriches it with cover, rating, genres and author
// names. Works whose catalog entry lists only non-English editions are
// reported as not found. With withRecommendations set, similar works are
// attached; failing to compute them never fails the call.
func (s *Service) Book(ctx context.Context, key string, withRecommendations bool) (*book.WorkDetail, error) {
	work, err := s.upstream.Work(ctx, key)
	if err != nil {
		return nil, primaryError(err, msgBookNotFound)
	}

	if !s.isEnglish(ctx, work.Key) {
		return nil, notFound(msgNotEnglish)
	}

	title := work.Title
	if title == "" {
		title = book.NotAvailable
	}
	subjects := work.Subjects
	if subjects == nil {
		subjects = []string{}
	}

	detail := &book.WorkDetail{
		Key:              work.Key,
		Title:            title,
		Description:      work.DescriptionText(),
		Subjects:         subjects,
		Genres:           s.genres.Clean(subjects),
		AuthorKeys:       work.AuthorKeys(),
		CoverImage:       s.upstream.CoverURL(work.CoverID(), "L"),
		Rating:           s.opts.PlaceholderRating,
		FirstPublishDate: work.FirstPublishDate,
	}
	detail.AuthorNames = s.authorNames(ctx, detail.AuthorKeys)

	if withRecommendations {
		detail.Recommendations = s.recommendations(ctx, *detail)
	}
	return detail, nil
}

// Author passes the raw author record through.
func (s *Service) Author(ctx context.Context, key string) (openlibrary.Author, error) {
	author, err := s.upstream.Author(ctx, key)
	if err != nil {
		return nil, primaryError(err, msgAuthorNotFound)
	}
	return author, nil
}

// AuthorWorks lists an author's works as title/key pairs.
func (s *Service) AuthorWorks(ctx context.Context, key string) ([]book.WorkRef, error) {
	res, err := s.upstream.AuthorWorks(ctx, key)
	if err != nil {
		return nil, primaryError(err, msgAuthorNotFound)
	}

	refs := make([]book.WorkRef, 0, len(res.Entries))
	for _, entry := range res.Entries {
		title := entry.Title
		if title == "" {
			title = book.NotAvailable
		}
		refs = append(refs, book.WorkRef{Title: title, Key: entry.Key})
	}
	return refs, nil
}

// HighestRated lists works ordered by rating. Ratings are the configured
// placeholder, so the order is effectively the upstream search order.
func (s *Service) HighestRated(ctx context.Context) ([]book.SearchHit, error) {
	res, err := s.upstream.SearchTitle(ctx, s.opts.HighestRatedQuery, s.opts.HighestRatedLimit)
	if err != nil {
		return nil, primaryError(err, msgNoResults)
	}

	hits := hitsFromDocs(res.Docs)
	for i := range hits {
		rating := s.opts.PlaceholderRating
		hits[i].Rating = &rating
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return *hits[i].Rating > *hits[j].Rating
	})
	if len(hits) > s.opts.HighestRatedLimit {
		hits = hits[:s.opts.HighestRatedLimit]
	}
	return hits, nil
}

// Ping reports whether Open Library is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.upstream.Ping(ctx)
}

// RecommendationsEnabled reports whether a recommender is wired in.
func (s *Service) RecommendationsEnabled() bool {
	return s.recommender != nil
}

// isEnglish looks the work up in the search index, which is where edition
// languages live. A failed lookup lets the work through.
func (s *Service) isEnglish(ctx context.Context, key string) bool {
	res, err := s.upstream.SearchTitle(ctx, "key:"+key, 1)
	if err != nil {
		slog.Warn("Language lookup failed, allowing work", "key", key, "error", err)
		metrics.SecondaryLookupFailures.WithLabelValues("language").Inc()
		return true
	}
	for _, doc := range res.Docs {
		if doc.Key != key || len(doc.Language) == 0 {
			continue
		}
		hit := book.SearchHit{Languages: doc.Language}
		return hit.HasLanguage(englishCode)
	}
	return true
}

func (s *Service) authorNames(ctx context.Context, keys []string) []string {
	names := make([]string, 0, len(keys))
	for _, key := range keys {
		author, err := s.upstream.Author(ctx, key)
		if err != nil {
			slog.Warn("Author lookup failed, skipping", "key", key, "error", err)
			metrics.SecondaryLookupFailures.WithLabelValues("author_name").Inc()
			continue
		}
		if name := author.Name(); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (s *Service) recommendations(ctx context.Context, base book.WorkDetail) []book.SearchHit {
	if s.recommender == nil {
		return nil
	}

	query := base.Title
	if len(base.Genres) > 0 {
		query = base.Genres[0]
	}

	res, err := s.upstream.SearchTitle(ctx, query, s.opts.CandidateLimit)
	if err != nil {
		slog.Warn("Candidate search failed, no recommendations", "key", base.Key, "query", query, "error", err)
		metrics.SecondaryLookupFailures.WithLabelValues("candidates").Inc()
		return []book.SearchHit{}
	}

	docs := res.Docs
	if len(docs) > s.opts.CandidateLimit {
		docs = docs[:s.opts.CandidateLimit]
	}
	candidates := candidateSet(base.Hit(), hitsFromDocs(docs))

	fetcher := &descriptionFetcher{
		upstream: s.upstream,
		known:    map[string]string{base.Key: base.Description},
	}
	recs, err := s.recommender.Recommend(ctx, base, candidates, fetcher)
	switch {
	case errors.Is(err, recommend.ErrNoRecommendations):
		slog.Info("No recommendations available", "key", base.Key)
		return []book.SearchHit{}
	case err != nil:
		slog.Warn("Recommendation failed", "key", base.Key, "error", err)
		return []book.SearchHit{}
	}
	return recs
}

// candidateSet puts base first and drops repeated keys.
func candidateSet(base book.SearchHit, hits []book.SearchHit) []book.SearchHit {
	seen := map[string]bool{base.Key: true}
	out := make([]book.SearchHit, 0, len(hits)+1)
	out = append(out, base)
	for _, hit := range hits {
		if hit.Key == "" || seen[hit.Key] {
			continue
		}
		seen[hit.Key] = true
		out = append(out, hit)
	}
	return out
}

// descriptionFetcher loads candidate descriptions from work records. Known
// descriptions, such as the base work's, are served without a fetch.
type descriptionFetcher struct {
	upstream Upstream
	known    map[string]string
}

func (f *descriptionFetcher) Description(ctx context.Context, key string) (string, error) {
	desc, ok := f.known[key]
	if !ok {
		work, err := f.upstream.Work(ctx, key)
		if err != nil {
			return "", err
		}
		desc = work.DescriptionText()
	}
	if strings.TrimSpace(desc) == "" {
		return "", recommend.ErrNoDescription
	}
	return desc, nil
}

func hitsFromDocs(docs []openlibrary.SearchDoc) []book.SearchHit {
	hits := make([]book.SearchHit, 0, len(docs))
	for _, doc := range docs {
		hits = append(hits, hitFromDoc(doc))
	}
	return hits
}

func hitFromDoc(doc openlibrary.SearchDoc) book.SearchHit {
	title := doc.Title
	if title == "" {
		title = book.NotAvailable
	}
	author := book.NotAvailable
	if len(doc.AuthorName) > 0 {
		author = strings.Join(doc.AuthorName, ", ")
	}
	return book.SearchHit{
		Title:            title,
		Author:           author,
		FirstPublishYear: doc.FirstPublishYear,
		Key:              doc.Key,
		CoverID:          doc.CoverI,
		Languages:        doc.Language,
	}
}
