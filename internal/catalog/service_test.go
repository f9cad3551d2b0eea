package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/readersrealm/internal/authors"
	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/genres"
	"github.com/lepinkainen/readersrealm/internal/openlibrary"
	"github.com/lepinkainen/readersrealm/internal/recommend"
	"github.com/lepinkainen/readersrealm/internal/textproc"
)

type searchCall struct {
	query string
	limit int
}

type fakeUpstream struct {
	searches     map[string]*openlibrary.SearchResponse
	searchErrs   map[string]error
	authorSearch *openlibrary.AuthorSearchResponse
	works        map[string]*openlibrary.Work
	workErrs     map[string]error
	authors      map[string]openlibrary.Author
	authorWorks  map[string]*openlibrary.AuthorWorksResponse
	pingErr      error

	searchCalls []searchCall
}

func (f *fakeUpstream) SearchTitle(_ context.Context, query string, limit int) (*openlibrary.SearchResponse, error) {
	f.searchCalls = append(f.searchCalls, searchCall{query: query, limit: limit})
	if err := f.searchErrs[query]; err != nil {
		return nil, err
	}
	if res, ok := f.searches[query]; ok {
		return res, nil
	}
	return &openlibrary.SearchResponse{}, nil
}

func (f *fakeUpstream) SearchAuthors(context.Context, string) (*openlibrary.AuthorSearchResponse, error) {
	if f.authorSearch == nil {
		return &openlibrary.AuthorSearchResponse{}, nil
	}
	return f.authorSearch, nil
}

func (f *fakeUpstream) Work(_ context.Context, key string) (*openlibrary.Work, error) {
	p := openlibrary.WorkPath(key)
	if err := f.workErrs[p]; err != nil {
		return nil, err
	}
	if w, ok := f.works[p]; ok {
		return w, nil
	}
	return nil, openlibrary.ErrNotFound
}

func (f *fakeUpstream) Author(_ context.Context, key string) (openlibrary.Author, error) {
	if a, ok := f.authors[openlibrary.AuthorPath(key)]; ok {
		return a, nil
	}
	return nil, openlibrary.ErrNotFound
}

func (f *fakeUpstream) AuthorWorks(_ context.Context, key string) (*openlibrary.AuthorWorksResponse, error) {
	if res, ok := f.authorWorks[openlibrary.AuthorPath(key)]; ok {
		return res, nil
	}
	return nil, openlibrary.ErrNotFound
}

func (f *fakeUpstream) Ping(context.Context) error { return f.pingErr }

func (f *fakeUpstream) CoverURL(coverID int, size string) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf("https://covers.test/b/id/%d-%s.jpg", coverID, size)
}

func newTestService(t *testing.T, up Upstream, opts Options) *Service {
	t.Helper()
	engine, err := textproc.NewEngine(textproc.Options{Extractor: textproc.ExtractorHeuristic})
	require.NoError(t, err)
	return NewService(up,
		authors.NewDisambiguator(engine, authors.DefaultThreshold),
		genres.NewClusterer(engine, genres.DefaultTopN, genres.DefaultThreshold),
		recommend.NewEngine(engine, 2),
		opts,
	)
}

func intPtr(v int) *int { return &v }

func duneUpstream() *fakeUpstream {
	return &fakeUpstream{
		searches: map[string]*openlibrary.SearchResponse{
			"key:/works/OL1W": {Docs: []openlibrary.SearchDoc{
				{Key: "/works/OL1W", Language: []string{"eng", "fre"}},
			}},
			"science fiction": {Docs: []openlibrary.SearchDoc{
				{Key: "/works/OL1W", Title: "Dune"},
				{Key: "/works/OL2W", Title: "Spice Wars"},
				{Key: "/works/OL3W", Title: "Paris Nights"},
				{Key: "/works/OL4W", Title: "Blank"},
			}},
		},
		works: map[string]*openlibrary.Work{
			"/works/OL1W": {
				Key:         "/works/OL1W",
				Title:       "Dune",
				Description: "A desert planet, spice and an empire.",
				Subjects:    []string{"Science fiction", "Science Fiction", "Fiction", "Deserts"},
				Covers:      []int{42},
				Authors: []openlibrary.WorkAuthor{
					workAuthor("/authors/OL1A"),
					workAuthor("/authors/OL9A"),
				},
				FirstPublishDate: "1965",
			},
			"/works/OL2W": {Key: "/works/OL2W", Description: map[string]any{"type": "/type/text", "value": "Desert planet spice war."}},
			"/works/OL3W": {Key: "/works/OL3W", Description: "Romance in Paris."},
			"/works/OL4W": {Key: "/works/OL4W"},
		},
		authors: map[string]openlibrary.Author{
			"/authors/OL1A": {"name": "Frank Herbert"},
		},
	}
}

func workAuthor(key string) openlibrary.WorkAuthor {
	var wa openlibrary.WorkAuthor
	wa.Author.Key = key
	return wa
}

func TestSearchTitles(t *testing.T) {
	up := &fakeUpstream{searches: map[string]*openlibrary.SearchResponse{
		"dune": {Docs: []openlibrary.SearchDoc{
			{Key: "/works/OL1W", Title: "Dune", AuthorName: []string{"Frank Herbert", "Brian Herbert"}, FirstPublishYear: intPtr(1965), CoverI: intPtr(7)},
			{Key: "/works/OL2W"},
		}},
	}}
	svc := newTestService(t, up, Options{})

	hits, err := svc.SearchTitles(context.Background(), "dune")
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "Frank Herbert, Brian Herbert", hits[0].Author)
	assert.Equal(t, 1965, *hits[0].FirstPublishYear)
	assert.Equal(t, 7, *hits[0].CoverID)

	assert.Equal(t, book.NotAvailable, hits[1].Title)
	assert.Equal(t, book.NotAvailable, hits[1].Author)
	assert.Nil(t, hits[1].FirstPublishYear)
	assert.Nil(t, hits[1].CoverID)
}

func TestSearchTitlesNoResults(t *testing.T) {
	svc := newTestService(t, &fakeUpstream{}, Options{})

	_, err := svc.SearchTitles(context.Background(), "")
	require.ErrorIs(t, err, ErrNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "No results found", nf.Message)
}

func TestSearchTitlesUpstreamFailure(t *testing.T) {
	up := &fakeUpstream{searchErrs: map[string]error{"dune": openlibrary.ErrUnavailable}}
	svc := newTestService(t, up, Options{})

	_, err := svc.SearchTitles(context.Background(), "dune")
	require.ErrorIs(t, err, ErrUpstream)
	require.ErrorIs(t, err, openlibrary.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestSearchAuthors(t *testing.T) {
	up := &fakeUpstream{authorSearch: &openlibrary.AuthorSearchResponse{Docs: []openlibrary.AuthorDoc{
		{Key: "OL1A", Name: "Stephen King"},
		{Key: "OL2A", Name: "Stephen King"},
		{Key: "OL3A"},
		{Key: "OL4A", Name: "Richard Bachman"},
	}}}
	svc := newTestService(t, up, Options{})

	got, err := svc.SearchAuthors(context.Background(), "king")
	require.NoError(t, err)
	assert.Equal(t, []book.CanonicalAuthor{
		{Name: "Stephen King", Key: "OL1A"},
		{Name: "Richard Bachman", Key: "OL4A"},
	}, got)
}

func TestSearchAuthorsNoEntities(t *testing.T) {
	up := &fakeUpstream{authorSearch: &openlibrary.AuthorSearchResponse{Docs: []openlibrary.AuthorDoc{
		{Key: "OL1A", Name: "anonymous"},
	}}}
	svc := newTestService(t, up, Options{})

	_, err := svc.SearchAuthors(context.Background(), "anon")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestBook(t *testing.T) {
	svc := newTestService(t, duneUpstream(), Options{})

	detail, err := svc.Book(context.Background(), "OL1W", false)
	require.NoError(t, err)

	assert.Equal(t, "/works/OL1W", detail.Key)
	assert.Equal(t, "Dune", detail.Title)
	assert.Equal(t, "A desert planet, spice and an empire.", detail.Description)
	assert.Equal(t, []string{"science fiction", "fiction", "deserts"}, detail.Genres)
	assert.Equal(t, []string{"Frank Herbert"}, detail.AuthorNames)
	assert.Equal(t, "https://covers.test/b/id/42-L.jpg", detail.CoverImage)
	assert.InDelta(t, 4.5, detail.Rating, 1e-9)
	assert.Equal(t, "1965", detail.FirstPublishDate)
	assert.Nil(t, detail.Recommendations)
}

func TestBookNotEnglish(t *testing.T) {
	up := duneUpstream()
	up.searches["key:/works/OL1W"] = &openlibrary.SearchResponse{Docs: []openlibrary.SearchDoc{
		{Key: "/works/OL1W", Language: []string{"fre"}},
	}}
	svc := newTestService(t, up, Options{})

	_, err := svc.Book(context.Background(), "OL1W", false)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Book not available in English", err.Error())
}

func TestBookLanguageLookupFailureAllows(t *testing.T) {
	up := duneUpstream()
	up.searchErrs = map[string]error{"key:/works/OL1W": openlibrary.ErrUnavailable}
	svc := newTestService(t, up, Options{})

	detail, err := svc.Book(context.Background(), "OL1W", false)
	require.NoError(t, err)
	assert.Equal(t, "Dune", detail.Title)
}

func TestBookErrors(t *testing.T) {
	up := duneUpstream()
	up.workErrs = map[string]error{"/works/OL5W": fmt.Errorf("%w: boom", openlibrary.ErrUnavailable)}
	svc := newTestService(t, up, Options{})

	_, err := svc.Book(context.Background(), "OL404W", false)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Book not found", err.Error())

	_, err = svc.Book(context.Background(), "OL5W", false)
	require.ErrorIs(t, err, ErrUpstream)
}

func TestBookWithRecommendations(t *testing.T) {
	up := duneUpstream()
	svc := newTestService(t, up, Options{CandidateLimit: 10})

	detail, err := svc.Book(context.Background(), "/works/OL1W", true)
	require.NoError(t, err)

	keys := make([]string, 0, len(detail.Recommendations))
	for _, rec := range detail.Recommendations {
		keys = append(keys, rec.Key)
	}
	assert.Equal(t, []string{"/works/OL2W", "/works/OL3W"}, keys)
	assert.Contains(t, up.searchCalls, searchCall{query: "science fiction", limit: 10})
}

func TestBookRecommendationsWithoutBaseDescription(t *testing.T) {
	up := duneUpstream()
	up.works["/works/OL1W"].Description = nil
	svc := newTestService(t, up, Options{})

	detail, err := svc.Book(context.Background(), "OL1W", true)
	require.NoError(t, err)
	assert.NotNil(t, detail.Recommendations)
	assert.Empty(t, detail.Recommendations)
}

func TestBookRecommendationsCandidateSearchFails(t *testing.T) {
	up := duneUpstream()
	up.searchErrs = map[string]error{"science fiction": openlibrary.ErrUnavailable}
	svc := newTestService(t, up, Options{})

	detail, err := svc.Book(context.Background(), "OL1W", true)
	require.NoError(t, err)
	assert.Empty(t, detail.Recommendations)
}

func TestAuthorAndWorks(t *testing.T) {
	up := &fakeUpstream{
		authors: map[string]openlibrary.Author{"/authors/OL1A": {"name": "Frank Herbert", "birth_date": "1920"}},
		authorWorks: map[string]*openlibrary.AuthorWorksResponse{"/authors/OL1A": {Entries: []openlibrary.AuthorWork{
			{Key: "/works/OL1W", Title: "Dune"},
			{Key: "/works/OL2W"},
		}}},
	}
	svc := newTestService(t, up, Options{})

	author, err := svc.Author(context.Background(), "OL1A")
	require.NoError(t, err)
	assert.Equal(t, "1920", author["birth_date"])

	works, err := svc.AuthorWorks(context.Background(), "OL1A")
	require.NoError(t, err)
	assert.Equal(t, []book.WorkRef{
		{Title: "Dune", Key: "/works/OL1W"},
		{Title: book.NotAvailable, Key: "/works/OL2W"},
	}, works)

	_, err = svc.Author(context.Background(), "OL404A")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Author not found", err.Error())

	_, err = svc.AuthorWorks(context.Background(), "OL404A")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHighestRated(t *testing.T) {
	docs := make([]openlibrary.SearchDoc, 12)
	for i := range docs {
		docs[i] = openlibrary.SearchDoc{Key: fmt.Sprintf("/works/OL%dW", i), Title: fmt.Sprintf("Book %d", i)}
	}
	up := &fakeUpstream{searches: map[string]*openlibrary.SearchResponse{"fiction": {Docs: docs}}}
	svc := newTestService(t, up, Options{})

	hits, err := svc.HighestRated(context.Background())
	require.NoError(t, err)
	require.Len(t, hits, 10)
	for i, hit := range hits {
		assert.Equal(t, fmt.Sprintf("/works/OL%dW", i), hit.Key)
		require.NotNil(t, hit.Rating)
		assert.InDelta(t, 4.5, *hit.Rating, 1e-9)
	}
	assert.Equal(t, []searchCall{{query: "fiction", limit: 10}}, up.searchCalls)
}

func TestCandidateSet(t *testing.T) {
	base := book.SearchHit{Key: "/works/B"}
	got := candidateSet(base, []book.SearchHit{
		{Key: "/works/X"},
		{Key: "/works/B"},
		{Key: ""},
		{Key: "/works/X"},
		{Key: "/works/Y"},
	})

	keys := make([]string, 0, len(got))
	for _, hit := range got {
		keys = append(keys, hit.Key)
	}
	assert.Equal(t, []string{"/works/B", "/works/X", "/works/Y"}, keys)
}

func TestPing(t *testing.T) {
	up := &fakeUpstream{pingErr: openlibrary.ErrUnavailable}
	svc := newTestService(t, up, Options{})
	require.ErrorIs(t, svc.Ping(context.Background()), openlibrary.ErrUnavailable)
	assert.True(t, svc.RecommendationsEnabled())
}

func TestPrimaryErrorPassesContextErrors(t *testing.T) {
	err := primaryError(context.Canceled, "x")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUpstream)
}
