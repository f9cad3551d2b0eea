package textproc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExtractor(t *testing.T) {
	ex, err := NewExtractor("")
	require.NoError(t, err)
	assert.IsType(t, HeuristicExtractor{}, ex)

	ex, err = NewExtractor("Prose")
	require.NoError(t, err)
	assert.IsType(t, ProseExtractor{}, ex)

	_, err = NewExtractor("spacy")
	require.Error(t, err)
}

func TestHeuristicExtractor(t *testing.T) {
	ex := HeuristicExtractor{}

	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "empty", text: "", want: nil},
		{name: "full name", text: "Ursula K. Le Guin", want: []string{"Ursula K. Le Guin"}},
		{name: "initials spaced", text: "J. K. Rowling", want: []string{"J. K. Rowling"}},
		{name: "initials joined", text: "J.K. Rowling", want: []string{"J.K. Rowling"}},
		{name: "dates end the run", text: "Tolkien (1892-1973)", want: []string{"Tolkien"}},
		{name: "comma separates names", text: "Terry Pratchett, Neil Gaiman", want: []string{"Terry Pratchett", "Neil Gaiman"}},
		{name: "lowercase ignored", text: "anonymous", want: nil},
		{name: "lowercase splits runs", text: "Marie and Pierre Curie", want: []string{"Marie", "Pierre Curie"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ex.PersonEntities(tc.text))
		})
	}
}

func TestProseExtractorEmptyInput(t *testing.T) {
	assert.Nil(t, ProseExtractor{}.PersonEntities("   "))
}

var authorNames = []string{
	"Stephen King",
	"J. K. Rowling",
	"J.K. Rowling",
	"Mary Shelley",
	"Agatha Christie",
	"Terry Pratchett",
	"Toni Morrison",
	"Haruki Murakami",
	"George Orwell",
}

func TestDefaultExtractorFindsAuthorNames(t *testing.T) {
	ex, err := NewExtractor("")
	require.NoError(t, err)

	for _, name := range authorNames {
		assert.Equal(t, []string{name}, ex.PersonEntities(name), name)
	}
}

func TestProseExtractorAuthorNames(t *testing.T) {
	ex := ProseExtractor{}
	for _, name := range authorNames {
		got := ex.PersonEntities(name)
		require.NotEmpty(t, got, name)
		assert.Contains(t, name, got[0], name)
	}
}

func TestEngine(t *testing.T) {
	engine, err := NewEngine(Options{Extractor: ExtractorHeuristic, ExtraStopwords: []string{"novel"}})
	require.NoError(t, err)

	assert.Equal(t, "gripping", engine.Normalize("A gripping Novel"))
	assert.Equal(t, []string{"Mary Shelley"}, engine.PersonEntities("Mary Shelley"))
	assert.InDelta(t, 1.0, engine.Similarity("dune", "dune"), 1e-9)

	_, err = NewEngine(Options{Extractor: "nope"})
	require.Error(t, err)
}
