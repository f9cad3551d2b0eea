package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchHitHasLanguage(t *testing.T) {
	hit := SearchHit{Languages: []string{"fre", "ENG"}}
	assert.True(t, hit.HasLanguage("eng"))
	assert.False(t, hit.HasLanguage("ger"))
	assert.False(t, SearchHit{}.HasLanguage("eng"))
}

func TestWorkDetailHit(t *testing.T) {
	w := WorkDetail{Key: "/works/OL1W", Title: "Dune", AuthorNames: []string{"Frank Herbert", "Brian Herbert"}}
	hit := w.Hit()
	assert.Equal(t, "/works/OL1W", hit.Key)
	assert.Equal(t, "Dune", hit.Title)
	assert.Equal(t, "Frank Herbert, Brian Herbert", hit.Author)

	assert.Equal(t, NotAvailable, WorkDetail{Key: "k"}.Hit().Author)
}
