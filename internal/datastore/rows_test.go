package datastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lepinkainen/readersrealm/internal/book"
)

func TestToRow(t *testing.T) {
	year := 1965
	hit := book.SearchHit{
		Title:            "Dune",
		Author:           "Frank Herbert",
		FirstPublishYear: &year,
		Key:              "/works/OL1W",
		Languages:        []string{"eng", "fre"},
	}

	row := ToRow(hit, RowOptions{
		OmitFields:       map[string]bool{"Rating": true},
		JoinStringSlices: true,
	})

	assert.Equal(t, map[string]any{
		"title":              "Dune",
		"author":             "Frank Herbert",
		"first_publish_year": 1965,
		"key":                "/works/OL1W",
		"cover_id":           nil,
		"languages":          "eng,fre",
	}, row)
}

func TestToRowOverridesAndPointers(t *testing.T) {
	type record struct {
		ID    int
		Name  string
		Tags  []string
		inner string
	}

	row := ToRow(&record{ID: 1, Name: "x", Tags: []string{"a"}, inner: "hidden"}, RowOptions{
		KeyOverrides: map[string]string{"ID": "pk"},
	})
	assert.Equal(t, map[string]any{"pk": 1, "name": "x", "tags": []string{"a"}}, row)

	var nilRecord *record
	assert.Empty(t, ToRow(nilRecord, RowOptions{}))
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"Title":            "title",
		"FirstPublishYear": "first_publish_year",
		"CoverID":          "cover_id",
		"HTTPServer":       "http_server",
		"Year2000Edition":  "year2000_edition",
		"":                 "",
	}
	for input, want := range tests {
		assert.Equal(t, want, toSnakeCase(input), input)
	}
}
