// Package book holds the request-scoped records passed between the catalog
// client, the text-processing components and the HTTP layer.
package book

import "strings"

// Placeholder used for missing display fields in upstream documents.
const NotAvailable = "N/A"

// SearchHit is one work matched by a title search.
type SearchHit struct {
	Title            string   `json:"title"`
	Author           string   `json:"author"`
	FirstPublishYear *int     `json:"first_publish_year"`
	Key              string   `json:"key"`
	CoverID          *int     `json:"cover_id"`
	Languages        []string `json:"languages,omitempty"`

	// Rating is only set by listings that rank by rating.
	Rating *float64 `json:"rating,omitempty"`
}

// HasLanguage reports whether the hit lists the given language code.
func (h SearchHit) HasLanguage(code string) bool {
	for _, lang := range h.Languages {
		if strings.EqualFold(lang, code) {
			return true
		}
	}
	return false
}

// AuthorHit is one document of an author search.
type AuthorHit struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// CanonicalAuthor is the deduplicated representative of one author.
// Name is the extracted person entity, not necessarily the raw display name.
type CanonicalAuthor struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// WorkDetail is a work enriched with cover, genres and author names.
type WorkDetail struct {
	Key              string      `json:"key"`
	Title            string      `json:"title"`
	Description      string      `json:"description,omitempty"`
	Subjects         []string    `json:"subjects"`
	Genres           []string    `json:"genres"`
	AuthorNames      []string    `json:"author_names"`
	AuthorKeys       []string    `json:"-"`
	CoverImage       string      `json:"cover_image,omitempty"`
	Rating           float64     `json:"rating"`
	FirstPublishDate string      `json:"first_publish_date,omitempty"`
	Recommendations  []SearchHit `json:"recommendations,omitempty"`
}

// Hit returns the search-hit view of the work.
func (w WorkDetail) Hit() SearchHit {
	author := NotAvailable
	if len(w.AuthorNames) > 0 {
		author = strings.Join(w.AuthorNames, ", ")
	}
	return SearchHit{
		Title:  w.Title,
		Author: author,
		Key:    w.Key,
	}
}

// WorkRef is a single entry of an author's works listing.
type WorkRef struct {
	Title string `json:"title"`
	Key   string `json:"key"`
}
