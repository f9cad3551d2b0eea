package openlibrary

import (
	"path"
	"strings"
)

// SearchDoc is one document of search.json. Every field is optional upstream.
type SearchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	AuthorKey        []string `json:"author_key"`
	FirstPublishYear *int     `json:"first_publish_year"`
	CoverI           *int     `json:"cover_i"`
	Language         []string `json:"language"`
}

// SearchResponse matches search.json.
type SearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []SearchDoc `json:"docs"`
}

// AuthorDoc is one document of search/authors.json.
type AuthorDoc struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	TopWork   string `json:"top_work"`
	WorkCount int    `json:"work_count"`
}

// AuthorSearchResponse matches search/authors.json.
type AuthorSearchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []AuthorDoc `json:"docs"`
}

// WorkAuthor is the author reference embedded in a work record.
type WorkAuthor struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

// Work matches works/{id}.json.
type Work struct {
	Key              string       `json:"key"`
	Title            string       `json:"title"`
	Description      any          `json:"description"` // string or {"type": ..., "value": ...}
	Subjects         []string     `json:"subjects"`
	Covers           []int        `json:"covers"`
	Authors          []WorkAuthor `json:"authors"`
	FirstPublishDate string       `json:"first_publish_date"`
}

// DescriptionText returns the description whichever form it was sent in.
func (w *Work) DescriptionText() string {
	switch v := w.Description.(type) {
	case string:
		return v
	case map[string]any:
		if val, ok := v["value"].(string); ok {
			return val
		}
	}
	return ""
}

// CoverID returns the first valid cover id, or 0.
func (w *Work) CoverID() int {
	for _, id := range w.Covers {
		if id > 0 {
			return id
		}
	}
	return 0
}

// AuthorKeys returns the keys of the work's authors in listed order.
func (w *Work) AuthorKeys() []string {
	keys := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		if a.Author.Key != "" {
			keys = append(keys, a.Author.Key)
		}
	}
	return keys
}

// Author is the raw authors/{id}.json document, passed through untouched.
type Author map[string]any

// Name returns the author's display name, or "".
func (a Author) Name() string {
	if name, ok := a["name"].(string); ok {
		return name
	}
	if name, ok := a["personal_name"].(string); ok {
		return name
	}
	return ""
}

// AuthorWork is one entry of authors/{id}/works.json.
type AuthorWork struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// AuthorWorksResponse matches authors/{id}/works.json.
type AuthorWorksResponse struct {
	Size    int          `json:"size"`
	Entries []AuthorWork `json:"entries"`
}

// WorkPath turns "OL45883W", "works/OL45883W" or "/works/OL45883W" into
// "/works/OL45883W".
func WorkPath(key string) string {
	return keyPath("works", key)
}

// AuthorPath turns an author id or key into "/authors/<id>".
func AuthorPath(key string) string {
	return keyPath("authors", key)
}

func keyPath(kind, key string) string {
	id := strings.Trim(strings.TrimSpace(key), "/")
	if id == "" {
		return ""
	}
	id = strings.TrimSuffix(path.Base(id), ".json")
	return "/" + kind + "/" + id
}
