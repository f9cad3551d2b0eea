package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

const searchTypeAuthor = "author"

// search serves both search routes. The query parameter name differs between
// them; any type other than "author" is a title search.
func (s *Server) search(param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get(param)

		if strings.EqualFold(r.URL.Query().Get("type"), searchTypeAuthor) {
			authors, err := s.catalog.SearchAuthors(r.Context(), query)
			if err != nil {
				respondCatalogError(w, r, err)
				return
			}
			respondJSON(w, http.StatusOK, authors)
			return
		}

		hits, err := s.catalog.SearchTitles(r.Context(), query)
		if err != nil {
			respondCatalogError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, hits)
	}
}

// bookDetail serves /book/*, where the wildcard is a bare id or a full key
// such as works/OL45883W.
func (s *Server) bookDetail(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if strings.TrimSpace(key) == "" {
		respondError(w, http.StatusNotFound, "Book not found")
		return
	}

	detail, err := s.catalog.Book(r.Context(), key, false)
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) workDetail(w http.ResponseWriter, r *http.Request) {
	detail, err := s.catalog.Book(r.Context(), chi.URLParam(r, "key"), s.recommendations)
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) authorDetail(w http.ResponseWriter, r *http.Request) {
	author, err := s.catalog.Author(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, author)
}

func (s *Server) authorWorks(w http.ResponseWriter, r *http.Request) {
	works, err := s.catalog.AuthorWorks(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, works)
}

func (s *Server) highestRated(w http.ResponseWriter, r *http.Request) {
	hits, err := s.catalog.HighestRated(r.Context())
	if err != nil {
		respondCatalogError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, hits)
}

// health answers "ok". With ?deep=1 it also pings Open Library and reports
// 503 when that fails.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if r.URL.Query().Get("deep") == "1" {
		if err := s.catalog.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("upstream unavailable"))
			return
		}
	}
	_, _ = w.Write([]byte("ok"))
}
