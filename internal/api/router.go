// Package api exposes the catalog service as JSON over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lepinkainen/readersrealm/internal/book"
	"github.com/lepinkainen/readersrealm/internal/openlibrary"
)

// Catalog is the service the handlers delegate to. *catalog.Service
// satisfies it.
type Catalog interface {
	SearchTitles(ctx context.Context, query string) ([]book.SearchHit, error)
	SearchAuthors(ctx context.Context, query string) ([]book.CanonicalAuthor, error)
	Book(ctx context.Context, key string, withRecommendations bool) (*book.WorkDetail, error)
	Author(ctx context.Context, key string) (openlibrary.Author, error)
	AuthorWorks(ctx context.Context, key string) ([]book.WorkRef, error)
	HighestRated(ctx context.Context) ([]book.SearchHit, error)
	Ping(ctx context.Context) error
}

// Options configure the HTTP layer.
type Options struct {
	// CORSOrigins lists allowed origins; empty allows all.
	CORSOrigins []string
	// Recommendations attaches recommendations on /api/book/works/{key}.
	Recommendations bool
}

// Server holds the handlers.
type Server struct {
	catalog         Catalog
	corsOrigins     []string
	recommendations bool
}

// NewServer returns a Server backed by c.
func NewServer(c Catalog, opts Options) *Server {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{
		catalog:         c,
		corsOrigins:     origins,
		recommendations: opts.Recommendations,
	}
}

// Handler builds the chi router with the middleware stack and all routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	// Original route names
	r.Get("/search", s.search("query"))
	r.Get("/book/*", s.bookDetail)
	r.Get("/highest_rated", s.highestRated)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.search("q"))
		r.Get("/book/works/{key}", s.workDetail)
		r.Get("/authors/{key}", s.authorDetail)
		r.Get("/author/{key}/works", s.authorWorks)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "route not found")
	})

	return r
}
