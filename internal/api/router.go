package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/viewer"
)

// Options configures the router.
type Options struct {
	AuthEnabled bool
	Token       string
	// Events, if non-nil, is mounted at GET /api/events.
	Events http.Handler
	// Metrics, if non-nil, is mounted at GET /metrics.
	Metrics http.Handler
	// LiveReload makes the page subscribe to Events.
	LiveReload bool
	Title      string
}

// NewRouter returns the page, asset and API routes.
func NewRouter(svc *viewer.Service, opts Options) chi.Router {
	h := NewHandler(svc, opts)

	r := chi.NewRouter()
	r.Get("/", h.Page)
	r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServerFS(render.Assets())))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(opts.AuthEnabled, opts.Token))

		r.Post("/documents", h.Upload)
		r.Get("/documents", h.ListDocuments)
		r.Get("/document", h.GetDocument)
		r.Get("/loads", h.ListLoads)

		if opts.Events != nil {
			r.Get("/events", opts.Events.ServeHTTP)
		}
	})

	return r
}
