// Package viewer ties the loader to the renderer for the HTTP, CLI and MCP
// surfaces.
package viewer

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/metrics"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/storage"
)

// Query parameters read from the page URL.
const (
	ParamData = "data"
	ParamBase = "base"
)

// Service renders pages from loaded documents and remembers the last one.
type Service struct {
	loader   *loader.Loader
	renderer *render.Renderer
	dir      storage.Provider
	history  cache.History
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	current loader.Result
}

// Deps are the collaborators of a Service. Dir, History and Metrics may be nil.
type Deps struct {
	Loader   *loader.Loader
	Renderer *render.Renderer
	Dir      storage.Provider
	History  cache.History
	Metrics  *metrics.Metrics
}

// NewService returns a Service over d.
func NewService(d Deps) *Service {
	return &Service{
		loader:   d.Loader,
		renderer: d.Renderer,
		dir:      d.Dir,
		history:  d.History,
		metrics:  d.Metrics,
	}
}

// Renderer returns the renderer in use.
func (s *Service) Renderer() *render.Renderer { return s.renderer }

// QueryFrom extracts the loader inputs from page query values.
func QueryFrom(v url.Values) loader.Query {
	q := loader.Query{Data: v.Get(ParamData)}
	if v.Has(ParamBase) {
		q.Base = models.Text(v.Get(ParamBase))
	}
	return q
}

// Load runs the source selection for page and records the result as current.
func (s *Service) Load(ctx context.Context, page *url.URL) loader.Result {
	var q loader.Query
	if page != nil {
		q = QueryFrom(page.Query())
	}
	res := s.loader.Init(ctx, q)
	s.setCurrent(res)
	return res
}

// Upload loads a user-supplied file. On success it becomes current.
func (s *Service) Upload(ctx context.Context, f loader.File, page *url.URL) (loader.Result, error) {
	var base models.Field
	if page != nil {
		base = QueryFrom(page.Query()).Base
	}
	res, err := s.loader.LoadFile(ctx, f, base)
	if err != nil {
		return res, fmt.Errorf("viewer: upload: %w", err)
	}
	s.setCurrent(res)
	return res, nil
}

// Current returns the last loaded result, loading with no query when nothing
// has been loaded yet.
func (s *Service) Current(ctx context.Context) loader.Result {
	s.mu.RLock()
	res := s.current
	s.mu.RUnlock()
	if res.Document != nil {
		return res
	}
	return s.Load(ctx, nil)
}

func (s *Service) setCurrent(res loader.Result) {
	if res.Document == nil {
		return
	}
	s.mu.Lock()
	s.current = res
	s.mu.Unlock()
}

// View is a rendered page plus the load it came from.
type View struct {
	Result  loader.Result
	Context *render.Context
	Page    *render.Page
}

// Render lays out res for page. The photo query parameter opens the
// lightbox on that trigger; focus opens and closes it so focus lands back on
// the trigger. extra status messages are shown after the load's own.
func (s *Service) Render(res loader.Result, page *url.URL, meta render.PageMeta, extra ...models.Status) *View {
	rctx := render.NewContext()
	s.renderer.Render(rctx, res.Document, render.Options{PhotosBase: res.Base, Page: page})
	s.metrics.Render()

	if page != nil {
		q := page.Query()
		if id := q.Get(render.ParamPhoto); id != "" {
			if t, ok := rctx.Trigger(id); ok {
				rctx.Lightbox.Open(t)
			}
		} else if id := q.Get(render.ParamFocus); id != "" {
			if t, ok := rctx.Trigger(id); ok {
				rctx.Lightbox.Open(t)
				rctx.Lightbox.Close()
			}
		}
	}

	meta.URL = page
	meta.Status = append(append([]models.Status{}, res.Status...), extra...)
	return &View{Result: res, Context: rctx, Page: render.NewPage(rctx, meta)}
}

// WritePage loads for page and writes the full markup to w.
func (s *Service) WritePage(ctx context.Context, w io.Writer, page *url.URL, meta render.PageMeta) (*View, error) {
	v := s.Render(s.Load(ctx, page), page, meta)
	if err := v.Page.Write(w); err != nil {
		return v, err
	}
	return v, nil
}

// Documents lists the JSON files in the document directory.
func (s *Service) Documents() ([]storage.DocumentInfo, error) {
	if s.dir == nil {
		return []storage.DocumentInfo{}, nil
	}
	docs, err := s.dir.List()
	if err != nil {
		return nil, fmt.Errorf("viewer: list documents: %w", err)
	}
	if docs == nil {
		docs = []storage.DocumentInfo{}
	}
	return docs, nil
}

// Loads returns recent load attempts, newest first.
func (s *Service) Loads(limit int) ([]cache.LoadRecord, error) {
	if s.history == nil {
		return []cache.LoadRecord{}, nil
	}
	recs, err := s.history.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("viewer: recent loads: %w", err)
	}
	if recs == nil {
		recs = []cache.LoadRecord{}
	}
	return recs, nil
}
