package render

import (
	"net/url"

	"github.com/starford/aquatrack/internal/format"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/photo"
)

// DefaultPreviewCount is the number of thumbnails in the preview strip.
const DefaultPreviewCount = 3

// Renderer writes document sections into a Context.
type Renderer struct {
	fmt          *format.Formatter
	lazy         bool
	previewCount int
}

// RendererOption configures a Renderer.
type RendererOption func(*Renderer)

// WithLazyImages controls deferred image loading.
func WithLazyImages(on bool) RendererOption {
	return func(r *Renderer) { r.lazy = on }
}

// WithPreviewCount sets the preview strip length.
func WithPreviewCount(n int) RendererOption {
	return func(r *Renderer) { r.previewCount = n }
}

// NewRenderer returns a Renderer using f for display strings.
func NewRenderer(f *format.Formatter, opts ...RendererOption) *Renderer {
	r := &Renderer{
		fmt:          f,
		lazy:         true,
		previewCount: DefaultPreviewCount,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Formatter returns the formatter in use.
func (r *Renderer) Formatter() *format.Formatter { return r.fmt }

// Options carries per-request render inputs.
type Options struct {
	// PhotosBase overrides the document's photosBase when set.
	PhotosBase models.Field
	// Page is the URL the page is served at.
	Page *url.URL
}

// Render clears ctx and renders every section of doc. It reports whether the
// page has data. A document with no tank details, residents, measurements,
// events or photos leaves every region hidden.
func (r *Renderer) Render(ctx *Context, doc *models.Document, opts Options) bool {
	ctx.Clear()
	if doc == nil {
		return false
	}

	tank := r.Tank(ctx, doc.Tank)
	residents := r.Residents(ctx, doc.Residents)
	r.Measurements(ctx, doc.Measurements)
	r.Events(ctx, doc.Events)
	r.Photos(ctx, doc.Photos, doc.PhotosBase, opts)

	substantive := tank || residents || len(doc.Measurements) > 0 || len(doc.Events) > 0 || len(doc.Photos) > 0
	if !substantive {
		ctx.Clear()
		return false
	}
	ctx.HasData = true
	return true
}

func (r *Renderer) resolver(opts Options) photo.Resolver {
	return photo.Resolver{Page: opts.Page}
}
