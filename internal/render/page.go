package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/url"
	"sort"
	"strings"

	"github.com/starford/aquatrack/internal/models"
)

//go:embed templates/page.html
var pageHTML string

//go:embed assets/*
var assets embed.FS

var pageTmpl = template.Must(template.New("page").Parse(pageHTML))

// Assets returns the static files served under /assets.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// Page is the template model for the full page.
type Page struct {
	Title      string
	Regions    []*Region
	HasData    bool
	Preview    []Thumb
	Overlay    *Overlay
	CloseHref  string
	Status     []models.Status
	LiveReload bool
	UploadURL  string
}

// PageMeta carries the page-level values that do not come from the document.
type PageMeta struct {
	Title      string
	Status     []models.Status
	LiveReload bool
	UploadURL  string
	URL        *url.URL
}

// NewPage assembles the template model from a rendered context.
func NewPage(ctx *Context, meta PageMeta) *Page {
	title := meta.Title
	if title == "" {
		title = "AquaTrack"
	}
	upload := meta.UploadURL
	if upload == "" {
		upload = "/api/documents"
	}
	return &Page{
		Title:      title,
		Regions:    ctx.Regions(),
		HasData:    ctx.HasData,
		Preview:    ctx.Preview,
		Overlay:    ctx.Overlay,
		CloseHref:  CloseHref(meta.URL, ctx.Lightbox.Opener()),
		Status:     meta.Status,
		LiveReload: meta.LiveReload,
		UploadURL:  upload,
	}
}

// BodyClass returns the classes for the body element.
func (p *Page) BodyClass() string {
	classes := make([]string, 0, len(p.Overlay.BodyClasses))
	for c := range p.Overlay.BodyClasses {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return strings.Join(classes, " ")
}

// ContentClass returns the classes for the content wrapper.
func (p *Page) ContentClass() string {
	if p.HasData {
		return "content has-data"
	}
	return "content"
}

// Write executes the page template.
func (p *Page) Write(w io.Writer) error {
	if err := pageTmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render: execute page: %w", err)
	}
	return nil
}
