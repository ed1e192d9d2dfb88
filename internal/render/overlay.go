package render

import (
	"html/template"

	"github.com/starford/aquatrack/internal/lightbox"
)

// Overlay is the server-side lightbox surface. Its fields feed the page
// template.
type Overlay struct {
	Src           string
	Alt           string
	Caption       string
	CaptionHidden bool
	Visible       bool
	Focused       string
	BodyClasses   map[string]bool

	ctx *Context
}

func newOverlay(ctx *Context) *Overlay {
	return &Overlay{CaptionHidden: true, BodyClasses: map[string]bool{}, ctx: ctx}
}

var _ lightbox.Surface = (*Overlay)(nil)

func (o *Overlay) SetImage(src, alt string) {
	o.Src, o.Alt = src, alt
}

func (o *Overlay) SetCaption(text string, hidden bool) {
	o.Caption, o.CaptionHidden = text, hidden
}

func (o *Overlay) SetVisible(v bool) {
	o.Visible = v
}

// Focus records id as the element to focus when it exists on the page.
func (o *Overlay) Focus(id string) bool {
	if id != lightbox.ElementID {
		if _, ok := o.ctx.Trigger(id); !ok {
			return false
		}
	}
	o.Focused = id
	return true
}

func (o *Overlay) SetBodyClass(name string, on bool) {
	if on {
		o.BodyClasses[name] = true
		return
	}
	delete(o.BodyClasses, name)
}

// SrcURL returns the image source for the template. Sources come from the
// photo resolver, which may legitimately produce data: URLs.
func (o *Overlay) SrcURL() template.URL {
	return template.URL(o.Src) //nolint:gosec // resolved photo URL
}
