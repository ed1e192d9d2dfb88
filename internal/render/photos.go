package render

import (
	"html/template"
	"net/url"
	"strconv"
	"strings"

	"github.com/starford/aquatrack/internal/lightbox"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/photo"
)

// DefaultAlt is used for photos without a caption.
const DefaultAlt = "Aquarium photo"

const metaSeparator = " • "

// Query parameters driving the server-side lightbox.
const (
	ParamPhoto = "photo"
	ParamFocus = "focus"
)

// Photos renders the photo grid newest first and fills the preview strip.
func (r *Renderer) Photos(ctx *Context, photos []models.Photo, documentBase models.Field, opts Options) bool {
	if len(photos) == 0 {
		ctx.show(SectionPhotos, emptyState(EmptyPhotos))
		return true
	}

	res := r.resolver(opts)
	ordered := photo.Order(photos, r.fmt)

	var b strings.Builder
	b.WriteString(`<div class="photo-grid">`)
	for _, e := range ordered {
		t := trigger("photo", e, res, opts.PhotosBase, documentBase)
		ctx.register(t)

		b.WriteString(`<figure class="photo-card">`)
		b.WriteString(triggerOpen(t, OpenHref(opts.Page, t.ID)))
		b.WriteString(r.image(t.Src, t.Alt))
		b.WriteString(`</a><figcaption>`)
		if e.Photo.Caption.Truthy {
			b.WriteString(`<span class="caption">` + esc(e.Photo.Caption.Text) + `</span>`)
		}
		if meta := r.photoMeta(e.Photo); len(meta) > 0 {
			escaped := make([]string, len(meta))
			for i, m := range meta {
				escaped[i] = esc(m)
			}
			b.WriteString(`<span class="meta">` + strings.Join(escaped, metaSeparator) + `</span>`)
		}
		b.WriteString(`</figcaption></figure>`)
	}
	b.WriteString(`</div>`)
	ctx.show(SectionPhotos, b.String())

	for _, e := range photo.Recent(ordered, r.previewCount) {
		t := trigger("preview", e, res, opts.PhotosBase, documentBase)
		ctx.register(t)
		ctx.Preview = append(ctx.Preview, Thumb{
			Trigger: t,
			Href:    OpenHref(opts.Page, t.ID),
			Image:   template.HTML(r.image(t.Src, t.Alt)), //nolint:gosec // attributes are escaped
		})
	}
	return true
}

func (r *Renderer) photoMeta(p models.Photo) []string {
	var meta []string
	if p.TakenAt.Truthy {
		meta = append(meta, r.fmt.Date(p.TakenAt))
	}
	if p.Resident.Truthy {
		meta = append(meta, p.Resident.Text)
	}
	return meta
}

func trigger(prefix string, e photo.Entry, res photo.Resolver, override, documentBase models.Field) lightbox.Trigger {
	alt := DefaultAlt
	caption := ""
	if e.Photo.Caption.Truthy {
		alt = e.Photo.Caption.Text
		caption = e.Photo.Caption.Text
	}
	return lightbox.Trigger{
		ID:      prefix + "-" + strconv.Itoa(e.Index),
		Src:     res.Resolve(e.Photo.URL.Or(""), override, documentBase),
		Alt:     alt,
		Caption: caption,
	}
}

func triggerOpen(t lightbox.Trigger, href string) string {
	return `<a class="photo-trigger" id="` + esc(t.ID) + `" href="` + esc(href) +
		`" data-full="` + esc(t.Src) + `" data-caption="` + esc(t.Caption) +
		`" data-alt="` + esc(t.Alt) + `">`
}

// image renders an img element. Lazy images carry their source in data-src
// for the page script, with an eager copy for clients without scripting.
func (r *Renderer) image(src, alt string) string {
	if !r.lazy {
		return `<img src="` + esc(src) + `" alt="` + esc(alt) + `">`
	}
	return `<img class="lazy" data-src="` + esc(src) + `" alt="` + esc(alt) + `" loading="lazy" decoding="async">` +
		`<noscript><img src="` + esc(src) + `" alt="` + esc(alt) + `"></noscript>`
}

// OpenHref links to the page with the lightbox open on id, keeping the
// other query parameters.
func OpenHref(page *url.URL, id string) string {
	q := query(page)
	q.Del(ParamFocus)
	q.Set(ParamPhoto, id)
	return "?" + q.Encode()
}

// CloseHref links back to the page with focus returned to opener.
func CloseHref(page *url.URL, opener string) string {
	q := query(page)
	q.Del(ParamPhoto)
	if opener == "" {
		q.Del(ParamFocus)
		return "?" + q.Encode()
	}
	q.Set(ParamFocus, opener)
	return "?" + q.Encode() + "#" + url.PathEscape(opener)
}

func query(page *url.URL) url.Values {
	if page == nil {
		return url.Values{}
	}
	return page.Query()
}
