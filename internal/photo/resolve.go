// Package photo resolves photo locations and orders photos for display.
package photo

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/starford/aquatrack/internal/models"
)

var absoluteRe = regexp.MustCompile(`(?i)^(?:[a-z]+:)?//`)

// Resolver turns stored photo URLs into absolute URLs. Page is the location
// the page was served from; relative bases are resolved against it.
type Resolver struct {
	Page *url.URL
}

// Resolve combines raw with the override base if set, else the document base.
// Absolute, protocol-relative and data: URLs are returned unchanged, as is
// raw when neither base is set.
func (r Resolver) Resolve(raw string, override, document models.Field) string {
	if raw == "" {
		return ""
	}
	trimmed := strings.TrimSpace(raw)
	if absoluteRe.MatchString(trimmed) || strings.HasPrefix(trimmed, "data:") {
		return trimmed
	}

	base := document
	if override.Set {
		base = override
	}
	if !base.Set || base.Text == "" {
		return trimmed
	}

	if resolved, ok := r.join(base.Text, trimmed); ok {
		return resolved
	}
	return strings.TrimSuffix(base.Text, "/") + "/" + strings.TrimPrefix(trimmed, "/")
}

func (r Resolver) join(base, ref string) (string, bool) {
	b, err := url.Parse(base)
	if err != nil {
		return "", false
	}
	if !b.IsAbs() {
		if r.Page == nil {
			return "", false
		}
		b = r.Page.ResolveReference(b)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return "", false
	}
	return b.ResolveReference(u).String(), true
}
