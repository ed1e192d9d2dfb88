// Package source resolves a document locator to raw bytes, either over HTTP
// or from the local document directory.
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/metrics"
	"github.com/starford/aquatrack/internal/storage"
)

// DefaultMaxBytes caps the size of a fetched document.
const DefaultMaxBytes = 16 << 20

// Fetcher loads documents. Dir may be nil, in which case only HTTP locators
// resolve.
type Fetcher struct {
	Client   *http.Client
	Dir      storage.Provider
	Metrics  *metrics.Metrics
	MaxBytes int64
}

// New returns a Fetcher using client (http.DefaultClient when nil).
func New(client *http.Client, dir storage.Provider, m *metrics.Metrics) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{Client: client, Dir: dir, Metrics: m, MaxBytes: DefaultMaxBytes}
}

// Fetch returns the bytes behind locator. http and https URLs are fetched
// with a GET; anything without a scheme is a path inside the document
// directory. Every failure wraps apperr.ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(locator))
	if err != nil {
		return nil, fmt.Errorf("%w: parse locator %q: %w", apperr.ErrTransport, locator, err)
	}
	start := time.Now()
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err := f.get(ctx, u)
		f.Metrics.Fetch(strings.ToLower(u.Scheme), time.Since(start).Seconds())
		return data, err
	case "":
		data, err := f.local(u.Path)
		f.Metrics.Fetch("file", time.Since(start).Seconds())
		return data, err
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", apperr.ErrTransport, u.Scheme)
	}
}

func (f *Fetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned %s", apperr.ErrTransport, u.Redacted(), resp.Status)
	}
	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", apperr.ErrTransport, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", apperr.ErrTransport, u.Redacted(), limit)
	}
	return data, nil
}

func (f *Fetcher) local(path string) ([]byte, error) {
	if f.Dir == nil {
		return nil, fmt.Errorf("%w: no document directory for %q", apperr.ErrTransport, path)
	}
	path = strings.TrimLeft(path, "/")
	data, err := f.Dir.Read(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrTransport, err)
	}
	return data, nil
}
