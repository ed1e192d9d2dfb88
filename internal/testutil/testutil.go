// Package testutil provides shared test helpers for document directories,
// caches and fully wired viewer services.
package testutil

import (
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/format"
	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/source"
	"github.com/starford/aquatrack/internal/storage"
	"github.com/starford/aquatrack/internal/viewer"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// DocDir creates a temporary document directory.
func DocDir(t *testing.T) *storage.FS {
	t.Helper()
	dir, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

// WriteDoc writes body to path inside dir.
func WriteDoc(t *testing.T, dir storage.Provider, path, body string) {
	t.Helper()
	if err := dir.Write(path, []byte(body)); err != nil {
		t.Fatal(err)
	}
}

// Cache opens a temporary SQLite cache that is closed on cleanup.
func Cache(t *testing.T) *cache.SQLite {
	t.Helper()
	db, err := cache.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Viewer wires a viewer over dir with a fresh SQLite cache, a UTC en-US
// formatter and eager images. client may be nil.
func Viewer(t *testing.T, dir storage.Provider, client *http.Client) (*viewer.Service, *cache.SQLite) {
	t.Helper()
	db := Cache(t)
	logger := Logger()
	l := loader.New(
		source.New(client, dir, nil),
		cache.NewStore(db, logger, nil),
		loader.WithHistory(db),
		loader.WithLogger(logger),
	)
	r := render.NewRenderer(format.New(language.AmericanEnglish, time.UTC, "", ""), render.WithLazyImages(false))
	return viewer.NewService(viewer.Deps{Loader: l, Renderer: r, Dir: dir, History: db}), db
}
