package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/storage"
)

func TestFetch_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tank.json":
			if r.Header.Get("Accept") != "application/json" {
				t.Errorf("Accept = %q", r.Header.Get("Accept"))
			}
			_, _ = w.Write([]byte(`{"tank":{"name":"Nano"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := New(srv.Client(), nil, nil)
	data, err := f.Fetch(context.Background(), srv.URL+"/tank.json")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"tank":{"name":"Nano"}}` {
		t.Errorf("body = %q", data)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.json"); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("404 err = %v, want ErrTransport", err)
	}
}

func TestFetch_SizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"notes":"0123456789"}`))
	}))
	defer srv.Close()

	f := New(srv.Client(), nil, nil)
	f.MaxBytes = 8
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("oversized err = %v", err)
	}
}

func TestFetch_Local(t *testing.T) {
	dir, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := dir.Write("tanks/nano.json", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	f := New(nil, dir, nil)

	for _, loc := range []string{"tanks/nano.json", "/tanks/nano.json", "./tanks/nano.json?v=2"} {
		data, err := f.Fetch(context.Background(), loc)
		if err != nil || string(data) != `{}` {
			t.Errorf("Fetch(%q) = %q, %v", loc, data, err)
		}
	}

	_, err = f.Fetch(context.Background(), "missing.json")
	if !errors.Is(err, apperr.ErrTransport) || !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing err = %v", err)
	}
	if _, err := f.Fetch(context.Background(), "../escape.json"); !errors.Is(err, apperr.ErrTransport) {
		t.Errorf("traversal err = %v", err)
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	f := New(nil, nil, nil)
	for _, loc := range []string{"ftp://host/tank.json", "file:///etc/passwd"} {
		if _, err := f.Fetch(context.Background(), loc); !errors.Is(err, apperr.ErrTransport) {
			t.Errorf("Fetch(%q) err = %v", loc, err)
		}
	}
	if _, err := f.Fetch(context.Background(), "tank.json"); err == nil {
		t.Error("local fetch without a directory should fail")
	}
}
