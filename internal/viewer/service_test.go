package viewer_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/lightbox"
	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/testutil"
	"github.com/starford/aquatrack/internal/viewer"
)

const photoDoc = `{
	"tank": {"name": "Nano"},
	"photosBase": "https://cdn.example/",
	"photos": [{"url": "a.jpg", "caption": "Front"}, {"url": "b.jpg"}]
}`

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestQueryFrom(t *testing.T) {
	q := viewer.QueryFrom(url.Values{"data": {"https://x/t.json"}, "base": {""}})
	if q.Data != "https://x/t.json" || !q.Base.Set || q.Base.Text != "" {
		t.Errorf("query = %+v", q)
	}
	if q := viewer.QueryFrom(url.Values{}); q.Base.Set {
		t.Error("absent base should stay unset")
	}
}

func TestLoad_FallsBackToBundled(t *testing.T) {
	svc, _ := testutil.Viewer(t, testutil.DocDir(t), nil)
	res := svc.Load(context.Background(), mustURL(t, "/"))
	if res.Origin != loader.OriginBundled {
		t.Fatalf("origin = %q", res.Origin)
	}
	v := svc.Render(res, mustURL(t, "/"), render.PageMeta{})
	if !v.Context.HasData || v.Context.Region(render.SectionTank).Hidden {
		t.Error("bundled page should show the tank")
	}
	last := v.Page.Status[len(v.Page.Status)-1]
	if last.Tone != models.ToneWarning {
		t.Errorf("status = %+v", v.Page.Status)
	}
}

func TestLoad_DefaultPathFromDirectory(t *testing.T) {
	dir := testutil.DocDir(t)
	testutil.WriteDoc(t, dir, loader.DefaultPath, photoDoc)
	svc, _ := testutil.Viewer(t, dir, nil)

	res := svc.Load(context.Background(), nil)
	if res.Origin != loader.OriginDefaultPath || res.Document.Tank.Name.Text != "Nano" {
		t.Fatalf("result = %+v", res)
	}
	if cur := svc.Current(context.Background()); cur.Origin != loader.OriginDefaultPath {
		t.Errorf("current origin = %q", cur.Origin)
	}
}

func TestRender_PhotoParamOpensLightbox(t *testing.T) {
	dir := testutil.DocDir(t)
	testutil.WriteDoc(t, dir, "tank.json", photoDoc)
	svc, _ := testutil.Viewer(t, dir, nil)

	page := mustURL(t, "/?data=tank.json&photo=photo-0")
	res := svc.Load(context.Background(), page)
	v := svc.Render(res, page, render.PageMeta{})
	if !v.Context.Lightbox.IsOpen() || v.Context.Overlay.Src != "https://cdn.example/a.jpg" {
		t.Fatalf("overlay = %+v", v.Context.Overlay)
	}
	if v.Context.Overlay.Caption != "Front" || v.Context.Overlay.CaptionHidden {
		t.Error("caption should be shown")
	}
	if v.Context.Overlay.Focused != lightbox.ElementID {
		t.Errorf("focus = %q", v.Context.Overlay.Focused)
	}
	if v.Page.CloseHref != "?data=tank.json&focus=photo-0#photo-0" {
		t.Errorf("close href = %q", v.Page.CloseHref)
	}
}

func TestRender_FocusParamRestoresTrigger(t *testing.T) {
	dir := testutil.DocDir(t)
	testutil.WriteDoc(t, dir, "tank.json", photoDoc)
	svc, _ := testutil.Viewer(t, dir, nil)

	page := mustURL(t, "/?data=tank.json&focus=preview-1")
	v := svc.Render(svc.Load(context.Background(), page), page, render.PageMeta{})
	if v.Context.Lightbox.IsOpen() || v.Context.Overlay.Visible {
		t.Error("lightbox should be closed")
	}
	if v.Context.Overlay.Focused != "preview-1" {
		t.Errorf("focus = %q", v.Context.Overlay.Focused)
	}
	if v.Page.BodyClass() != "" {
		t.Errorf("body class = %q", v.Page.BodyClass())
	}

	page = mustURL(t, "/?data=tank.json&photo=missing")
	v = svc.Render(svc.Load(context.Background(), page), page, render.PageMeta{})
	if v.Context.Lightbox.IsOpen() {
		t.Error("unknown trigger should not open the lightbox")
	}
}

func TestUpload(t *testing.T) {
	svc, db := testutil.Viewer(t, testutil.DocDir(t), nil)

	res, err := svc.Upload(context.Background(), loader.File{Name: "mine.json", ContentType: "application/json", Body: []byte(photoDoc)}, nil)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if res.Origin != loader.OriginFile {
		t.Errorf("origin = %q", res.Origin)
	}
	if v, err := db.Get(cache.KeyLastFile); err != nil || v != photoDoc {
		t.Errorf("cached file = %q, %v", v, err)
	}
	if cur := svc.Current(context.Background()); cur.Source != "mine.json" {
		t.Errorf("current source = %q", cur.Source)
	}

	_, err = svc.Upload(context.Background(), loader.File{Name: "x.png", ContentType: "image/png"}, nil)
	if !errors.Is(err, apperr.ErrUnsupportedType) {
		t.Errorf("err = %v", err)
	}
	if cur := svc.Current(context.Background()); cur.Source != "mine.json" {
		t.Error("failed upload replaced the current document")
	}
}

func TestWritePage(t *testing.T) {
	svc, _ := testutil.Viewer(t, testutil.DocDir(t), nil)
	var buf bytes.Buffer
	if _, err := svc.WritePage(context.Background(), &buf, mustURL(t, "/"), render.PageMeta{Title: "My tank"}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "<title>My tank</title>") || !strings.Contains(out, "Tetra Starter Line 54L") {
		t.Errorf("page output:\n%s", out)
	}
}

func TestDocumentsAndLoads(t *testing.T) {
	dir := testutil.DocDir(t)
	testutil.WriteDoc(t, dir, "a.json", "{}")
	testutil.WriteDoc(t, dir, "notes.txt", "x")
	svc, _ := testutil.Viewer(t, dir, nil)

	docs, err := svc.Documents()
	if err != nil || len(docs) != 1 || docs[0].Path != "a.json" {
		t.Fatalf("documents = %+v, %v", docs, err)
	}

	svc.Load(context.Background(), nil)
	loads, err := svc.Loads(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(loads) != 2 || loads[0].Origin != "bundled" || loads[1].Origin != "default-path" {
		t.Errorf("loads = %+v", loads)
	}
}
