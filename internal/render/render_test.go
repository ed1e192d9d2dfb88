package render

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/text/language"

	"github.com/starford/aquatrack/internal/format"
	"github.com/starford/aquatrack/internal/lightbox"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/parser"
	"github.com/starford/aquatrack/internal/sample"
)

func testRenderer(opts ...RendererOption) *Renderer {
	return NewRenderer(format.New(language.AmericanEnglish, time.UTC, "", ""), opts...)
}

func mustParse(t *testing.T, src string) *models.Document {
	t.Helper()
	doc, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return doc
}

// textOf returns the concatenated text content of the parsed fragment.
func textOf(t *testing.T, fragment string) string {
	t.Helper()
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{Type: html.ElementNode, Data: "div"})
	if err != nil {
		t.Fatalf("parse fragment: %v", err)
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString("|")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return b.String()
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func TestRender_BundledDataset(t *testing.T) {
	ctx := NewContext()
	if !testRenderer().Render(ctx, sample.Document(), Options{}) {
		t.Fatal("bundled dataset should have data")
	}
	if !ctx.HasData {
		t.Error("HasData should be true")
	}
	for _, s := range []Section{SectionTank, SectionResidents, SectionEvents, SectionMeasurements} {
		if ctx.Region(s).Hidden {
			t.Errorf("%s should be visible", s)
		}
	}
	if body := string(ctx.Region(SectionMeasurements).Body); !strings.Contains(body, EmptyMeasurements) {
		t.Errorf("measurements body = %q", body)
	}

	residents := textOf(t, string(ctx.Region(SectionResidents).Body))
	plants := strings.Index(residents, "Plants|")
	anubias := strings.Index(residents, "Anubias nana|")
	crypto := strings.Index(residents, "Cryptocoryne affinis|")
	algae := strings.Index(residents, "Algae|")
	if plants < 0 || algae < plants || anubias < plants || crypto < anubias || algae < crypto {
		t.Errorf("unexpected resident layout: %q", residents)
	}

	events := string(ctx.Region(SectionEvents).Body)
	if strings.Count(events, "<tr>") != 4 {
		t.Errorf("events rows = %d, want header + 3", strings.Count(events, "<tr>"))
	}
	for _, label := range []string{"Setup", "Hardscape", "Planting"} {
		if !strings.Contains(events, label) {
			t.Errorf("events missing %q", label)
		}
	}

	tank := textOf(t, string(ctx.Region(SectionTank).Body))
	if !strings.Contains(tank, "54 L") || !strings.Contains(tank, "Oct 4, 2024") {
		t.Errorf("tank = %q", tank)
	}
}

func TestRender_NothingToShow(t *testing.T) {
	docs := []string{
		`{}`,
		`{"tank": {"name": " ", "notes": ""}, "residents": [], "measurements": [], "events": [], "photos": []}`,
	}
	for _, src := range docs {
		ctx := NewContext()
		if testRenderer().Render(ctx, mustParse(t, src), Options{}) {
			t.Errorf("%s: expected no data", src)
		}
		if ctx.HasData || ctx.Visible() {
			t.Errorf("%s: regions visible", src)
		}
	}
}

func TestTank_OmitsBlankEntries(t *testing.T) {
	ctx := NewContext()
	ok := testRenderer().Tank(ctx, &models.Tank{Name: models.Text("Nano"), Notes: models.Text("   ")})
	if !ok {
		t.Fatal("tank with a name should render")
	}
	body := textOf(t, string(ctx.Region(SectionTank).Body))
	if body != "Name|Nano|" {
		t.Errorf("tank body = %q", body)
	}
	if testRenderer().Tank(NewContext(), &models.Tank{}) {
		t.Error("empty tank should not render")
	}
}

func TestEscaping(t *testing.T) {
	doc := mustParse(t, `{
		"tank": {"name": "<script>alert(1)</script>"},
		"residents": [{"label": "<b>x</b>", "type": "<i>odd</i>"}],
		"events": [{"type": "note", "v1": "\"quoted\"", "notes": "a & b"}],
		"photos": [{"url": "p.jpg\" onerror=\"alert(1)", "caption": "<img src=x>"}]
	}`)
	ctx := NewContext()
	testRenderer().Render(ctx, doc, Options{})

	var buf bytes.Buffer
	if err := NewPage(ctx, PageMeta{}).Write(&buf); err != nil {
		t.Fatalf("write page: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<script>alert") || strings.Contains(out, "<b>x</b>") || strings.Contains(out, "<img src=x>") {
		t.Fatalf("unescaped markup in page:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;alert(1)&lt;/script&gt;") {
		t.Error("escaped tank name missing")
	}

	root, err := html.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	scripts := findAll(root, "script")
	if len(scripts) != 1 {
		t.Errorf("script elements = %d, want only the page script", len(scripts))
	}
	for _, img := range findAll(root, "img") {
		if _, ok := attr(img, "onerror"); ok {
			t.Error("attribute injection through photo url")
		}
	}
}

func TestResidents_GroupingAndHeadings(t *testing.T) {
	doc := mustParse(t, `{"residents": [
		{"label": "zebra", "type": "fish"},
		{"label": "Amano", "type": "shrimp"},
		{"label": "apple", "type": "fish"},
		{"label": "mystery"},
		{"label": "Bob", "type": "sponge"}
	]}`)
	r := testRenderer()
	groups := r.GroupResidents(doc.Residents)
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	if strings.Join(keys, ",") != "fish,shrimp,other,sponge" {
		t.Errorf("group order = %v", keys)
	}
	if groups[0].Entries[0].Label.Text != "apple" || groups[0].Entries[1].Label.Text != "zebra" {
		t.Errorf("fish not sorted case-insensitively: %+v", groups[0].Entries)
	}

	ctx := NewContext()
	r.Residents(ctx, doc.Residents)
	text := textOf(t, string(ctx.Region(SectionResidents).Body))
	for _, h := range []string{"Fish|", "Shrimp|", "Other|", "sponge|"} {
		if !strings.Contains(text, h) {
			t.Errorf("missing heading %q in %q", h, text)
		}
	}
}

func TestMeasurements_Placeholders(t *testing.T) {
	doc := mustParse(t, `{"measurements": [
		{"t": "2024-10-05T08:00:00Z", "ph": 6.8, "no3": 0},
		{"t": "2024-10-06T08:00:00Z", "temp": 24.5, "notes": "after change"}
	]}`)
	ctx := NewContext()
	testRenderer().Measurements(ctx, doc.Measurements)
	text := textOf(t, string(ctx.Region(SectionMeasurements).Body))
	first := "Oct 5, 2024 · 08:00 AM|6.8|—|—|—|0|—|—|—|"
	second := "Oct 6, 2024 · 08:00 AM|—|24.5|—|—|—|—|—|after change|"
	if !strings.Contains(text, first) || strings.Index(text, second) < strings.Index(text, first) {
		t.Errorf("measurement rows = %q", text)
	}
}

func TestEventLabel(t *testing.T) {
	tests := []struct {
		in   models.Field
		want string
	}{
		{models.Text("water_change"), "Water change"},
		{models.Text("remove_resident"), "Removed resident"},
		{models.Text("custom"), "custom"},
		{models.Field{}, "Event"},
	}
	for _, tt := range tests {
		if got := EventLabel(tt.in); got != tt.want {
			t.Errorf("EventLabel(%q) = %q, want %q", tt.in.Text, got, tt.want)
		}
	}
}

func TestEvents_DetailTag(t *testing.T) {
	doc := mustParse(t, `{"events": [{"t": "2024-10-04T09:00:00Z", "type": "dose", "v1": "5 ml"}, {"type": "note"}]}`)
	ctx := NewContext()
	testRenderer().Events(ctx, doc.Events)
	body := string(ctx.Region(SectionEvents).Body)
	if !strings.Contains(body, `<span class="tag">5 ml</span>`) {
		t.Errorf("detail tag missing: %s", body)
	}
	if !strings.Contains(textOf(t, body), "—|Note|—|—|") {
		t.Errorf("placeholders missing: %s", body)
	}
}

func TestPhotos_OrderPreviewAndMetadata(t *testing.T) {
	doc := mustParse(t, `{
		"photosBase": "https://cdn.example/tank/",
		"photos": [
			{"url": "a.jpg", "caption": "First", "takenAt": "2024-01-01", "resident": "Anubias"},
			{"url": "b.jpg"},
			{"url": "c.jpg", "caption": "Newest", "takenAt": "2024-06-01"},
			{"url": "https://other/d.jpg", "takenAt": "2024-03-01"}
		]
	}`)
	page, _ := url.Parse("http://localhost:8080/?data=tank.json")
	ctx := NewContext()
	testRenderer().Render(ctx, doc, Options{Page: page})

	if len(ctx.Preview) != DefaultPreviewCount {
		t.Fatalf("preview = %d, want %d", len(ctx.Preview), DefaultPreviewCount)
	}
	wantSrc := []string{"https://cdn.example/tank/c.jpg", "https://other/d.jpg", "https://cdn.example/tank/a.jpg"}
	for i, th := range ctx.Preview {
		if th.Trigger.Src != wantSrc[i] {
			t.Errorf("preview[%d] = %q, want %q", i, th.Trigger.Src, wantSrc[i])
		}
	}
	if ctx.Preview[0].Trigger.Caption != "Newest" || ctx.Preview[1].Trigger.Alt != DefaultAlt {
		t.Errorf("trigger metadata = %+v", ctx.Preview[:2])
	}
	if !strings.Contains(ctx.Preview[0].Href, "data=tank.json") || !strings.Contains(ctx.Preview[0].Href, "photo=preview-2") {
		t.Errorf("href = %q", ctx.Preview[0].Href)
	}

	body := string(ctx.Region(SectionPhotos).Body)
	if !strings.Contains(body, `Jan 1, 2024 • Anubias`) {
		t.Errorf("meta line missing: %s", body)
	}
	if strings.Index(body, "c.jpg") > strings.Index(body, "b.jpg") {
		t.Error("undated photo sorted before dated ones")
	}
	if !strings.Contains(body, `data-src="https://cdn.example/tank/c.jpg"`) {
		t.Error("lazy source missing")
	}
}

func TestPhotos_EagerImages(t *testing.T) {
	doc := mustParse(t, `{"photos": [{"url": "a.jpg"}]}`)
	ctx := NewContext()
	testRenderer(WithLazyImages(false)).Render(ctx, doc, Options{PhotosBase: models.Text("https://o/")})
	body := string(ctx.Region(SectionPhotos).Body)
	if !strings.Contains(body, `<img src="https://o/a.jpg"`) || strings.Contains(body, "data-src") {
		t.Errorf("eager body = %s", body)
	}
}

func TestPhotos_EmptyState(t *testing.T) {
	ctx := NewContext()
	testRenderer().Photos(ctx, nil, models.Field{}, Options{})
	if ctx.Region(SectionPhotos).Hidden || !strings.Contains(string(ctx.Region(SectionPhotos).Body), EmptyPhotos) {
		t.Error("photos empty state not shown")
	}
}

func TestLightboxPage(t *testing.T) {
	doc := mustParse(t, `{"photos": [{"url": "https://x/a.jpg", "caption": "Front"}]}`)
	page, _ := url.Parse("http://localhost/?photo=photo-0")
	ctx := NewContext()
	testRenderer().Render(ctx, doc, Options{Page: page})

	trig, ok := ctx.Trigger("photo-0")
	if !ok {
		t.Fatal("trigger not registered")
	}
	ctx.Lightbox.Open(trig)

	var buf bytes.Buffer
	if err := NewPage(ctx, PageMeta{URL: page}).Write(&buf); err != nil {
		t.Fatal(err)
	}
	root, err := html.Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	for _, d := range findAll(root, "div") {
		if id, _ := attr(d, "id"); id != lightbox.ElementID {
			continue
		}
		if _, hidden := attr(d, "hidden"); hidden {
			t.Error("lightbox should be visible")
		}
	}
	for _, b := range findAll(root, "body") {
		if cls, _ := attr(b, "class"); cls != lightbox.BodyClass {
			t.Errorf("body class = %q", cls)
		}
	}
	if !strings.Contains(buf.String(), `href="?focus=photo-0#photo-0"`) {
		t.Errorf("close link missing:\n%s", buf.String())
	}
}

func TestClearClosesLightbox(t *testing.T) {
	ctx := NewContext()
	testRenderer().Render(ctx, mustParse(t, `{"photos": [{"url": "a.jpg"}]}`), Options{})
	trig, _ := ctx.Trigger("photo-0")
	ctx.Lightbox.Open(trig)
	ctx.Clear()
	if ctx.Lightbox.IsOpen() || ctx.Overlay.Visible {
		t.Error("clear should close the lightbox")
	}
	if _, ok := ctx.Trigger("photo-0"); ok {
		t.Error("triggers should be cleared")
	}
}
