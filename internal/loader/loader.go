// Package loader picks the document to show: an explicit URL, the last file
// or URL remembered in the cache, the default path, or the bundled sample.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"strings"
	"sync"

	"github.com/starford/aquatrack/internal/apperr"
	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/metrics"
	"github.com/starford/aquatrack/internal/models"
	"github.com/starford/aquatrack/internal/parser"
	"github.com/starford/aquatrack/internal/sample"
)

// DefaultPath is the document tried when nothing is cached.
const DefaultPath = "aquatrack.json"

// Origin says where a loaded document came from.
type Origin string

const (
	OriginURL         Origin = "url"
	OriginCachedFile  Origin = "cached-file"
	OriginCachedURL   Origin = "cached-url"
	OriginDefaultPath Origin = "default-path"
	OriginBundled     Origin = "bundled"
	OriginFile        Origin = "file"
)

// Status messages.
const (
	MsgCachedFile = "Loaded most recent local file."
	MsgBundled    = "Showing bundled sample data."
	MsgNotJSON    = "Please provide a JSON file."
)

// Fetcher returns the bytes behind a locator.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Query holds the request inputs that steer the load.
type Query struct {
	// Data is an explicit document URL.
	Data string
	// Base overrides the document's photosBase when set.
	Base models.Field
}

// Result is the outcome of a load.
type Result struct {
	Document *models.Document
	Origin   Origin
	// Source is the URL, path or file name the document was read from.
	Source string
	Base   models.Field
	Status []models.Status
	// Err is the last failure met on the way, possibly recovered from.
	Err error
}

// Loader runs loads one at a time.
type Loader struct {
	mu sync.Mutex

	fetcher     Fetcher
	store       *cache.Store
	history     cache.History
	metrics     *metrics.Metrics
	logger      *slog.Logger
	defaultPath string
}

// Option configures a Loader.
type Option func(*Loader)

func WithHistory(h cache.History) Option { return func(l *Loader) { l.history = h } }

func WithMetrics(m *metrics.Metrics) Option { return func(l *Loader) { l.metrics = m } }

func WithLogger(logger *slog.Logger) Option { return func(l *Loader) { l.logger = logger } }

// WithDefaultPath replaces DefaultPath. An empty path skips that step.
func WithDefaultPath(p string) Option { return func(l *Loader) { l.defaultPath = p } }

// New returns a Loader reading through f and remembering sources in store.
func New(f Fetcher, store *cache.Store, opts ...Option) *Loader {
	l := &Loader{
		fetcher:     f,
		store:       store,
		logger:      slog.Default(),
		defaultPath: DefaultPath,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Init selects and loads a document. It always returns one: when every
// source fails the bundled sample is used with a warning.
func (l *Loader) Init(ctx context.Context, q Query) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	run := &attempt{l: l, base: q.Base}

	if q.Data != "" {
		if r, ok := run.fromURL(ctx, q.Data, OriginURL); ok {
			return r
		}
		return run.bundled()
	}

	if text, ok := l.store.Get(cache.KeyLastFile); ok && text != "" {
		if r, ok := run.fromCachedFile(text); ok {
			return r
		}
		l.store.Remove(cache.KeyLastFile)
	}

	if u, ok := l.store.Get(cache.KeyLastURL); ok && u != "" {
		if r, ok := run.fromURL(ctx, u, OriginCachedURL); ok {
			return r
		}
		l.store.Remove(cache.KeyLastURL)
	}

	if l.defaultPath != "" {
		if r, ok := run.fromURL(ctx, l.defaultPath, OriginDefaultPath); ok {
			return r
		}
	}
	return run.bundled()
}

// File is a user-supplied document.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// LoadFile loads a dropped or uploaded file and remembers its text. A
// declared type other than JSON is rejected with apperr.ErrUnsupportedType.
func (l *Loader) LoadFile(_ context.Context, f File, base models.Field) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	run := &attempt{l: l, base: base}
	if !IsJSONType(f.ContentType) {
		err := fmt.Errorf("loader: %s: %w", f.Name, apperr.ErrUnsupportedType)
		run.fail(OriginFile, f.Name, err, MsgNotJSON)
		return run.result(nil, OriginFile, f.Name), err
	}

	doc, err := parser.Parse(f.Body)
	if err != nil {
		run.fail(OriginFile, f.Name, err, fmt.Sprintf("Could not parse %s: %v", f.Name, err))
		return run.result(nil, OriginFile, f.Name), fmt.Errorf("loader: parse %s: %w", f.Name, err)
	}

	l.store.Set(cache.KeyLastFile, string(f.Body))
	l.store.Remove(cache.KeyLastURL)
	run.ok(OriginFile, f.Name, fmt.Sprintf("Loaded %s.", f.Name))
	return run.result(doc, OriginFile, f.Name), nil
}

// IsJSONType reports whether a declared media type is acceptable. An empty
// type is accepted.
func IsJSONType(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json"
}

// attempt accumulates the status messages and errors of one load.
type attempt struct {
	l       *Loader
	base    models.Field
	status  []models.Status
	lastErr error
}

func (a *attempt) fromURL(ctx context.Context, locator string, origin Origin) (Result, bool) {
	data, err := a.l.fetcher.Fetch(ctx, locator)
	var doc *models.Document
	if err == nil {
		doc, err = parser.Parse(data)
	}
	if err != nil {
		a.fail(origin, locator, err, fmt.Sprintf("Failed to load %s: %v", locator, err))
		return Result{}, false
	}
	a.l.store.Set(cache.KeyLastURL, locator)
	a.l.store.Remove(cache.KeyLastFile)
	a.ok(origin, locator, fmt.Sprintf("Loaded %s.", locator))
	return a.result(doc, origin, locator), true
}

func (a *attempt) fromCachedFile(text string) (Result, bool) {
	doc, err := parser.Parse([]byte(text))
	if err != nil {
		a.fail(OriginCachedFile, "", err, "")
		return Result{}, false
	}
	a.ok(OriginCachedFile, "", MsgCachedFile)
	return a.result(doc, OriginCachedFile, ""), true
}

func (a *attempt) bundled() Result {
	a.record(OriginBundled, "", nil)
	a.say(models.ToneWarning, MsgBundled)
	return a.result(sample.Document(), OriginBundled, "")
}

func (a *attempt) ok(origin Origin, locator, msg string) {
	a.record(origin, locator, nil)
	a.say(models.ToneInfo, msg)
}

// fail records err. An empty msg keeps the failure out of the page status.
func (a *attempt) fail(origin Origin, locator string, err error, msg string) {
	a.lastErr = err
	a.record(origin, locator, err)
	if msg == "" {
		a.l.logger.Warn("loader: discarded source",
			slog.String("origin", string(origin)),
			slog.String("error", err.Error()))
		return
	}
	a.say(models.ToneError, msg)
}

func (a *attempt) say(tone, msg string) {
	a.status = append(a.status, models.Status{Tone: tone, Message: msg})
	level := slog.LevelInfo
	switch tone {
	case models.ToneWarning:
		level = slog.LevelWarn
	case models.ToneError:
		level = slog.LevelError
	}
	a.l.logger.Log(context.Background(), level, msg, slog.String("tone", tone))
}

func (a *attempt) record(origin Origin, locator string, err error) {
	outcome := cache.OutcomeOK
	errText := ""
	if err != nil {
		outcome = cache.OutcomeFailed
		errText = err.Error()
	}
	a.l.metrics.Load(string(origin), outcome)
	if a.l.history == nil {
		return
	}
	rec := cache.LoadRecord{Origin: string(origin), Locator: locator, Outcome: outcome, Error: errText}
	if herr := a.l.history.Record(rec); herr != nil {
		a.l.logger.Warn("loader: record history", slog.String("error", herr.Error()))
	}
}

func (a *attempt) result(doc *models.Document, origin Origin, source string) Result {
	return Result{
		Document: doc,
		Origin:   origin,
		Source:   source,
		Base:     a.base,
		Status:   a.status,
		Err:      a.lastErr,
	}
}
