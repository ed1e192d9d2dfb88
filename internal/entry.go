// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/aquatrack/internal/api"
	"github.com/starford/aquatrack/internal/cache"
	"github.com/starford/aquatrack/internal/format"
	"github.com/starford/aquatrack/internal/loader"
	"github.com/starford/aquatrack/internal/mcpserver"
	"github.com/starford/aquatrack/internal/metrics"
	"github.com/starford/aquatrack/internal/render"
	"github.com/starford/aquatrack/internal/source"
	"github.com/starford/aquatrack/internal/sse"
	"github.com/starford/aquatrack/internal/storage"
	"github.com/starford/aquatrack/internal/viewer"
	"github.com/starford/aquatrack/internal/watch"
)

// stack is the wired dependency graph shared by every command.
type stack struct {
	cfg     *Config
	logger  *slog.Logger
	store   *storage.FS
	metrics *metrics.Metrics
	viewer  *viewer.Service
	close   func()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout, version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// build wires storage, cache, loader and renderer. A cache that cannot be
// opened degrades to an in-memory one so the page still renders.
func (app *application) build() (*stack, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_dir", cfg.Source.Dir),
		slog.String("default_path", cfg.Source.DefaultPath),
		slog.String("cache_path", cfg.Cache.Path),
		slog.String("locale", cfg.Render.Locale),
		slog.String("log_level", cfg.App.LogLevel.String()))

	if err := os.MkdirAll(cfg.Source.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Source.Dir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	m := metrics.New()

	var (
		backend cache.Backend
		history cache.History
		closeDB = func() {}
	)
	db, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		logger.Warn("cache unavailable, using memory",
			slog.String("path", cfg.Cache.Path),
			slog.String("error", err.Error()))
		backend = cache.NewMemory()
		history = cache.NewMemoryHistory(100)
	} else {
		backend, history = db, db
		closeDB = func() { _ = db.Close() }
	}

	client := &http.Client{Timeout: cfg.Source.HTTPTimeout}
	l := loader.New(
		source.New(client, store, m),
		cache.NewStore(backend, logger, m),
		loader.WithDefaultPath(cfg.Source.DefaultPath),
		loader.WithHistory(history),
		loader.WithMetrics(m),
		loader.WithLogger(logger),
	)

	f := format.New(cfg.Render.Tag(), cfg.Render.Location(), cfg.Render.DateLayout, cfg.Render.TimeLayout)
	r := render.NewRenderer(f,
		render.WithLazyImages(cfg.Render.LazyImages),
		render.WithPreviewCount(cfg.Render.PreviewCount),
	)

	svc := viewer.NewService(viewer.Deps{
		Loader:   l,
		Renderer: r,
		Dir:      store,
		History:  history,
		Metrics:  m,
	})

	return &stack{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		metrics: m,
		viewer:  svc,
		close:   closeDB,
	}, nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handler returns the root router with health checks and the page/API routes.
func (rt *stack) handler(events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)

	r.Mount("/", api.NewRouter(rt.viewer, api.Options{
		AuthEnabled: rt.cfg.Auth.AuthEnabled(),
		Token:       rt.cfg.Auth.Token,
		Events:      events,
		Metrics:     rt.metrics.Handler(),
		LiveReload:  events != nil,
	}))
	return r
}

// Run starts the HTTP server and, when enabled, the document watcher.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.build()
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := rt.cfg
	logger := rt.logger

	var broker *sse.Broker
	var events http.Handler
	if cfg.Watch.Enabled {
		broker = sse.NewBroker(cfg.Watch.ReloadThrottle, rt.metrics)
		defer broker.Close()
		events = broker
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           rt.handler(events),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if broker != nil {
		g.Go(func() error {
			w := watch.New(rt.store, logger, broker.PublishChange)
			if err := w.Run(gCtx); err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Event streams never go idle on their own.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RenderRequest describes one static render.
type RenderRequest struct {
	// Output is the HTML file to write.
	Output string
	// Data and Base are the page query parameters.
	Data string
	Base string
}

// Render runs the load chain once and writes the page to req.Output.
func Render(ctx context.Context, req RenderRequest, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.build()
	if err != nil {
		return err
	}
	defer rt.close()

	return rt.renderTo(ctx, req)
}

func (rt *stack) renderTo(ctx context.Context, req RenderRequest) error {
	q := url.Values{}
	if req.Data != "" {
		q.Set(viewer.ParamData, req.Data)
	}
	if req.Base != "" {
		q.Set(viewer.ParamBase, req.Base)
	}
	page := &url.URL{Path: "/", RawQuery: q.Encode()}

	abs, err := filepath.Abs(req.Output)
	if err != nil {
		return fmt.Errorf("render: output path: %w", err)
	}
	out, err := storage.NewFS(filepath.Dir(abs))
	if err != nil {
		return fmt.Errorf("render: output dir: %w", err)
	}

	var buf bytes.Buffer
	view, err := rt.viewer.WritePage(ctx, &buf, page, render.PageMeta{})
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := out.Write(filepath.Base(abs), buf.Bytes()); err != nil {
		return fmt.Errorf("render: write %s: %w", abs, err)
	}

	rt.logger.Info("Page rendered",
		slog.String("output", abs),
		slog.String("origin", string(view.Result.Origin)),
		slog.String("source", view.Result.Source))
	return nil
}

// ServeMCP serves the MCP tools over stdio until the client disconnects.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.build()
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.viewer, app.version).ServeStdio()
}
