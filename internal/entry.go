// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tonote/internal/api"
	"github.com/starford/tonote/internal/audio"
	"github.com/starford/tonote/internal/audio/device"
	"github.com/starford/tonote/internal/index"
	"github.com/starford/tonote/internal/mcpserver"
	"github.com/starford/tonote/internal/models"
	"github.com/starford/tonote/internal/noteservice"
	"github.com/starford/tonote/internal/sse"
	"github.com/starford/tonote/internal/storage"
	pkgconfig "github.com/starford/tonote/pkg/config"
)

// runtime holds everything Run and RunMCP share.
type runtime struct {
	logger *slog.Logger
	level  *slog.LevelVar
	broker *sse.Broker
	svc    *noteservice.Service

	closers []func()
}

func (rt *runtime) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func newRuntime(app *application) (*runtime, error) {
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	level := new(slog.LevelVar)
	level.Set(cfg.App.LogLevel)

	// MCP speaks over stdout, so logs go to stderr in that mode.
	out := os.Stdout
	if app.stdio {
		out = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("audio_backend", cfg.Audio.Backend),
		slog.String("scratch_dir", cfg.Audio.ScratchDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt := &runtime{logger: logger, level: level}
	ok := false
	defer func() {
		if !ok {
			rt.close()
		}
	}()

	if err := os.MkdirAll(cfg.Audio.ScratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	scratch, err := storage.NewFS(cfg.Audio.ScratchDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	if n, err := storage.Sweep(scratch, device.CaptureSuffix); err != nil {
		logger.Warn("scratch sweep failed", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("removed stale captures", slog.Int("count", n))
	}

	store := models.NewDataStore()
	if cfg.Seed {
		store = models.NewSeededDataStore()
	}

	db, err := index.Open(cfg.Search.Name)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	rt.closers = append(rt.closers, func() { db.Close() })

	if n, err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("search index ready", slog.Int("indexed", n))
	}

	rt.broker = sse.NewBroker(cfg.Events.ElapsedThrottle)
	rt.closers = append(rt.closers, rt.broker.Close)

	opts := []noteservice.Option{
		noteservice.WithLogger(logger),
		noteservice.WithSearchLimit(cfg.Search.Limit),
		noteservice.WithAudioOptions(audio.WithSettings(audio.Settings{
			SampleRate: cfg.Audio.SampleRate,
			Channels:   cfg.Audio.Channels,
		})),
	}

	switch cfg.Audio.Backend {
	case AudioBackendPortAudio:
		terminate, err := device.InitPortAudio()
		if err != nil {
			logger.Warn("audio devices unavailable",
				slog.Bool("portaudio_built", device.Available),
				slog.String("error", err.Error()))
			break
		}
		rt.closers = append(rt.closers, func() {
			if err := terminate(); err != nil {
				logger.Error("portaudio terminate", slog.String("error", err.Error()))
			}
		})
		opts = append(opts,
			noteservice.WithCapture(device.NewWAVCapture(scratch, device.Microphone(), logger)),
			noteservice.WithSpeaker(device.NewSpeaker()),
		)
	default:
		opts = append(opts,
			noteservice.WithCapture(device.NewWAVCapture(scratch, device.Tone(cfg.Audio.ToneHz), logger)),
			noteservice.WithSpeaker(device.NewClockPlayer()),
		)
	}

	rt.svc = noteservice.NewService(store, db, rt.broker, opts...)
	rt.closers = append(rt.closers, rt.svc.Close)

	ok = true
	return rt, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app)
	if err != nil {
		return err
	}
	defer rt.close()

	cfg := app.config
	logger := rt.logger

	apiRouter := api.NewRouter(rt.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, rt.broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		g.Go(func() error {
			return pkgconfig.Watch(gCtx, app.configPath, pkgconfig.DefaultDebounce, logger, func() {
				reloadLogLevel(app.configPath, rt.level, logger)
			})
		})
	}

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

		// Open SSE streams would hold Shutdown until its deadline.
		rt.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the config watcher exits too.
var errShutdown = errors.New("shutdown")

// RunMCP serves the note tools over stdio until the client disconnects.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{stdio: true}

	for _, opt := range opts {
		opt(app)
	}

	rt, err := newRuntime(app)
	if err != nil {
		return err
	}
	defer rt.close()

	rt.logger.Info("MCP server starting on stdio")
	if err := mcpserver.New(rt.svc).ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

// reloadLogLevel applies the log level from a changed config file. Other
// settings take effect on restart.
func reloadLogLevel(path string, level *slog.LevelVar, logger *slog.Logger) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		logger.Warn("config reload failed", slog.String("error", err.Error()))
		return
	}
	if cfg.App.LogLevel == level.Level() {
		return
	}
	logger.Info("log level changed",
		slog.String("from", level.Level().String()),
		slog.String("to", cfg.App.LogLevel.String()))
	level.Set(cfg.App.LogLevel)
}
