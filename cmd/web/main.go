package main

import (
	"context"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"moodlift/internal/classify"
	"moodlift/internal/config"
	"moodlift/internal/detect"
	"moodlift/internal/games"
	"moodlift/internal/handlers"
	"moodlift/internal/telemetry"
	"moodlift/internal/theme"
	"moodlift/internal/views"
)

const serviceName = "moodlift"

func main() {
	if err := run(); err != nil {
		slog.Error("moodlift stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	log := telemetry.NewLogger(os.Stderr, cfg.Level())
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(flushCtx)
	}()

	client, err := classify.NewHTTPClient(classify.Config{
		Endpoint: cfg.ClassifierURL,
		Timeout:  cfg.ClassifierTimeout,
	})
	if err != nil {
		return err
	}

	viewStore := detect.NewStore(detect.Options{
		Classifier:   classify.Chain(client, classify.Trace()),
		PollInterval: cfg.PollInterval,
		FrameMaxAge:  cfg.FrameMaxAge,
		MaxInFlight:  cfg.MaxInFlight,
		Logger:       log,
	})
	defer viewStore.CloseAll()

	gameStore := games.NewStore(games.Settings{
		QuizCountdown: cfg.QuizCountdown,
		QuizTick:      cfg.QuizTick,
		FeedbackDelay: cfg.FeedbackDelay,
	}, log)
	defer gameStore.CloseAll()

	pref := theme.NewPreference()

	_ = mime.AddExtensionType(".js", "application/javascript")
	_ = mime.AddExtensionType(".css", "text/css")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(views.Static()))))

	handlers.NewDetectorHandler(viewStore, pref, cfg.FrameInterval, log).RegisterRoutes(r)
	handlers.NewGamesHandler(gameStore, pref, log).RegisterRoutes(r)
	handlers.NewThemeHandler(pref).RegisterRoutes(r)

	go reapIdleViews(ctx, viewStore, cfg.ViewIdle, log)
	go reapIdleGames(ctx, gameStore, cfg.GameIdle, log)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Streams and the frame socket are long-lived.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Addr, "classifier", cfg.ClassifierURL)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	// Closing the rooms ends every SSE stream so Shutdown can drain.
	viewStore.CloseAll()
	gameStore.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// reapIdleViews closes views whose page went away without unmounting.
func reapIdleViews(ctx context.Context, store *detect.Store, maxIdle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.ReapIdle(now, maxIdle); n > 0 {
				log.Info("reaped idle views", "count", n, "open", store.Len())
			}
		}
	}
}

// reapIdleGames discards game sessions whose page went away without closing
// them.
func reapIdleGames(ctx context.Context, store *games.Store, maxIdle time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := store.ReapIdle(now, maxIdle); n > 0 {
				log.Info("reaped idle game sessions", "count", n, "open", store.Len())
			}
		}
	}
}
