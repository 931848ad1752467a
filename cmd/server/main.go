package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videowall/internal/catalog"
	"videowall/internal/layout"
	"videowall/internal/platform/config"
	"videowall/internal/platform/logger"
	"videowall/internal/platform/metrics"
	"videowall/internal/player"
	"videowall/internal/remote"
	"videowall/internal/settings"
	"videowall/internal/storage"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	backend := config.GetEnv("STORAGE_BACKEND", "file")
	settleDelay := config.GetEnvDuration("SUBTITLE_SETTLE_DELAY", player.DefaultSettleDelay)
	languages := config.GetEnvList("SUBTITLE_LANGUAGES", player.DefaultLanguages)

	log := logger.New(logLevel, logFormat)

	ctx := context.Background()
	kv, closeStore, err := openStore(ctx, backend)
	if err != nil {
		log.Error("storage unavailable", "backend", backend, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	streams := catalog.NewRepository(ctx, kv, log)
	prefs := settings.NewRepository(ctx, kv, log)
	order := layout.NewStore(kv)
	met := metrics.New()

	hub := remote.NewHub(remote.HubConfig{
		Catalog:             streams,
		Layout:              order,
		Settings:            prefs,
		Recorder:            met,
		Log:                 log.With("component", "remote"),
		SubtitleLanguages:   languages,
		SubtitleSettleDelay: settleDelay,
		PingInterval:        config.GetEnvDuration("WS_PING_INTERVAL", 30*time.Second),
		PongTimeout:         config.GetEnvDuration("WS_PONG_TIMEOUT", 60*time.Second),
	})

	streamHandler := catalog.NewHandler(streams, log)
	settingsHandler := settings.NewHandler(prefs, hub, log)
	layoutHandler := layout.NewHandler(order, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		met.Handler(func() { met.SetActiveSessions(hub.ActiveSessions()) }).ServeHTTP(w, r)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		r.Route("/streams", streamHandler.Routes)
		r.Get("/settings", settingsHandler.GetSettings)
		r.Put("/settings", settingsHandler.UpdateSettings)
		r.Get("/layout", layoutHandler.GetLayout)
		r.Get("/walls", hub.WriteSnapshot)
	})
	r.Handle("/ws", hub)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"storage_backend", backend,
		"log_level", logLevel,
		"subtitle_languages", languages,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}

// openStore selects the persistence backend shared by the catalog, settings
// and layout.
func openStore(ctx context.Context, backend string) (storage.Store, func(), error) {
	switch backend {
	case "redis":
		client, err := storage.NewRedisClient(ctx,
			config.GetEnv("REDIS_ADDR", "localhost:6379"),
			config.GetEnv("REDIS_PASSWORD", ""),
			config.GetEnvInt("REDIS_DB", 0),
		)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewRedisStore(client, config.GetEnv("REDIS_PREFIX", storage.DefaultRedisPrefix))
		return store, func() { client.Close() }, nil
	default:
		store, err := storage.NewOSFileStore(config.GetEnv("DATA_DIR", "./data"))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
