package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"podcast-orchestrator/internal/ai"
	"podcast-orchestrator/internal/orchestrator"
	"podcast-orchestrator/internal/platform/config"
	"podcast-orchestrator/internal/platform/logger"
	"podcast-orchestrator/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.LoadServerConfig(orchestrator.DefaultSceneDuration)

	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	aiClient := ai.NewClient(ai.Config{
		APIKey:         cfg.AIAPIKey,
		BaseURL:        cfg.AIBaseURL,
		CustomerID:     cfg.AICustomerID,
		ScriptModel:    cfg.AIScriptModel,
		VideoModel:     cfg.AIVideoModel,
		TimeoutSeconds: cfg.AITimeoutSeconds,
	})

	// Renders outlive the request that started them; baseCtx is cancelled
	// only when the process shuts down.
	baseCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()

	met := metrics.New()
	repo := orchestrator.NewInMemoryRepository()
	svc := orchestrator.NewService(repo, aiClient,
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(met),
		orchestrator.WithScriptWriter(aiClient),
		orchestrator.WithSceneDuration(cfg.SceneSeconds),
		orchestrator.WithBaseContext(baseCtx),
	)
	h := orchestrator.NewHandler(svc, log, aiClient)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Method(http.MethodGet, "/metrics", met.Handler(func() { met.SetActiveSessions(svc.ActiveSessionCount()) }))
	h.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	addr := ":" + cfg.Port
	srv := &http.Server{Addr: addr, Handler: c.Handler(r), ReadHeaderTimeout: 10 * time.Second}

	go svc.RunRetention(baseCtx, cfg.SessionTTL, cfg.SweepInterval)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", cfg.Port,
		"scene_duration_seconds", cfg.SceneSeconds,
		"session_ttl", cfg.SessionTTL.String(),
		"log_level", cfg.LogLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	cancelWork()
	svc.Wait()

	log.Info("server stopped")
}
