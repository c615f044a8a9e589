package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookwish/internal/app"
	"bookwish/internal/auth"
	"bookwish/internal/catalog"
	"bookwish/internal/config"
	"bookwish/internal/constants"
	"bookwish/internal/domain"
	httpapp "bookwish/internal/http"
	"bookwish/internal/logger"
	"bookwish/internal/notify"
	"bookwish/internal/policy"
	"bookwish/internal/store"
	"bookwish/internal/worker"
)

func main() {
	cfg := config.Load()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := store.NewSQLiteDB(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	provider := catalog.NewAudibleProvider()
	provider.AudnexusURL = cfg.AudnexusURL

	sender := notify.NewSender()
	dispatcher := worker.NewDispatcher()
	pool := worker.NewPool(dispatcher, appLogger, cfg.Workers, constants.DefaultQueueSize)
	dispatcher.Register(domain.JobTypeNotify, notify.NewJobHandler(sender))
	dispatcher.Register(domain.JobTypeDownload, app.NewDownloadHandler(db))
	pool.Start()
	defer pool.Stop()

	quality := policy.NewQualityConfig()
	fanout := notify.NewFanout(db, pool, appLogger)
	requests := app.NewRequestService(db, provider, quality, fanout, pool, appLogger)
	authSvc := auth.NewService(db, cfg.SessionSecret)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(authSvc.FirstRunRedirect)

	h := httpapp.NewHandler(requests, authSvc, quality, db, cfg.DefaultRegion, appLogger)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	appLogger.Info("Server exiting")
}
