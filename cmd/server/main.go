package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rpattn/assettrack/internal/alert"
	"github.com/rpattn/assettrack/internal/api"
	"github.com/rpattn/assettrack/internal/auth"
	"github.com/rpattn/assettrack/internal/config"
	"github.com/rpattn/assettrack/internal/db"
	"github.com/rpattn/assettrack/internal/export"
	"github.com/rpattn/assettrack/internal/lifecycle"
	"github.com/rpattn/assettrack/internal/middleware"
	"github.com/rpattn/assettrack/internal/repository"
	"github.com/rpattn/assettrack/internal/view"
	"github.com/rpattn/assettrack/migrations"
	"github.com/rpattn/assettrack/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := logger.Must(logger.New())
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatal("failed to load config", zap.Error(err))
	}

	// Run migrations before opening the pool so startup fails fast on a
	// schema problem.
	if err := db.RunMigrations(cfg.DB, migrations.FS, ".", logger.Named(log, "migrate")); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	conn, err := db.NewConnection(ctx, cfg.DB, logger.Named(log, "db"))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	store := repository.NewStore(conn)
	lifecycleSvc := lifecycle.NewService(store, logger.Named(log, "lifecycle"))
	views := view.NewBuilder(store, logger.Named(log, "view"))
	exportSvc := export.NewService(views, logger.Named(log, "export"))

	mux := http.NewServeMux()
	handler := api.NewHandler(lifecycleSvc, views, store, logger.Named(log, "api"))
	handler.Register(mux)
	mux.Handle("GET /api/export/assets", export.NewHTTPHandler(exportSvc, logger.Named(log, "export")))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	root := corsHandler.Handler(
		middleware.Logging(logger.Named(log, "http"))(
			auth.Middleware(mux),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler := alert.NewScheduler(cfg.Alerts, views, logger.Named(log, "alert"))
	scheduler.Start()
	defer scheduler.Stop()

	go func() {
		log.Info("starting server", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
