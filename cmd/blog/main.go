package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/nitesh/blog/internal/api"
	"github.com/nitesh/blog/internal/config"
	"github.com/nitesh/blog/internal/logging"
	"github.com/nitesh/blog/internal/metrics"
	"github.com/nitesh/blog/internal/service"
	"github.com/nitesh/blog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(ctx, store.OpenOptions{
		Driver:   cfg.DBDriver,
		DSN:      cfg.DBDSN,
		Attempts: cfg.DBConnectAttempts,
		Backoff:  cfg.DBConnectBackoff,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	repo := store.NewSQLStore(db, cfg.DBDriver)

	// the table must exist before the first request is served
	if err := store.RunMigrations(ctx, repo); err != nil {
		return err
	}

	svc := service.NewService(repo, logger)
	handler, err := api.NewHandler(svc, logger)
	if err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		logging.RequestID(),
		logging.AccessLog(logger),
		metrics.Middleware(),
		api.SecurityHeaders(cfg.TLSEnabled),
	)
	api.RegisterRoutes(router, handler)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			slog.String("addr", srv.Addr),
			slog.String("db_driver", cfg.DBDriver))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
