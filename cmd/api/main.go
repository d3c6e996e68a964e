package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/platform/config"
	"bookcatalog/internal/platform/logger"
	"bookcatalog/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	be, closeStore := mustOpenBackend(ctx, cfg, log)
	defer closeStore()

	handler, _, err := newHandler(ctx, cfg, log, be)
	if err != nil {
		log.WithError(err).Fatal("cannot build handler")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}()

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "store": cfg.Store}).Info("starting server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("server error")
	}
	log.Info("server stopped")
}

func mustOpenBackend(ctx context.Context, cfg config.Config, log *logrus.Logger) (backend, func()) {
	if cfg.Store == config.StoreMemory {
		mem := store.NewMemory()
		log.Warn("using in-memory store, data is lost on restart")
		return backend{catalog: mem, users: mem, db: mem}, func() {}
	}

	pool := mustOpenDB(ctx, cfg, log)
	catalogRepo := store.NewCatalogPG(pool, cfg.DBTimeout)
	return backend{
		catalog: catalogRepo,
		users:   store.NewUserPG(pool, cfg.DBTimeout),
		db:      catalogRepo,
	}, pool.Close
}

func mustOpenDB(ctx context.Context, cfg config.Config, log *logrus.Logger) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		log.WithError(err).Fatal("cannot create db pool")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		log.WithError(err).WithField("dsn", cfg.RedactedDSN()).Fatal("cannot ping database")
	}
	log.Info("database connection OK")
	return pool
}
