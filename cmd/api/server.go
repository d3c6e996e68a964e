package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"bookcatalog/internal/account"
	"bookcatalog/internal/auth"
	"bookcatalog/internal/catalog"
	"bookcatalog/internal/entity"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/notify"
	"bookcatalog/internal/platform/config"
	"bookcatalog/internal/platform/metrics"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// backend is the storage the server runs on. Both the Postgres and the
// in-memory store satisfy it.
type backend struct {
	catalog catalog.Repository
	users   account.Repository
	db      pinger
}

// newHandler wires services, routes and the middleware chain. ctx bounds
// background work such as rate limiter eviction.
func newHandler(ctx context.Context, cfg config.Config, log *logrus.Logger, be backend) (http.Handler, *notify.Bus[entity.Book], error) {
	bus := notify.NewBus[entity.Book](
		notify.WithBuffer[entity.Book](cfg.SubscriberBuffer),
		notify.WithLogger[entity.Book](log.WithField("component", "bus")),
		notify.WithObserver[entity.Book](metrics.BusObserver{}),
	)

	creds, err := account.NewSharedSecretVerifier(cfg.LoginSecret, bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}
	tokens := auth.NewTokenService(cfg.JWTSecret)

	catalogSvc := catalog.NewService(be.catalog, bus, log.WithField("component", "catalog"))
	summaries := catalog.NewSummaryEngine(be.catalog)
	accountSvc := account.NewService(be.users, creds, tokens, log.WithField("component", "account"))

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := be.db.Ping(pingCtx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	router.Handle("GET /metrics", metrics.Handler())

	catalog.NewHTTPHandler(catalogSvc, summaries).Register(router)
	account.NewHTTPHandler(accountSvc).Register(router)
	router.Handle("GET /v1/subscriptions/book-added",
		notify.NewWSHandler(bus, notify.BookAdded, log.WithField("component", "ws")))

	limiter := httpx.NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)
	resolver := auth.NewResolver(tokens, be.users)

	handler := httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware(log),
		httpx.RecoveryMiddleware(log),
		metrics.InstrumentHandler,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORSAllowedOrigins),
		limiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		httpx.TimeoutMiddleware(cfg.RequestTimeout),
		httpx.PrincipalMiddleware(resolver),
	)
	return handler, bus, nil
}
