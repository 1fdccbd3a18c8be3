package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/tomsolo12/dct-search/internal/config"
	"github.com/tomsolo12/dct-search/internal/db"
	dbRedis "github.com/tomsolo12/dct-search/internal/db/redis"
	logpkg "github.com/tomsolo12/dct-search/internal/logger"
	"github.com/tomsolo12/dct-search/internal/metrics"
	"github.com/tomsolo12/dct-search/internal/repository/catalog"
	"github.com/tomsolo12/dct-search/internal/repository/suggestcache"
	chiTransport "github.com/tomsolo12/dct-search/internal/transport/chi"
	healthuc "github.com/tomsolo12/dct-search/internal/usecase/health"
	queryuc "github.com/tomsolo12/dct-search/internal/usecase/query"
	"github.com/tomsolo12/dct-search/internal/usecase/session"
	"github.com/tomsolo12/dct-search/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dct-search API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend_url", cfg.Backend.BaseURL),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	ctx := context.Background()

	// Optional suggestion cache store
	var store db.Store
	if len(cfg.Cache.Addrs) > 0 {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, 10*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to suggestion cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Catalog backend client
	backend := catalog.New(catalog.Config{
		BaseURL:         cfg.Backend.BaseURL,
		APIKey:          cfg.Backend.APIKey,
		RequestTimeout:  time.Duration(cfg.Backend.RequestTimeout) * time.Second,
		QueryTimeout:    time.Duration(cfg.Backend.QueryTimeoutMS) * time.Millisecond,
		SuggestionLimit: cfg.Backend.SuggestionLimit,
		Logger:          logger,
	})

	// Suggester chain: backend -> cached (when a store is configured)
	var suggester session.Suggester = backend
	if store != nil {
		suggester = suggestcache.New(
			backend, store,
			time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SuggestionCacheTotal, logger,
		)
	}

	// Session registry with idle eviction
	registry := session.NewRegistry(backend, suggester,
		session.WithRegistryLogger(logger),
		session.WithIdleTTL(time.Duration(cfg.Sessions.IdleTTLSec)*time.Second),
		session.WithSessionOptions(
			session.WithPageSize(cfg.Search.PageSize),
			session.WithDebounce(time.Duration(cfg.Search.DebounceMS)*time.Millisecond),
		),
	)
	sweeperCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	registry.StartSweeper(sweeperCtx, time.Minute)

	querySvc := queryuc.New(backend, logger)

	// Health: cache check only when a store is wired
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(backend, cachePinger)

	server := chiTransport.NewServer(registry, querySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
