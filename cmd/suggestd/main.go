package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/counselbase/searchcore/internal/analytics"
	"github.com/counselbase/searchcore/internal/reload"
	"github.com/counselbase/searchcore/internal/search"
	"github.com/counselbase/searchcore/internal/suggest"
	"github.com/counselbase/searchcore/internal/suggest/handler"
	"github.com/counselbase/searchcore/pkg/config"
	"github.com/counselbase/searchcore/pkg/health"
	"github.com/counselbase/searchcore/pkg/kafka"
	"github.com/counselbase/searchcore/pkg/logger"
	"github.com/counselbase/searchcore/pkg/metrics"
	"github.com/counselbase/searchcore/pkg/middleware"
	pkgredis "github.com/counselbase/searchcore/pkg/redis"
	"github.com/counselbase/searchcore/pkg/resilience"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting suggest service", "port", cfg.Server.Port)

	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := search.NewEngine()

	// Serve immediately and warm the index in the background; requests
	// arriving before the load completes get a loading response.
	go func() {
		warmCfg := resilience.RetryConfig{
			MaxAttempts:  10,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		}
		err := resilience.Retry(ctx, "index-warm-load", warmCfg, func() error {
			return engine.LoadFile(cfg.Builder.ArtifactPath)
		})
		if err != nil {
			slog.Error("index warm load failed, waiting for index-complete event",
				"path", cfg.Builder.ArtifactPath,
				"error", err,
			)
			return
		}
		m.IndexDocCount.Set(float64(engine.DocCount()))
		slog.Info("index loaded", "path", cfg.Builder.ArtifactPath, "doc_count", engine.DocCount())
	}()

	var suggestCache *suggest.Cache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, suggestion caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		suggestCache = suggest.NewCache(redisClient, cfg.Redis)
		slog.Info("suggestion cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	eventsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SuggestEvents)
	collector := analytics.NewCollector(eventsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.SuggestEvents)

	invalidate := func(ctx context.Context) error {
		if suggestCache == nil {
			return nil
		}
		return suggestCache.Invalidate(ctx)
	}
	reloader := reload.New(engine, cfg.Kafka, invalidate, m, collector)
	go func() {
		if err := reloader.Start(ctx); err != nil {
			slog.Error("index reloader error", "error", err)
		}
	}()
	slog.Info("index reloader started", "topic", cfg.Kafka.Topics.IndexComplete)

	checker := health.NewChecker()
	checker.Register("index_ready", func(ctx context.Context) health.ComponentHealth {
		if engine.Ready() {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents", engine.DocCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "index not loaded"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	suggester := suggest.NewSuggester(
		engine,
		suggest.CapsFromConfig(cfg.Suggest),
		cfg.Suggest.Fuzzy,
		cfg.Suggest.SearchLimit,
		m,
		slog.Default().With("component", "suggester"),
	)
	h := handler.New(suggester, suggestCache, collector, func(ctx context.Context) error {
		return reloader.Reload(ctx, cfg.Builder.ArtifactPath)
	}, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/suggest", h.Suggest)
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/tools/search", h.SearchTools)
	mux.HandleFunc("POST /api/v1/index/reload", h.Reload)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("suggest service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("suggest service stopped")
}
