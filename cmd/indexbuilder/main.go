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

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/events"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/index/artifact"
	"github.com/counselbase/searchcore/pkg/config"
	"github.com/counselbase/searchcore/pkg/kafka"
	"github.com/counselbase/searchcore/pkg/logger"
	"github.com/counselbase/searchcore/pkg/metrics"
	"github.com/counselbase/searchcore/pkg/postgres"
)

// Loader is the corpus source abstraction shared by the directory and
// postgres backends.
type Loader interface {
	Load(ctx context.Context) ([]corpus.Document, error)
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	source := flag.String("source", "dir", "corpus source: dir or postgres")
	strict := flag.Bool("strict", false, "abort the build on the first invalid document")
	watch := flag.Bool("watch", false, "stay running and rebuild on content-update events")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *strict {
		cfg.Builder.Strict = true
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting index builder",
		"source", *source,
		"artifact_path", cfg.Builder.ArtifactPath,
		"strict", cfg.Builder.Strict,
		"watch", *watch,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if *watch && cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	var loader Loader
	switch *source {
	case "dir":
		loader = corpus.NewDirLoader(cfg.Builder.ContentDir, cfg.Builder.Strict)
	case "postgres":
		client, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		loader = corpus.NewStoreLoader(client, cfg.Builder.Strict)
	default:
		fmt.Fprintf(os.Stderr, "unknown source %q (want dir or postgres)\n", *source)
		os.Exit(1)
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.IndexComplete)
	defer producer.Close()

	if err := runBuild(ctx, cfg, loader, producer, m); err != nil {
		slog.Error("index build failed", "error", err)
		os.Exit(1)
	}

	if !*watch {
		slog.Info("index builder done")
		return
	}

	// Watch mode: every content-update event triggers a full rebuild.
	// Builds are cheap at directory scale, so no debouncing.
	consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.ContentUpdate,
		func(ctx context.Context, _ []byte, value []byte) error {
			event, err := kafka.DecodeJSON[events.ContentUpdateEvent](value)
			if err != nil {
				slog.Error("malformed content-update event", "error", err)
				return nil
			}
			slog.Info("content update received", "source", event.Source, "path", event.Path)
			if err := runBuild(ctx, cfg, loader, producer, m); err != nil {
				slog.Error("rebuild failed", "error", err)
			}
			return nil
		},
	)

	slog.Info("index builder watching for content updates",
		"topic", cfg.Kafka.Topics.ContentUpdate,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}
	slog.Info("index builder stopped")
}

func runBuild(ctx context.Context, cfg *config.Config, loader Loader, producer *kafka.Producer, m *metrics.Metrics) error {
	start := time.Now()

	docs, err := loader.Load(ctx)
	if err != nil {
		m.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("loading corpus: %w", err)
	}
	slog.Info("corpus loaded", "documents", len(docs))

	builder := index.NewBuilder(cfg.Builder)
	idx, metas, err := builder.Build(docs)
	if err != nil {
		m.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("building index: %w", err)
	}

	if err := artifact.Write(cfg.Builder.ArtifactPath, idx, metas); err != nil {
		m.IndexBuildsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("writing artifact: %w", err)
	}

	duration := time.Since(start)
	m.IndexBuildsTotal.WithLabelValues("success").Inc()
	m.IndexBuildDuration.Observe(duration.Seconds())
	m.DocsIndexedTotal.Add(float64(len(metas)))
	m.IndexDocCount.Set(float64(len(metas)))
	slog.Info("index built",
		"path", cfg.Builder.ArtifactPath,
		"doc_count", len(metas),
		"terms", len(idx.Terms),
		"duration_ms", duration.Milliseconds(),
	)

	if err := producer.Publish(ctx, kafka.Event{
		Key: "index-complete",
		Value: events.IndexCompleteEvent{
			ArtifactPath: cfg.Builder.ArtifactPath,
			DocCount:     len(metas),
			BuiltAt:      time.Now().UTC(),
			DurationMs:   duration.Milliseconds(),
		},
	}); err != nil {
		// The artifact is on disk; a missed announcement only delays
		// pickup until the next manual reload.
		slog.Warn("failed to publish index-complete event", "error", err)
	}
	return nil
}
