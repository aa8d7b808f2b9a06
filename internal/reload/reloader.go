// Package reload keeps a running suggestion service in sync with freshly
// built index artifacts announced over kafka.
package reload

import (
	"context"
	"log/slog"
	"time"

	"github.com/counselbase/searchcore/internal/analytics"
	"github.com/counselbase/searchcore/internal/events"
	"github.com/counselbase/searchcore/internal/search"
	"github.com/counselbase/searchcore/pkg/config"
	"github.com/counselbase/searchcore/pkg/kafka"
	"github.com/counselbase/searchcore/pkg/metrics"
	"github.com/counselbase/searchcore/pkg/resilience"
)

// InvalidateFunc drops any caches derived from the previous index. It is
// optional; a nil func means there is nothing to invalidate.
type InvalidateFunc func(ctx context.Context) error

// Tracker receives reload events for offline analysis. Satisfied by
// analytics.Collector; nil means reloads go unreported.
type Tracker interface {
	Track(event interface{})
}

// Reloader consumes index-complete events and hot-swaps the engine's
// snapshot from the announced artifact.
type Reloader struct {
	engine     *search.Engine
	consumer   *kafka.Consumer
	invalidate InvalidateFunc
	metrics    *metrics.Metrics
	tracker    Tracker
	retryCfg   resilience.RetryConfig
	logger     *slog.Logger
}

func New(engine *search.Engine, kafkaCfg config.KafkaConfig, invalidate InvalidateFunc, m *metrics.Metrics, tracker Tracker) *Reloader {
	r := &Reloader{
		engine:     engine,
		invalidate: invalidate,
		metrics:    m,
		tracker:    tracker,
		retryCfg: resilience.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
		logger: slog.Default().With("component", "index-reloader"),
	}
	r.consumer = kafka.NewConsumer(kafkaCfg, kafkaCfg.Topics.IndexComplete, r.handleMessage)
	return r
}

// Start runs the consume loop until ctx is cancelled.
func (r *Reloader) Start(ctx context.Context) error {
	return r.consumer.Start(ctx)
}

func (r *Reloader) Close() error {
	return r.consumer.Close()
}

// Reload swaps in the artifact at path. Exposed so the admin endpoint can
// force a reload without going through kafka.
func (r *Reloader) Reload(ctx context.Context, path string) error {
	start := time.Now()
	err := resilience.Retry(ctx, "index-reload", r.retryCfg, func() error {
		return r.engine.LoadFile(path)
	})
	if err != nil {
		if r.metrics != nil {
			r.metrics.IndexReloadsTotal.WithLabelValues("error").Inc()
		}
		r.trackReload(path, false, start)
		return err
	}
	if r.invalidate != nil {
		if err := r.invalidate(ctx); err != nil {
			r.logger.Warn("cache invalidation after reload failed", "error", err)
		}
	}
	if r.metrics != nil {
		r.metrics.IndexReloadsTotal.WithLabelValues("success").Inc()
		r.metrics.IndexDocCount.Set(float64(r.engine.DocCount()))
	}
	r.trackReload(path, true, start)
	r.logger.Info("index reloaded",
		"path", path,
		"doc_count", r.engine.DocCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (r *Reloader) trackReload(path string, success bool, start time.Time) {
	if r.tracker == nil {
		return
	}
	docCount := 0
	if success {
		docCount = r.engine.DocCount()
	}
	r.tracker.Track(analytics.ReloadEvent{
		Type:         analytics.EventReload,
		ArtifactPath: path,
		DocCount:     docCount,
		Success:      success,
		LatencyMs:    time.Since(start).Milliseconds(),
		Timestamp:    time.Now().UTC(),
	})
}

func (r *Reloader) handleMessage(ctx context.Context, _ []byte, value []byte) error {
	event, err := kafka.DecodeJSON[events.IndexCompleteEvent](value)
	if err != nil {
		r.logger.Error("malformed index-complete event", "error", err)
		// Skip rather than retry; the payload will not get better.
		return nil
	}
	r.logger.Info("index-complete event received",
		"artifact_path", event.ArtifactPath,
		"doc_count", event.DocCount,
		"built_at", event.BuiltAt,
	)
	return r.Reload(ctx, event.ArtifactPath)
}
