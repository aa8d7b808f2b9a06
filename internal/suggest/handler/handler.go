package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/counselbase/searchcore/internal/analytics"
	"github.com/counselbase/searchcore/internal/suggest"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
	"github.com/counselbase/searchcore/pkg/logger"
	"github.com/counselbase/searchcore/pkg/metrics"
	"github.com/counselbase/searchcore/pkg/middleware"
)

// ReloadFunc forces the engine to reload its artifact. Wired from the
// reloader so the admin endpoint and the kafka path share one code path.
type ReloadFunc func(ctx context.Context) error

// EventTracker receives request events for offline analysis. Satisfied by
// analytics.Collector.
type EventTracker interface {
	Track(event interface{})
}

type Handler struct {
	suggester *suggest.Suggester
	cache     *suggest.Cache
	collector EventTracker
	reload    ReloadFunc
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func New(s *suggest.Suggester, cache *suggest.Cache, collector EventTracker, reload ReloadFunc, m *metrics.Metrics) *Handler {
	return &Handler{
		suggester: s,
		cache:     cache,
		collector: collector,
		reload:    reload,
		metrics:   m,
		logger:    slog.Default().With("component", "suggest-handler"),
	}
}

// Suggest serves typeahead suggestions. The gen parameter is echoed back in
// the response so the client can discard answers to superseded keystrokes.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	sctx := suggest.Context(r.URL.Query().Get("context"))
	if sctx == "" {
		sctx = suggest.ContextGlobal
	}
	if !sctx.Valid() {
		h.writeError(w, http.StatusBadRequest, "context must be 'homepage' or 'global'")
		return
	}

	var generation uint64
	if genStr := r.URL.Query().Get("gen"); genStr != "" {
		parsed, err := strconv.ParseUint(genStr, 10, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "gen must be a non-negative integer")
			return
		}
		generation = parsed
	}

	var result *suggest.Result
	var err error
	cacheHit := false

	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, query, sctx, func() (*suggest.Result, error) {
			res, err := h.suggester.Suggest(query, sctx, generation)
			if err != nil {
				return nil, err
			}
			return &res, nil
		})
	} else {
		var res suggest.Result
		res, err = h.suggester.Suggest(query, sctx, generation)
		result = &res
	}

	if err != nil {
		log.Error("suggest failed", "query", query, "error", err)
		h.recordSuggest("error", cacheHit, start, 0)
		h.writeError(w, http.StatusInternalServerError, "suggest failed")
		return
	}

	// Cached results carry the generation of the request that populated
	// them; respond with a copy stamped for this request.
	response := *result
	response.Generation = generation

	latencyMs := time.Since(start).Milliseconds()
	h.recordSuggest(string(response.Status), cacheHit, start, len(response.Items))

	log.Info("suggest completed",
		"query", query,
		"context", sctx,
		"status", response.Status,
		"returned", len(response.Items),
		"cache_hit", cacheHit,
		"latency_ms", latencyMs,
	)
	if h.collector != nil {
		a := suggest.Analyze(query)
		eventType := analytics.EventSuggest
		if response.Status == suggest.StatusNoMatches {
			eventType = analytics.EventZeroResult
		}
		h.collector.Track(analytics.SuggestEvent{
			Type:         eventType,
			Query:        query,
			Context:      string(sctx),
			Tokens:       a.Tokens,
			AssessIntent: a.HasAssessIntent,
			DraftIntent:  a.HasDraftIntent,
			Status:       string(response.Status),
			Returned:     len(response.Items),
			LatencyMs:    latencyMs,
			CacheHit:     cacheHit,
			Timestamp:    time.Now().UTC(),
			RequestID:    middleware.GetRequestID(ctx),
		})
	}

	h.writeJSON(w, http.StatusOK, &response)
}

// Search serves the strict directory search across every content type.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	items, err := h.suggester.SearchAll(query, limit)
	if err != nil {
		status, msg := classifySearchError(err)
		log.Error("search failed", "query", query, "error", err)
		h.writeError(w, status, msg)
		return
	}
	if h.collector != nil {
		h.collector.Track(analytics.SearchEvent{
			Type:      analytics.EventSearch,
			Query:     query,
			Limit:     limit,
			Returned:  len(items),
			LatencyMs: time.Since(start).Milliseconds(),
			Timestamp: time.Now().UTC(),
			RequestID: middleware.GetRequestID(ctx),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"count":   len(items),
		"by_type": suggest.TypeCounts(items),
		"results": items,
	})
}

// SearchTools returns the ordered slugs of tools matching the query, for
// filter surfaces that already hold the tool metadata.
func (h *Handler) SearchTools(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}

	slugs, err := h.suggester.SearchTools(query)
	if err != nil {
		status, msg := classifySearchError(err)
		log.Error("tool search failed", "query", query, "error", err)
		h.writeError(w, status, msg)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"query": query,
		"count": len(slugs),
		"slugs": slugs,
	})
}

// Reload forces an artifact reload outside the kafka path.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.reload == nil {
		h.writeError(w, http.StatusServiceUnavailable, "reload is not configured")
		return
	}
	if err := h.reload(r.Context()); err != nil {
		h.logger.Error("manual reload failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func classifySearchError(err error) (int, string) {
	status := apperrors.HTTPStatusCode(err)
	switch status {
	case http.StatusServiceUnavailable:
		return status, "search index not available"
	case http.StatusBadRequest:
		return status, "invalid query"
	default:
		return status, "search failed"
	}
}

func (h *Handler) recordSuggest(status string, cacheHit bool, start time.Time, returned int) {
	if h.metrics == nil {
		return
	}
	h.metrics.SuggestRequestsTotal.WithLabelValues(status).Inc()
	cacheStatus := "miss"
	if cacheHit {
		cacheStatus = "hit"
		h.metrics.CacheHitsTotal.Inc()
	} else {
		h.metrics.CacheMissesTotal.Inc()
	}
	h.metrics.SuggestLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	h.metrics.SuggestResultsCount.Observe(float64(returned))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
