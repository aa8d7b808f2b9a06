package suggest

import (
	"errors"
	"log/slog"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/search"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
	"github.com/counselbase/searchcore/pkg/metrics"
)

// Status tells the caller how to present the response.
type Status string

const (
	// StatusOK carries one or more curated items.
	StatusOK Status = "ok"
	// StatusLoading means the index is not loaded yet; the client should
	// show the message and retry later.
	StatusLoading Status = "loading"
	// StatusNoMatches means the query was understood but nothing matched.
	StatusNoMatches Status = "no_matches"
	// StatusEmpty means the query held no searchable tokens; the client
	// should clear its suggestions without showing a message.
	StatusEmpty Status = "empty"
)

const (
	loadingMessage   = "Search index not available."
	noMatchesMessage = "No matches. Try different wording (or a specific task like 'contract review')."
)

// Result is the full suggestion response for one query.
type Result struct {
	Status     Status          `json:"status"`
	Message    string          `json:"message,omitempty"`
	Generation uint64          `json:"generation"`
	Items      []index.DocMeta `json:"items"`
}

// Suggester runs the full pipeline: analyze, retrieve over several passes,
// re-rank by intent, curate per type. All its methods are safe for
// concurrent use; the engine snapshot is immutable per search.
type Suggester struct {
	engine      *search.Engine
	caps        Caps
	fuzzy       float64
	searchLimit int
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewSuggester wires a Suggester over an engine. fuzzy is the relative
// edit-distance budget (0.2 means one edit per five characters); a
// non-positive searchLimit falls back to 8. m may be nil.
func NewSuggester(engine *search.Engine, caps Caps, fuzzy float64, searchLimit int, m *metrics.Metrics, logger *slog.Logger) *Suggester {
	if fuzzy <= 0 {
		fuzzy = 0.2
	}
	if searchLimit <= 0 {
		searchLimit = 8
	}
	return &Suggester{
		engine:      engine,
		caps:        caps,
		fuzzy:       fuzzy,
		searchLimit: searchLimit,
		metrics:     m,
		logger:      logger,
	}
}

// Suggest answers one suggestion query. The generation value is echoed back
// untouched so clients can discard responses from superseded keystrokes.
// An unready index yields StatusLoading rather than an error; only malformed
// input or internal failures return err != nil.
func (s *Suggester) Suggest(raw string, sctx Context, generation uint64) (Result, error) {
	if !sctx.Valid() {
		sctx = ContextGlobal
	}
	if !s.engine.Ready() {
		return Result{
			Status:     StatusLoading,
			Message:    loadingMessage,
			Generation: generation,
			Items:      []index.DocMeta{},
		}, nil
	}

	a := Analyze(raw)
	if len(a.Tokens) == 0 {
		return Result{
			Status:     StatusEmpty,
			Generation: generation,
			Items:      []index.DocMeta{},
		}, nil
	}

	candidates, err := blend(s.engine, a, s.fuzzy, s.observePass)
	if err != nil {
		if errors.Is(err, apperrors.ErrIndexNotReady) {
			return Result{
				Status:     StatusLoading,
				Message:    loadingMessage,
				Generation: generation,
				Items:      []index.DocMeta{},
			}, nil
		}
		return Result{}, err
	}

	ranked := rerank(candidates, a)
	items := curate(ranked, sctx, s.caps)
	if len(items) == 0 {
		return Result{
			Status:     StatusNoMatches,
			Message:    noMatchesMessage,
			Generation: generation,
			Items:      []index.DocMeta{},
		}, nil
	}
	return Result{
		Status:     StatusOK,
		Generation: generation,
		Items:      items,
	}, nil
}

// SearchAll is the plain directory search: strict AND with prefix matching
// and no fuzzy correction, every type included, top limit results.
func (s *Suggester) SearchAll(query string, limit int) ([]index.DocMeta, error) {
	if limit <= 0 {
		limit = s.searchLimit
	}
	hits, err := s.engine.Search(query, search.Options{
		Combine: search.CombineAND,
		Prefix:  true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]index.DocMeta, 0, limit)
	for _, h := range hits {
		doc, ok := s.engine.Lookup(h.ID)
		if !ok {
			continue
		}
		out = append(out, doc)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// SearchTools returns the slugs of matching tools, sorted by relevance.
// It is intended for filter surfaces that already know the tool metadata
// and only need the ordered membership set.
func (s *Suggester) SearchTools(query string) ([]string, error) {
	hits, err := s.engine.Search(query, search.Options{
		Combine: search.CombineAND,
		Prefix:  true,
	})
	if err != nil {
		return nil, err
	}
	slugs := make([]string, 0, len(hits))
	for _, h := range hits {
		doc, ok := s.engine.Lookup(h.ID)
		if !ok || doc.Type != corpus.TypeTool {
			continue
		}
		slugs = append(slugs, doc.Slug)
		if len(slugs) >= 1000 {
			break
		}
	}
	return slugs, nil
}

func (s *Suggester) observePass(pass string, hits int) {
	if s.metrics != nil {
		s.metrics.RetrievalPassHits.WithLabelValues(pass).Observe(float64(hits))
	}
}

// TypeCounts is a small helper for handlers that report result mixes.
func TypeCounts(items []index.DocMeta) map[string]int {
	counts := make(map[string]int, 4)
	for i := range items {
		counts[string(items[i].Type)]++
	}
	return counts
}
