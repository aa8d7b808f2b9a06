// Package search implements the index runtime: it loads a serialised
// artifact once and answers token-based queries against it. All state is
// read-only after a load, so concurrent queries need no coordination.
package search

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/index/artifact"
	"github.com/counselbase/searchcore/internal/index/tokenizer"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

// BM25 parameters, shared with the field-length normalisation below.
const (
	k1 = 1.2
	b  = 0.75
)

// Match-type weights. Exact term hits count full; prefix and fuzzy hits are
// discounted, scaled by how much of the indexed term the query covers.
const (
	prefixWeight = 0.375
	fuzzyWeight  = 0.45
)

// Combine selects how per-token hit sets are merged.
type Combine int

const (
	CombineAND Combine = iota
	CombineOR
)

// Options controls one search call.
type Options struct {
	Combine Combine
	Prefix  bool
	Fuzzy   float64
}

// Hit is one scored document reference.
type Hit struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// snapshot is the immutable loaded state; Load swaps the whole pointer.
type snapshot struct {
	idx      *index.Index
	docsByID map[string]index.DocMeta
	builtAt  string
}

// Engine is an explicitly owned index runtime: construct it, Load an
// artifact, then call Search any number of times. A second Load replaces
// the previous artifact atomically.
type Engine struct {
	mu     sync.RWMutex
	snap   *snapshot
	logger *slog.Logger
}

// NewEngine creates an empty, not-yet-ready Engine.
func NewEngine() *Engine {
	return &Engine{
		logger: slog.Default().With("component", "search-engine"),
	}
}

// LoadFile reads an artifact from disk and installs it.
func (e *Engine) LoadFile(path string) error {
	idx, envelope, err := artifact.Read(path)
	if err != nil {
		return err
	}
	e.Load(idx, envelope.Docs, envelope.BuiltAt)
	return nil
}

// Load installs an already-deserialised index and document metadata.
func (e *Engine) Load(idx *index.Index, docs []index.DocMeta, builtAt string) {
	docsByID := make(map[string]index.DocMeta, len(docs))
	for _, d := range docs {
		docsByID[d.ID] = d
	}
	e.mu.Lock()
	e.snap = &snapshot{idx: idx, docsByID: docsByID, builtAt: builtAt}
	e.mu.Unlock()
	e.logger.Info("index loaded",
		"documents", len(docs),
		"terms", len(idx.Terms),
		"built_at", builtAt,
	)
}

// Ready reports whether an artifact has been loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap != nil
}

// DocCount returns the number of documents in the loaded artifact.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return 0
	}
	return len(e.snap.docsByID)
}

// Lookup resolves a document ID to its display metadata. Index hits whose
// ID fails to resolve are silently droppable by contract.
func (e *Engine) Lookup(id string) (index.DocMeta, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.snap == nil {
		return index.DocMeta{}, false
	}
	doc, ok := e.snap.docsByID[id]
	return doc, ok
}

// Search tokenizes the query the same way the builder did, gathers postings
// per token (honouring prefix and fuzzy options), and combines the per-token
// hit sets. An empty or whitespace-only query yields no hits and no error;
// an unloaded engine reports ErrIndexNotReady.
func (e *Engine) Search(query string, opts Options) ([]Hit, error) {
	e.mu.RLock()
	snap := e.snap
	e.mu.RUnlock()
	if snap == nil {
		return nil, apperrors.ErrIndexNotReady
	}

	tokens := tokenizer.UniqueTokens(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	perToken := make([]map[string]float64, 0, len(tokens))
	for _, tok := range tokens {
		perToken = append(perToken, snap.scoreToken(tok, opts))
	}

	var merged map[string]float64
	switch opts.Combine {
	case CombineAND:
		merged = intersectScores(perToken)
	default:
		merged = unionScores(perToken)
	}

	hits := make([]Hit, 0, len(merged))
	for id, score := range merged {
		hits = append(hits, Hit{ID: id, Score: math.Round(score*10000) / 10000})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	return hits, nil
}

// scoreToken scores every document matching one query token. A token can
// match several indexed terms (exact, prefix completions, fuzzy variants);
// each document keeps the best contribution so near-duplicate terms do not
// double count.
func (s *snapshot) scoreToken(tok string, opts Options) map[string]float64 {
	weights := make(map[int]float64)

	if i, ok := s.findTerm(tok); ok {
		weights[i] = 1
	}
	if opts.Prefix {
		lo, hi := s.prefixRange(tok)
		for i := lo; i < hi; i++ {
			term := s.idx.Terms[i].Term
			if term == tok {
				continue
			}
			w := prefixWeight * float64(len(tok)) / float64(len(term))
			if w > weights[i] {
				weights[i] = w
			}
		}
	}
	if opts.Fuzzy > 0 {
		maxDist := fuzzyDistance(opts.Fuzzy, tok)
		if maxDist > 0 {
			for i := range s.idx.Terms {
				term := s.idx.Terms[i].Term
				if term == tok {
					continue
				}
				if abs(len(term)-len(tok)) > maxDist {
					continue
				}
				dist, ok := editDistanceWithin(tok, term, maxDist)
				if !ok {
					continue
				}
				w := fuzzyWeight * (1 - float64(dist)/float64(len(term)))
				if w > weights[i] {
					weights[i] = w
				}
			}
		}
	}

	scores := make(map[string]float64)
	for i, w := range weights {
		entry := &s.idx.Terms[i]
		idf := computeIDF(s.idx.Stats.TotalDocs, len(entry.Postings))
		for _, p := range entry.Postings {
			contribution := w * idf * s.fieldScore(&p)
			// Membership is decided by postings, not by score, so even a
			// zero contribution records the document as a match.
			if existing, ok := scores[p.DocID]; !ok || contribution > existing {
				scores[p.DocID] = contribution
			}
		}
	}
	return scores
}

// fieldScore sums the boosted, length-normalised term frequency over all
// four fields of one posting.
func (s *snapshot) fieldScore(p *index.Posting) float64 {
	lens := s.idx.FieldLens[p.DocID]
	var total float64
	for f := 0; f < index.NumFields; f++ {
		if p.FieldFreq[f] == 0 {
			continue
		}
		total += s.idx.Boosts[f] * computeTFNorm(
			float64(p.FieldFreq[f]),
			float64(lens[f]),
			s.idx.Stats.AvgFieldLen[f],
		)
	}
	return total
}

// findTerm binary-searches the sorted term dictionary.
func (s *snapshot) findTerm(term string) (int, bool) {
	i := sort.Search(len(s.idx.Terms), func(i int) bool {
		return s.idx.Terms[i].Term >= term
	})
	if i < len(s.idx.Terms) && s.idx.Terms[i].Term == term {
		return i, true
	}
	return 0, false
}

// prefixRange returns the half-open index range of terms starting with tok.
func (s *snapshot) prefixRange(tok string) (int, int) {
	lo := sort.Search(len(s.idx.Terms), func(i int) bool {
		return s.idx.Terms[i].Term >= tok
	})
	hi := lo
	for hi < len(s.idx.Terms) && strings.HasPrefix(s.idx.Terms[hi].Term, tok) {
		hi++
	}
	return lo, hi
}

// fuzzyDistance resolves the fuzzy option into an absolute edit distance:
// values below 1 are relative to the token length, values of 1 or more are
// absolute.
func fuzzyDistance(fuzzy float64, tok string) int {
	if fuzzy < 1 {
		return int(fuzzy * float64(len(tok)))
	}
	return int(fuzzy)
}

func intersectScores(perToken []map[string]float64) map[string]float64 {
	if len(perToken) == 0 {
		return map[string]float64{}
	}
	smallest := 0
	for i, m := range perToken {
		if len(m) < len(perToken[smallest]) {
			smallest = i
		}
	}
	merged := make(map[string]float64, len(perToken[smallest]))
	for id := range perToken[smallest] {
		total := 0.0
		inAll := true
		for _, m := range perToken {
			score, ok := m[id]
			if !ok {
				inAll = false
				break
			}
			total += score
		}
		if inAll {
			merged[id] = total
		}
	}
	return merged
}

func unionScores(perToken []map[string]float64) map[string]float64 {
	merged := make(map[string]float64)
	for _, m := range perToken {
		for id, score := range m {
			merged[id] += score
		}
	}
	return merged
}

func computeIDF(totalDocs, docFreq int) float64 {
	numerator := float64(totalDocs) - float64(docFreq)
	denominator := float64(docFreq) + 0.5
	return math.Log(numerator/denominator + 1)
}

func computeTFNorm(termFreq, fieldLength, avgFieldLength float64) float64 {
	if avgFieldLength == 0 {
		return 0
	}
	lengthRatio := fieldLength / avgFieldLength
	denominator := termFreq + k1*(1-b+b*lengthRatio)
	return (termFreq * (k1 + 1)) / denominator
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
