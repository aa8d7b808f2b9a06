package suggest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/index/tokenizer"
	"github.com/counselbase/searchcore/internal/search"
)

// Retrieval pass weights and per-pass hit limits. A document surfacing in
// several passes accumulates all of its weighted pass scores, which rewards
// results that satisfy both strict and loose matching.
const (
	passStrictWeight   = 1.15
	passLooseWeight    = 1.0
	passExpandedWeight = 0.95
	passStrictLimit    = 18
	passLooseLimit     = 24
	passExpandedLimit  = 24
)

// Re-ranking multipliers. All independent, all applied; the blend stays
// fully deterministic.
const (
	boostExactTitle     = 1.6
	boostTitleCoverage  = 1.18
	boostTitleAllTokens = 1.25
	boostDraftPrompt    = 1.12
	boostSubtypeDrafty  = 1.35
	cutSubtypeAssessy   = 0.65
	boostAssessPrompt   = 1.06
	boostAssessyTitle   = 1.18
	cutDraftyTitle      = 0.85
	boostGenericDrafty  = 1.12
	cutGenericAssessy   = 0.9
	cutDescriptionOnly  = 0.92
	cutMotionTool       = 0.95
	boostMotionSkill    = 1.02
)

var (
	draftyTitleRe  = regexp.MustCompile(`\b(starter|outline|template|draft)\b`)
	assessyTitleRe = regexp.MustCompile(`\b(assess|viability|strengths? and weakness(es)?|analysis)\b`)
)

// Candidate pairs a resolvable document with its blended, re-ranked score.
type Candidate struct {
	Doc   index.DocMeta
	Score float64
}

// Retriever is the slice of the index runtime the blender needs.
type Retriever interface {
	Search(query string, opts search.Options) ([]search.Hit, error)
	Lookup(id string) (index.DocMeta, bool)
}

// blend issues the strict, loose, and expanded retrieval passes and merges
// their hits into one candidate list with weighted accumulated base scores.
// Candidates keep first-seen order so the final sort is stable across runs.
// observe, when non-nil, is called once per executed pass with the raw hit
// count before truncation.
func blend(r Retriever, a Analysis, fuzzy float64, observe func(pass string, hits int)) ([]Candidate, error) {
	order := make([]string, 0, passStrictLimit+passLooseLimit)
	scores := make(map[string]float64)

	addHits := func(hits []search.Hit, limit int, weight float64) {
		if len(hits) > limit {
			hits = hits[:limit]
		}
		for _, h := range hits {
			if _, ok := scores[h.ID]; !ok {
				order = append(order, h.ID)
			}
			scores[h.ID] += h.Score * weight
		}
	}

	base := search.Options{Prefix: true, Fuzzy: fuzzy}

	strict := base
	strict.Combine = search.CombineAND
	hits, err := r.Search(a.Raw, strict)
	if err != nil {
		return nil, err
	}
	if observe != nil {
		observe("strict", len(hits))
	}
	addHits(hits, passStrictLimit, passStrictWeight)

	loose := base
	loose.Combine = search.CombineOR
	hits, err = r.Search(a.Raw, loose)
	if err != nil {
		return nil, err
	}
	if observe != nil {
		observe("loose", len(hits))
	}
	addHits(hits, passLooseLimit, passLooseWeight)

	if a.ExpandedQuery != "" && a.ExpandedQuery != a.Normalized {
		hits, err = r.Search(a.ExpandedQuery, loose)
		if err != nil {
			return nil, err
		}
		if observe != nil {
			observe("expanded", len(hits))
		}
		addHits(hits, passExpandedLimit, passExpandedWeight)
	}

	candidates := make([]Candidate, 0, len(order))
	for _, id := range order {
		doc, ok := r.Lookup(id)
		if !ok {
			// Hits with no resolvable document are dropped silently.
			continue
		}
		candidates = append(candidates, Candidate{Doc: doc, Score: scores[id]})
	}
	return candidates, nil
}

// rescore applies the intent-aware multipliers to one candidate's blended
// base score.
func rescore(doc *index.DocMeta, base float64, a Analysis) float64 {
	s := base
	title := tokenizer.Normalize(doc.Title)
	desc := tokenizer.Normalize(doc.Description)

	// Exact-ish title matches come first.
	if a.Normalized != "" && strings.Contains(title, a.Normalized) {
		s *= boostExactTitle
	}
	inTitle := 0
	for _, t := range a.Tokens {
		if strings.Contains(title, t) {
			inTitle++
		}
	}
	if len(a.Tokens) >= 2 && inTitle >= min(3, len(a.Tokens)) {
		s *= boostTitleCoverage
	}
	if len(a.Tokens) > 0 && inTitle == len(a.Tokens) {
		s *= boostTitleAllTokens
	}

	isPrompt := doc.Type == corpus.TypePrompt
	isTool := doc.Type == corpus.TypeTool
	isSkill := doc.Type == corpus.TypeSkill
	titleDrafty := draftyTitleRe.MatchString(title)
	titleAssessy := assessyTitleRe.MatchString(title)

	if a.HasDraftIntent {
		if isPrompt {
			s *= boostDraftPrompt
		}
		if a.LooksLikeMotionSubtype && isPrompt && titleDrafty {
			s *= boostSubtypeDrafty
		}
		if a.LooksLikeMotionSubtype && isPrompt && titleAssessy && !a.HasAssessIntent {
			s *= cutSubtypeAssessy
		}
	}

	if a.HasAssessIntent {
		if isPrompt {
			s *= boostAssessPrompt
		}
		if titleAssessy {
			s *= boostAssessyTitle
		}
		if titleDrafty {
			s *= cutDraftyTitle
		}
	}

	// Default bias: actionable templates beat meta-analysis when the query
	// shows no explicit assess intent.
	if !a.HasAssessIntent && titleDrafty {
		s *= boostGenericDrafty
	}
	if !a.HasAssessIntent && titleAssessy {
		s *= cutGenericAssessy
	}

	// De-emphasize matches buried in long descriptions.
	if inTitle == 0 {
		for _, t := range a.Tokens {
			if strings.Contains(desc, t) {
				s *= cutDescriptionOnly
				break
			}
		}
	}

	if a.LooksLikeMotion && isTool {
		s *= cutMotionTool
	}
	if a.LooksLikeMotion && isSkill {
		s *= boostMotionSkill
	}
	return s
}

// rerank rescores every candidate and sorts descending. The sort is stable,
// so ties keep their blend insertion order and repeated runs agree.
func rerank(candidates []Candidate, a Analysis) []Candidate {
	for i := range candidates {
		candidates[i].Score = rescore(&candidates[i].Doc, candidates[i].Score, a)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
