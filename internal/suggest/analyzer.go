// Package suggest turns one free-text query into a short, curated list of
// directory entries. It layers query analysis, multi-pass retrieval,
// re-ranking, and curation on top of the index runtime.
package suggest

import (
	"regexp"
	"strings"

	"github.com/counselbase/searchcore/internal/index/tokenizer"
)

// Intent detection is a fixed rule table, not a classifier. The keyword
// sets are tuned for legal drafting workflows; determinism and auditability
// are the point.
var (
	assessIntentRe = regexp.MustCompile(`\b(assess|evaluate|viability|strengths?|weakness(es)?|analysis|risk|likelihood)\b`)
	draftIntentRe  = regexp.MustCompile(`\b(draft|write|generate|outline|template|starter|motion|brief|opposition|reply|memo)\b`)
	motionRe       = regexp.MustCompile(`\b(motion|brief|opposition|reply)\b`)
	motionToRe     = regexp.MustCompile(`\bmotion to\b`)
	subtypeToRe    = regexp.MustCompile(`\b(opposition|reply) to\b`)
)

// Expansion terms appended to motion-shaped queries. "motion to X" almost
// always means "help me build one", so the expansion pulls in drafting
// material even when the literal wording undershoots.
var (
	subtypeExpansion = []string{"draft", "outline", "starter", "template", "brief", "headings", "drafting"}
	motionExpansion  = []string{"outline", "drafting"}
)

// Analysis is the derived view of one raw query.
type Analysis struct {
	Raw                    string
	Normalized             string
	Tokens                 []string
	HasAssessIntent        bool
	HasDraftIntent         bool
	LooksLikeMotion        bool
	LooksLikeMotionSubtype bool
	ExpandedQuery          string
}

// Analyze normalises the raw query, derives the intent flags, and builds the
// expanded query used by the auxiliary retrieval pass. It is pure and
// deterministic.
func Analyze(raw string) Analysis {
	norm := tokenizer.Normalize(raw)
	tokens := tokenizer.UniqueTokens(raw)

	a := Analysis{
		Raw:             raw,
		Normalized:      norm,
		Tokens:          tokens,
		HasAssessIntent: assessIntentRe.MatchString(norm),
		HasDraftIntent:  draftIntentRe.MatchString(norm) || motionToRe.MatchString(norm),
		LooksLikeMotion: motionRe.MatchString(norm),
	}
	a.LooksLikeMotionSubtype = motionToRe.MatchString(norm) || subtypeToRe.MatchString(norm)

	var expansions []string
	switch {
	case a.LooksLikeMotionSubtype:
		expansions = subtypeExpansion
	case a.LooksLikeMotion:
		expansions = motionExpansion
	}

	expanded := make([]string, 0, len(tokens)+len(expansions))
	seen := make(map[string]struct{}, len(tokens)+len(expansions))
	for _, t := range tokens {
		seen[t] = struct{}{}
		expanded = append(expanded, t)
	}
	for _, t := range expansions {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		expanded = append(expanded, t)
	}
	a.ExpandedQuery = strings.Join(expanded, " ")
	return a
}
