package search

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/index/artifact"
	"github.com/counselbase/searchcore/pkg/config"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

func testDocs() []corpus.Document {
	docs := []corpus.Document{
		{
			Type: corpus.TypePrompt, Slug: "motion-outline-starter",
			Title:       "Motion Outline Starter",
			Description: "Skeleton headings for a motion to compel or to strike.",
			Tags:        []string{"drafting", "motions"},
		},
		{
			Type: corpus.TypePrompt, Slug: "case-viability",
			Title:       "Case Viability Analysis",
			Description: "Assess strengths and weaknesses before filing.",
			Tags:        []string{"assessment", "analysis"},
		},
		{
			Type: corpus.TypeTool, Slug: "harvey",
			Title:       "Contract Review and Drafting",
			Description: "Clause extraction and redline suggestions.",
			Tags:        []string{"contracts", "drafting"},
			Categories:  []string{"transactional"},
		},
		{
			Type: corpus.TypeSkill, Slug: "deposition-prep",
			Title:       "Deposition Preparation",
			Description: "Question outlines and exhibit tracking for depositions.",
			Tags:        []string{"litigation"},
		},
		{
			Type: corpus.TypePlaybook, Slug: "discovery-playbook",
			Title:       "Discovery Playbook",
			Description: "End to end discovery workflow with motion practice checkpoints.",
			Tags:        []string{"litigation", "discovery"},
		},
	}
	for i := range docs {
		docs[i].ID = corpus.DocumentID(docs[i].Type, docs[i].Slug)
	}
	return docs
}

func loadedEngine(t *testing.T) *Engine {
	t.Helper()
	idx, metas, err := index.NewBuilder(config.BuilderConfig{
		TitleBoost: 4, TagBoost: 2, CategoryBoost: 2,
	}).Build(testDocs())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine()
	e.Load(idx, metas, "2026-01-01T00:00:00Z")
	return e
}

func hitIDs(hits []Hit) []string {
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.ID
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestSearchNotReady(t *testing.T) {
	e := NewEngine()
	if e.Ready() {
		t.Error("empty engine reports ready")
	}
	if _, err := e.Search("motion", Options{}); !errors.Is(err, apperrors.ErrIndexNotReady) {
		t.Errorf("Search error = %v, want ErrIndexNotReady", err)
	}
	if _, ok := e.Lookup("prompt:motion-outline-starter"); ok {
		t.Error("Lookup on empty engine returned a document")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	e := loadedEngine(t)
	for _, q := range []string{"", "   ", "?!--"} {
		hits, err := e.Search(q, Options{})
		if err != nil {
			t.Errorf("Search(%q) error: %v", q, err)
		}
		if len(hits) != 0 {
			t.Errorf("Search(%q) = %v, want no hits", q, hits)
		}
	}
}

func TestSearchExactAND(t *testing.T) {
	e := loadedEngine(t)
	hits, err := e.Search("motion outline", Options{Combine: CombineAND})
	if err != nil {
		t.Fatal(err)
	}
	ids := hitIDs(hits)
	if !contains(ids, "prompt:motion-outline-starter") {
		t.Errorf("AND search missed the only doc with both tokens: %v", ids)
	}
	// "outline" does not appear in the playbook, so AND must exclude it.
	if contains(ids, "playbook:discovery-playbook") {
		t.Errorf("AND search leaked a partial match: %v", ids)
	}
}

func TestSearchOR(t *testing.T) {
	e := loadedEngine(t)
	hits, err := e.Search("motion outline", Options{Combine: CombineOR})
	if err != nil {
		t.Fatal(err)
	}
	ids := hitIDs(hits)
	if !contains(ids, "prompt:motion-outline-starter") || !contains(ids, "playbook:discovery-playbook") {
		t.Errorf("OR search = %v, want both full and partial matches", ids)
	}
	if len(hits) < 3 {
		t.Errorf("OR search returned %d hits, want at least 3", len(hits))
	}
}

func TestSearchTitleBoostOrdering(t *testing.T) {
	e := loadedEngine(t)
	hits, err := e.Search("motion", Options{Combine: CombineOR})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) < 2 {
		t.Fatalf("want multiple hits, got %v", hits)
	}
	// Title occurrences outweigh description occurrences.
	if hits[0].ID != "prompt:motion-outline-starter" {
		t.Errorf("top hit = %q, want the title match first", hits[0].ID)
	}
}

func TestSearchPrefix(t *testing.T) {
	e := loadedEngine(t)

	hits, err := e.Search("contr", Options{Combine: CombineAND})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("bare partial token matched without prefix enabled: %v", hits)
	}

	hits, err = e.Search("contr", Options{Combine: CombineAND, Prefix: true})
	if err != nil {
		t.Fatal(err)
	}
	if !contains(hitIDs(hits), "tool:harvey") {
		t.Errorf("prefix search for %q = %v, want the contract tool", "contr", hitIDs(hits))
	}
}

func TestSearchPrefixDiscount(t *testing.T) {
	e := loadedEngine(t)
	exact, err := e.Search("contracts", Options{Prefix: true})
	if err != nil {
		t.Fatal(err)
	}
	prefix, err := e.Search("contr", Options{Prefix: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(exact) == 0 || len(prefix) == 0 {
		t.Fatalf("expected hits for both queries: %v / %v", exact, prefix)
	}
	if prefix[0].Score >= exact[0].Score {
		t.Errorf("prefix score %f not discounted below exact score %f", prefix[0].Score, exact[0].Score)
	}
}

func TestSearchFuzzy(t *testing.T) {
	e := loadedEngine(t)

	// One transposition in a ten-letter token stays within the 0.2 budget.
	hits, err := e.Search("depostiion", Options{Combine: CombineAND, Fuzzy: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if !contains(hitIDs(hits), "skill:deposition-prep") {
		t.Errorf("fuzzy search = %v, want the deposition skill", hitIDs(hits))
	}

	// Without fuzzy the typo must not match.
	hits, err = e.Search("depostiion", Options{Combine: CombineAND})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("typo matched without fuzzy: %v", hits)
	}

	// Tokens shorter than five letters get a zero edit budget at 0.2.
	hits, err = e.Search("mtin", Options{Combine: CombineAND, Fuzzy: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 0 {
		t.Errorf("four-letter typo matched with zero budget: %v", hits)
	}
}

func TestSearchDeterministic(t *testing.T) {
	e := loadedEngine(t)
	first, err := e.Search("drafting motion analysis", Options{Combine: CombineOR, Prefix: true, Fuzzy: 0.2})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Search("drafting motion analysis", Options{Combine: CombineOR, Prefix: true, Fuzzy: 0.2})
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	idx, metas, err := index.NewBuilder(config.BuilderConfig{
		TitleBoost: 4, TagBoost: 2, CategoryBoost: 2,
	}).Build(testDocs())
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "index.cbx")
	if err := artifact.Write(path, idx, metas); err != nil {
		t.Fatal(err)
	}

	e := NewEngine()
	if err := e.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if !e.Ready() || e.DocCount() != len(metas) {
		t.Fatalf("engine not ready after LoadFile, doc count %d", e.DocCount())
	}

	hits, err := e.Search("motion outline", Options{Combine: CombineAND})
	if err != nil {
		t.Fatal(err)
	}
	if !contains(hitIDs(hits), "prompt:motion-outline-starter") {
		t.Errorf("search after LoadFile = %v", hitIDs(hits))
	}

	doc, ok := e.Lookup("tool:harvey")
	if !ok || doc.Title != "Contract Review and Drafting" {
		t.Errorf("Lookup after LoadFile = %+v, %v", doc, ok)
	}
}

func TestLoadReplacesSnapshot(t *testing.T) {
	e := loadedEngine(t)

	smaller := testDocs()[:2]
	idx, metas, err := index.NewBuilder(config.BuilderConfig{
		TitleBoost: 4, TagBoost: 2, CategoryBoost: 2,
	}).Build(smaller)
	if err != nil {
		t.Fatal(err)
	}
	e.Load(idx, metas, "2026-02-01T00:00:00Z")

	if e.DocCount() != 2 {
		t.Errorf("DocCount after reload = %d, want 2", e.DocCount())
	}
	if _, ok := e.Lookup("tool:harvey"); ok {
		t.Error("document from the previous snapshot still resolves")
	}
}
