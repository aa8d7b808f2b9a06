package benchmark

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/internal/index/tokenizer"
	"github.com/counselbase/searchcore/internal/search"
	"github.com/counselbase/searchcore/internal/suggest"
	"github.com/counselbase/searchcore/pkg/config"
)

var titleWords = []string{
	"motion", "outline", "starter", "contract", "review", "drafting",
	"deposition", "discovery", "viability", "analysis", "demand", "letter",
	"brief", "opposition", "reply", "memo", "checklist", "intake",
}

func syntheticCorpus(n int) []corpus.Document {
	types := []corpus.DocType{corpus.TypeTool, corpus.TypePrompt, corpus.TypeSkill, corpus.TypePlaybook}
	docs := make([]corpus.Document, n)
	for i := range docs {
		t := types[i%len(types)]
		w1 := titleWords[i%len(titleWords)]
		w2 := titleWords[(i*7+3)%len(titleWords)]
		w3 := titleWords[(i*13+5)%len(titleWords)]
		slug := fmt.Sprintf("%s-%s-%d", w1, w2, i)
		docs[i] = corpus.Document{
			ID:          corpus.DocumentID(t, slug),
			Type:        t,
			Slug:        slug,
			Title:       fmt.Sprintf("%s %s %s", w1, w2, w3),
			Description: fmt.Sprintf("Helps with %s and %s for %s workflows.", w1, w3, w2),
			Tags:        []string{w1, w2},
		}
	}
	return docs
}

func builtEngine(b *testing.B, n int) *search.Engine {
	b.Helper()
	idx, metas, err := index.NewBuilder(config.BuilderConfig{
		TitleBoost: 4, TagBoost: 2, CategoryBoost: 2,
	}).Build(syntheticCorpus(n))
	if err != nil {
		b.Fatal(err)
	}
	e := search.NewEngine()
	e.Load(idx, metas, "2026-01-01T00:00:00Z")
	return e
}

func BenchmarkNormalize(b *testing.B) {
	queries := map[string]string{
		"short": "motion to compel",
		"punctuated": "Draft an opposition to the Motion for Summary Judgment (Rule 56)!" +
			" -- include supporting authorities & exhibits",
	}
	for name, q := range queries {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(q)))
			for i := 0; i < b.N; i++ {
				_ = tokenizer.Normalize(q)
			}
		})
	}
}

func BenchmarkIndexBuild(b *testing.B) {
	sizes := []int{100, 1000, 5000}
	for _, n := range sizes {
		docs := syntheticCorpus(n)
		builder := index.NewBuilder(config.BuilderConfig{
			TitleBoost: 4, TagBoost: 2, CategoryBoost: 2,
		})
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, _, err := builder.Build(docs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEngineSearch(b *testing.B) {
	engine := builtEngine(b, 2000)
	cases := []struct {
		name string
		q    string
		opts search.Options
	}{
		{"exact_and", "motion outline", search.Options{Combine: search.CombineAND}},
		{"exact_or", "motion outline", search.Options{Combine: search.CombineOR}},
		{"prefix", "contr", search.Options{Combine: search.CombineAND, Prefix: true}},
		{"fuzzy", "depostiion", search.Options{Combine: search.CombineOR, Fuzzy: 0.2}},
		{"all_options", "motion outline drafting", search.Options{Combine: search.CombineOR, Prefix: true, Fuzzy: 0.2}},
	}
	for _, c := range cases {
		b.Run(c.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := engine.Search(c.q, c.opts); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSuggest(b *testing.B) {
	engine := builtEngine(b, 2000)
	s := suggest.NewSuggester(
		engine,
		suggest.CapsFromConfig(config.SuggestConfig{}),
		0.2, 8, nil, slog.Default(),
	)
	queries := []struct {
		name string
		q    string
	}{
		{"topic", "contract review"},
		{"subtype", "motion to compel"},
		{"assess", "assess viability of my claim"},
		{"typo", "depostiion preparation"},
	}
	for _, q := range queries {
		b.Run(q.name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.Suggest(q.q, suggest.ContextGlobal, uint64(i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSuggestParallel(b *testing.B) {
	engine := builtEngine(b, 2000)
	s := suggest.NewSuggester(
		engine,
		suggest.CapsFromConfig(config.SuggestConfig{}),
		0.2, 8, nil, slog.Default(),
	)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := s.Suggest("draft a motion to compel", suggest.ContextGlobal, 1); err != nil {
				b.Fatal(err)
			}
		}
	})
}
