package index

import (
	"errors"
	"sort"
	"testing"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/pkg/config"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

func testBuilderConfig() config.BuilderConfig {
	return config.BuilderConfig{TitleBoost: 4, TagBoost: 2, CategoryBoost: 2}
}

func sampleCorpus() []corpus.Document {
	docs := []corpus.Document{
		{
			Type: corpus.TypePrompt, Slug: "motion-outline-starter",
			Title:       "Motion Outline Starter",
			Description: "Skeleton headings for a motion to compel or strike.",
			Tags:        []string{"drafting", "motions"},
		},
		{
			Type: corpus.TypePrompt, Slug: "case-viability",
			Title:       "Case Viability Analysis",
			Description: "Assess strengths and weaknesses of a claim.",
			Tags:        []string{"assessment"},
		},
		{
			Type: corpus.TypeTool, Slug: "harvey",
			Title:       "Harvey",
			Description: "Contract review and drafting assistant.",
			Tags:        []string{"drafting", "contracts"},
			Categories:  []string{"research"},
		},
		{
			Type: corpus.TypeSkill, Slug: "deposition-prep",
			Title:       "Deposition Preparation",
			Description: "Question outlines and exhibit tracking for depositions.",
			Tags:        []string{"litigation"},
		},
	}
	for i := range docs {
		docs[i].ID = corpus.DocumentID(docs[i].Type, docs[i].Slug)
	}
	return docs
}

func TestBuild(t *testing.T) {
	builder := NewBuilder(testBuilderConfig())
	idx, metas, err := builder.Build(sampleCorpus())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(metas) != 4 {
		t.Fatalf("built %d metas, want 4", len(metas))
	}
	if idx.Stats.TotalDocs != 4 {
		t.Errorf("TotalDocs = %d, want 4", idx.Stats.TotalDocs)
	}
	if idx.Boosts[FieldTitle] != 4 || idx.Boosts[FieldTags] != 2 || idx.Boosts[FieldDescription] != 1 {
		t.Errorf("unexpected boosts: %v", idx.Boosts)
	}

	if !sort.SliceIsSorted(idx.Terms, func(i, j int) bool {
		return idx.Terms[i].Term < idx.Terms[j].Term
	}) {
		t.Error("term dictionary is not sorted")
	}
	for _, entry := range idx.Terms {
		if !sort.SliceIsSorted(entry.Postings, func(i, j int) bool {
			return entry.Postings[i].DocID < entry.Postings[j].DocID
		}) {
			t.Errorf("postings for %q are not sorted by DocID", entry.Term)
		}
	}

	// "drafting" appears in two documents' tags and one description.
	var drafting *TermEntry
	for i := range idx.Terms {
		if idx.Terms[i].Term == "drafting" {
			drafting = &idx.Terms[i]
			break
		}
	}
	if drafting == nil {
		t.Fatal("term \"drafting\" missing from dictionary")
	}
	if len(drafting.Postings) != 2 {
		t.Fatalf("drafting has %d postings, want 2", len(drafting.Postings))
	}
	for _, p := range drafting.Postings {
		if p.DocID == "tool:harvey" {
			if p.FieldFreq[FieldTags] != 1 || p.FieldFreq[FieldDescription] != 1 {
				t.Errorf("harvey drafting freqs = %v", p.FieldFreq)
			}
		}
	}

	if _, ok := idx.FieldLens["prompt:motion-outline-starter"]; !ok {
		t.Error("FieldLens missing entry for indexed document")
	}
	if idx.Stats.AvgFieldLen[FieldTitle] <= 0 {
		t.Errorf("AvgFieldLen[title] = %f, want > 0", idx.Stats.AvgFieldLen[FieldTitle])
	}
}

func TestBuildDeterministic(t *testing.T) {
	builder := NewBuilder(testBuilderConfig())
	idx1, _, err := builder.Build(sampleCorpus())
	if err != nil {
		t.Fatal(err)
	}
	idx2, _, err := builder.Build(sampleCorpus())
	if err != nil {
		t.Fatal(err)
	}
	if len(idx1.Terms) != len(idx2.Terms) {
		t.Fatalf("term counts differ: %d vs %d", len(idx1.Terms), len(idx2.Terms))
	}
	for i := range idx1.Terms {
		if idx1.Terms[i].Term != idx2.Terms[i].Term {
			t.Fatalf("term order differs at %d: %q vs %q", i, idx1.Terms[i].Term, idx2.Terms[i].Term)
		}
	}
}

func TestBuildEmptyCorpus(t *testing.T) {
	idx, metas, err := NewBuilder(testBuilderConfig()).Build(nil)
	if err != nil {
		t.Fatalf("Build of empty corpus failed: %v", err)
	}
	if len(metas) != 0 || idx.Stats.TotalDocs != 0 || len(idx.Terms) != 0 {
		t.Errorf("empty corpus produced non-empty index")
	}
}

func TestBuildInvalidDocuments(t *testing.T) {
	docs := sampleCorpus()
	docs[1].Title = ""

	cfg := testBuilderConfig()
	cfg.Strict = true
	if _, _, err := NewBuilder(cfg).Build(docs); err == nil {
		t.Fatal("strict build succeeded, want error")
	} else if !errors.Is(err, apperrors.ErrInvalidDocument) {
		t.Errorf("strict build error = %v, want ErrInvalidDocument", err)
	}

	cfg.Strict = false
	_, metas, err := NewBuilder(cfg).Build(docs)
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	if len(metas) != 3 {
		t.Errorf("lenient build kept %d documents, want 3", len(metas))
	}
}

func TestBuildRejectsMissingIDs(t *testing.T) {
	docs := sampleCorpus()[:2]
	docs[0].ID = ""
	docs[1].ID = ""

	cfg := testBuilderConfig()
	cfg.Strict = true
	if _, _, err := NewBuilder(cfg).Build(docs); err == nil {
		t.Fatal("strict build accepted documents with empty IDs")
	} else if !errors.Is(err, apperrors.ErrInvalidDocument) {
		t.Errorf("strict build error = %v, want ErrInvalidDocument", err)
	}

	cfg.Strict = false
	idx, metas, err := NewBuilder(cfg).Build(docs)
	if err != nil {
		t.Fatalf("lenient build failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("lenient build kept %d ID-less documents, want 0", len(metas))
	}
	if _, ok := idx.FieldLens[""]; ok {
		t.Error("FieldLens has an entry under the empty document ID")
	}
	for _, entry := range idx.Terms {
		for _, p := range entry.Postings {
			if p.DocID == "" {
				t.Fatalf("term %q indexed under an empty document ID", entry.Term)
			}
		}
	}
}
