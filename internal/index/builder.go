package index

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index/tokenizer"
	"github.com/counselbase/searchcore/pkg/config"
)

// Builder turns a corpus into an inverted index plus document metadata.
type Builder struct {
	boosts [NumFields]float64
	strict bool
	logger *slog.Logger
}

// NewBuilder creates a Builder with the configured field boosts. The
// description boost is the baseline and always 1.
func NewBuilder(cfg config.BuilderConfig) *Builder {
	boosts := [NumFields]float64{}
	boosts[FieldTitle] = cfg.TitleBoost
	boosts[FieldTags] = cfg.TagBoost
	boosts[FieldCategories] = cfg.CategoryBoost
	boosts[FieldDescription] = 1
	if boosts[FieldTitle] <= 0 {
		boosts[FieldTitle] = 4
	}
	if boosts[FieldTags] <= 0 {
		boosts[FieldTags] = 2
	}
	if boosts[FieldCategories] <= 0 {
		boosts[FieldCategories] = 2
	}
	return &Builder{
		boosts: boosts,
		strict: cfg.Strict,
		logger: slog.Default().With("component", "index-builder"),
	}
}

// Build indexes every document's title, tags, categories, and description.
// An empty corpus is valid and yields an artifact with zero documents.
// Invalid documents abort the build in strict mode and are skipped with a
// warning otherwise.
func (b *Builder) Build(docs []corpus.Document) (*Index, []DocMeta, error) {
	idx := &Index{
		Boosts:    b.boosts,
		FieldLens: make(map[string][NumFields]int, len(docs)),
	}
	metas := make([]DocMeta, 0, len(docs))
	terms := make(map[string]map[string]*Posting)
	var totalLens [NumFields]int

	for i := range docs {
		doc := &docs[i]
		if err := corpus.Validate(doc); err != nil {
			if b.strict {
				return nil, nil, fmt.Errorf("building index: %w", err)
			}
			b.logger.Warn("skipping invalid document", "id", doc.ID, "error", err)
			continue
		}

		fields := [NumFields]string{
			FieldTitle:       doc.Title,
			FieldTags:        strings.Join(doc.Tags, " "),
			FieldCategories:  strings.Join(doc.Categories, " "),
			FieldDescription: doc.Description,
		}
		var lens [NumFields]int
		for f := Field(0); f < NumFields; f++ {
			tokens := tokenizer.Tokenize(fields[f])
			lens[f] = len(tokens)
			totalLens[f] += len(tokens)
			for _, term := range tokens {
				byDoc, ok := terms[term]
				if !ok {
					byDoc = make(map[string]*Posting)
					terms[term] = byDoc
				}
				p, ok := byDoc[doc.ID]
				if !ok {
					p = &Posting{DocID: doc.ID}
					byDoc[doc.ID] = p
				}
				p.FieldFreq[f]++
			}
		}
		idx.FieldLens[doc.ID] = lens
		metas = append(metas, DocMeta{
			ID:          doc.ID,
			Type:        doc.Type,
			Slug:        doc.Slug,
			Title:       doc.Title,
			Description: doc.Description,
		})
	}

	idx.Stats.TotalDocs = len(metas)
	if len(metas) > 0 {
		for f := 0; f < NumFields; f++ {
			idx.Stats.AvgFieldLen[f] = float64(totalLens[f]) / float64(len(metas))
		}
	}

	idx.Terms = make([]TermEntry, 0, len(terms))
	for term, byDoc := range terms {
		postings := make([]Posting, 0, len(byDoc))
		for _, p := range byDoc {
			postings = append(postings, *p)
		}
		sort.Slice(postings, func(i, j int) bool {
			return postings[i].DocID < postings[j].DocID
		})
		idx.Terms = append(idx.Terms, TermEntry{Term: term, Postings: postings})
	}
	sort.Slice(idx.Terms, func(i, j int) bool {
		return idx.Terms[i].Term < idx.Terms[j].Term
	})

	b.logger.Info("index built",
		"documents", len(metas),
		"terms", len(idx.Terms),
	)
	return idx, metas, nil
}
