package corpus

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/counselbase/searchcore/pkg/postgres"
)

// StoreLoader reads the corpus from the Postgres content store, which the
// import scripts keep seeded with the curated directory entries.
type StoreLoader struct {
	client *postgres.Client
	strict bool
	logger *slog.Logger
}

// NewStoreLoader creates a loader backed by the given Postgres client.
func NewStoreLoader(client *postgres.Client, strict bool) *StoreLoader {
	return &StoreLoader{
		client: client,
		strict: strict,
		logger: slog.Default().With("component", "corpus-store"),
	}
}

// Load queries all directory documents ordered by type and slug, so rebuilds
// over the same content are deterministic.
func (s *StoreLoader) Load(ctx context.Context) ([]Document, error) {
	const query = `
		SELECT type, slug, title, description, tags, categories
		FROM directory_documents
		ORDER BY type, slug`

	rows, err := s.client.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying content store: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		var docType string
		if err := rows.Scan(
			&docType,
			&doc.Slug,
			&doc.Title,
			&doc.Description,
			pq.Array(&doc.Tags),
			pq.Array(&doc.Categories),
		); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.Type = DocType(docType)
		doc.ID = DocumentID(doc.Type, doc.Slug)
		doc.Tags = Dedup(doc.Tags)
		doc.Categories = Dedup(doc.Categories)
		if err := Validate(&doc); err != nil {
			if s.strict {
				return nil, err
			}
			s.logger.Warn("skipping invalid document", "id", doc.ID, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	s.logger.Info("corpus loaded from store", "documents", len(docs))
	return docs, nil
}
