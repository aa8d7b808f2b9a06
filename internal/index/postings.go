// Package index builds the field-weighted inverted index over the directory
// corpus and defines the structures serialised into the search artifact.
package index

import "github.com/counselbase/searchcore/internal/corpus"

// NumFields is the number of indexed fields per document.
const NumFields = 4

// Field identifies one of the indexed document fields.
type Field int

const (
	FieldTitle Field = iota
	FieldTags
	FieldCategories
	FieldDescription
)

func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldTags:
		return "tags"
	case FieldCategories:
		return "categories"
	case FieldDescription:
		return "description"
	}
	return "unknown"
}

// Posting records how often a term occurs in each field of one document.
type Posting struct {
	DocID     string         `json:"d"`
	FieldFreq [NumFields]int `json:"f"`
}

// TermEntry maps one term to its postings, sorted by document ID.
type TermEntry struct {
	Term     string    `json:"t"`
	Postings []Posting `json:"p"`
}

// DocMeta is the display subset of a document stored alongside the index:
// enough to render and route a result without the original corpus.
type DocMeta struct {
	ID          string         `json:"id"`
	Type        corpus.DocType `json:"type"`
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
}

// Stats holds the corpus-level numbers scoring needs.
type Stats struct {
	TotalDocs   int                `json:"total_docs"`
	AvgFieldLen [NumFields]float64 `json:"avg_field_len"`
}

// Index is the serialisable inverted index. Terms are sorted so the runtime
// can binary-search them for exact and prefix lookups. Field boosts are part
// of the index, fixed at build time, so every consumer scores identically.
type Index struct {
	Boosts    [NumFields]float64        `json:"boosts"`
	Stats     Stats                     `json:"stats"`
	Terms     []TermEntry               `json:"terms"`
	FieldLens map[string][NumFields]int `json:"field_lens"`
}
