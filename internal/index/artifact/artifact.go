// Package artifact serialises the built index and document metadata into a
// single self-describing file and loads it back. The envelope is stable
// JSON; the index payload inside it is owned by the index package and
// treated as opaque by everything else.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/counselbase/searchcore/internal/index"
	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

// FormatVersion is bumped whenever the envelope or index payload changes
// incompatibly. Readers refuse anything newer than they understand.
const FormatVersion = 1

// File is the on-disk envelope around one index build.
type File struct {
	Version  int             `json:"version"`
	BuiltAt  string          `json:"built_at"`
	DocCount int             `json:"doc_count"`
	Index    json.RawMessage `json:"index"`
	Docs     []index.DocMeta `json:"docs"`
}

// Write atomically serialises the index and docs to path, going through a
// .tmp file and rename so readers never observe a half-written artifact.
func Write(path string, idx *index.Index, docs []index.DocMeta) error {
	payload, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshaling index payload: %w", err)
	}
	envelope := File{
		Version:  FormatVersion,
		BuiltAt:  time.Now().UTC().Format(time.RFC3339),
		DocCount: len(docs),
		Index:    payload,
		Docs:     docs,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshaling artifact envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp artifact file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing artifact file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing artifact file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming artifact file: %w", err)
	}
	return nil
}

// Read loads and validates an artifact file. Any structural problem is
// reported as ErrArtifactCorrupt so callers can treat it as "not ready"
// rather than a fatal condition.
func Read(path string) (*index.Index, *File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading artifact %s: %w", path, err)
	}
	var envelope File
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing envelope: %v", apperrors.ErrArtifactCorrupt, err)
	}
	if envelope.Version > FormatVersion || envelope.Version < 1 {
		return nil, nil, fmt.Errorf("%w: unsupported version %d", apperrors.ErrArtifactCorrupt, envelope.Version)
	}
	if envelope.DocCount != len(envelope.Docs) {
		return nil, nil, fmt.Errorf("%w: doc_count %d does not match %d docs",
			apperrors.ErrArtifactCorrupt, envelope.DocCount, len(envelope.Docs))
	}
	var idx index.Index
	if err := json.Unmarshal(envelope.Index, &idx); err != nil {
		return nil, nil, fmt.Errorf("%w: parsing index payload: %v", apperrors.ErrArtifactCorrupt, err)
	}
	if idx.Stats.TotalDocs != len(envelope.Docs) {
		return nil, nil, fmt.Errorf("%w: index stats disagree with docs array",
			apperrors.ErrArtifactCorrupt)
	}
	return &idx, &envelope, nil
}
