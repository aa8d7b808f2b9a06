// Package events defines the kafka payloads shared between the index
// builder and the suggestion service.
package events

import "time"

// ContentUpdateEvent signals that directory content changed and the index
// should be rebuilt. Published by CMS hooks, consumed by the builder's
// watch mode.
type ContentUpdateEvent struct {
	Source    string    `json:"source"`
	Path      string    `json:"path,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// IndexCompleteEvent announces a freshly written artifact. The suggestion
// service reloads from ArtifactPath when it arrives.
type IndexCompleteEvent struct {
	ArtifactPath string    `json:"artifact_path"`
	DocCount     int       `json:"doc_count"`
	BuiltAt      time.Time `json:"built_at"`
	DurationMs   int64     `json:"duration_ms"`
}
