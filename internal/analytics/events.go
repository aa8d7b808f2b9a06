package analytics

import "time"

type EventType string

const (
	EventSuggest    EventType = "suggest"
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
	EventReload     EventType = "index_reload"
)

// SuggestEvent records one suggestion request for offline query analysis.
type SuggestEvent struct {
	Type         EventType `json:"type"`
	Query        string    `json:"query"`
	Context      string    `json:"context"`
	Tokens       []string  `json:"tokens"`
	AssessIntent bool      `json:"assess_intent"`
	DraftIntent  bool      `json:"draft_intent"`
	Status       string    `json:"status"`
	Returned     int       `json:"returned"`
	LatencyMs    int64     `json:"latency_ms"`
	CacheHit     bool      `json:"cache_hit"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}

// SearchEvent records one full-directory search request.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Limit     int       `json:"limit"`
	Returned  int       `json:"returned"`
	LatencyMs int64     `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// ReloadEvent records an index hot reload, successful or not.
type ReloadEvent struct {
	Type         EventType `json:"type"`
	ArtifactPath string    `json:"artifact_path"`
	DocCount     int       `json:"doc_count"`
	Success      bool      `json:"success"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}
