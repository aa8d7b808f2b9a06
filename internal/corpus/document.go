// Package corpus defines the canonical document model for the directory
// content (tools, prompts, skills, playbooks) and the loaders that assemble
// a corpus from the content directory or the Postgres content store.
package corpus

import "fmt"

// DocType enumerates the kinds of directory entries. The set is closed;
// adding a type means a redeploy of both builder and suggest service.
type DocType string

const (
	TypeTool     DocType = "tool"
	TypePrompt   DocType = "prompt"
	TypeSkill    DocType = "skill"
	TypePlaybook DocType = "playbook"
)

// Valid reports whether t is one of the known document types.
func (t DocType) Valid() bool {
	switch t {
	case TypeTool, TypePrompt, TypeSkill, TypePlaybook:
		return true
	}
	return false
}

// Document is the unit of retrieval: one directory entry with the fields
// the index builder cares about.
type Document struct {
	ID          string   `json:"id"`
	Type        DocType  `json:"type"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories,omitempty"`
}

// DocumentID derives the stable document ID from type and slug. IDs must be
// stable across rebuilds so curated links keep resolving.
func DocumentID(t DocType, slug string) string {
	return fmt.Sprintf("%s:%s", t, slug)
}

// Dedup collapses duplicate labels in-place preserving first-seen order.
func Dedup(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := labels[:0]
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
