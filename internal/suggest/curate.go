package suggest

import (
	"github.com/counselbase/searchcore/internal/corpus"
	"github.com/counselbase/searchcore/internal/index"
	"github.com/counselbase/searchcore/pkg/config"
)

// Context scopes curation to the surface the results will appear on.
type Context string

const (
	// ContextHomepage excludes playbooks entirely; the home experience is
	// scoped to tool/prompt/skill.
	ContextHomepage Context = "homepage"
	ContextGlobal   Context = "global"
)

// Valid reports whether c is a known curation context.
func (c Context) Valid() bool {
	return c == ContextHomepage || c == ContextGlobal
}

// Caps bounds how many results of each type the curated list may contain,
// plus the overall length.
type Caps struct {
	Tool     int
	Prompt   int
	Skill    int
	Playbook int
	Total    int
}

// CapsFromConfig builds Caps from configuration, falling back to the
// tool-forward defaults (4/3/3, total 10) for unset values.
func CapsFromConfig(cfg config.SuggestConfig) Caps {
	caps := Caps{
		Tool:     cfg.MaxTools,
		Prompt:   cfg.MaxPrompts,
		Skill:    cfg.MaxSkills,
		Playbook: cfg.MaxPlaybooks,
		Total:    cfg.MaxTotal,
	}
	if caps.Tool <= 0 {
		caps.Tool = 4
	}
	if caps.Prompt <= 0 {
		caps.Prompt = 3
	}
	if caps.Skill <= 0 {
		caps.Skill = 3
	}
	if caps.Playbook <= 0 {
		caps.Playbook = 3
	}
	if caps.Total <= 0 {
		caps.Total = 10
	}
	return caps
}

func (c Caps) forType(t corpus.DocType) int {
	switch t {
	case corpus.TypeTool:
		return c.Tool
	case corpus.TypePrompt:
		return c.Prompt
	case corpus.TypeSkill:
		return c.Skill
	case corpus.TypePlaybook:
		return c.Playbook
	}
	return 0
}

// curate walks the ranked candidates and keeps a short, varied list:
// deduplicated by ID, capped per type, truncated at the global cap.
func curate(candidates []Candidate, ctx Context, caps Caps) []index.DocMeta {
	curated := make([]index.DocMeta, 0, caps.Total)
	perType := make(map[corpus.DocType]int, 4)
	seen := make(map[string]struct{}, len(candidates))

	for i := range candidates {
		doc := &candidates[i].Doc
		if ctx == ContextHomepage && doc.Type == corpus.TypePlaybook {
			continue
		}
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		if perType[doc.Type] >= caps.forType(doc.Type) {
			continue
		}
		seen[doc.ID] = struct{}{}
		perType[doc.Type]++
		curated = append(curated, *doc)
		if len(curated) >= caps.Total {
			break
		}
	}
	return curated
}
