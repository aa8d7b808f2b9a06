package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DirLoader reads the corpus from a content directory with one subdirectory
// per document type, each holding one JSON file per entry.
type DirLoader struct {
	root   string
	strict bool
	logger *slog.Logger
}

// NewDirLoader creates a loader rooted at dir. In strict mode any invalid
// document aborts the load; otherwise invalid documents are skipped with a
// warning.
func NewDirLoader(dir string, strict bool) *DirLoader {
	return &DirLoader{
		root:   dir,
		strict: strict,
		logger: slog.Default().With("component", "corpus-loader"),
	}
}

// toolEntry mirrors the curated tool JSON schema. Tools carry a "name"
// instead of a title, and platforms are folded into tags at index time.
type toolEntry struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Platform    []string `json:"platform"`
	Categories  []string `json:"categories"`
}

// contentEntry mirrors the prompt/skill/playbook JSON schema.
type contentEntry struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Categories  []string `json:"categories"`
}

var typeDirs = map[DocType]string{
	TypeTool:     "tools",
	TypePrompt:   "prompts",
	TypeSkill:    "skills",
	TypePlaybook: "playbooks",
}

// Load assembles the full corpus. Files are parsed concurrently; the result
// is sorted by type then slug so rebuilds are deterministic.
func (l *DirLoader) Load(ctx context.Context) ([]Document, error) {
	var (
		mu   sync.Mutex
		docs []Document
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for docType, sub := range typeDirs {
		dir := filepath.Join(l.root, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				// Playbooks and prompts may not exist in every deployment.
				continue
			}
			return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			dt := docType
			g.Go(func() error {
				doc, err := l.parseFile(path, dt)
				if err != nil {
					if l.strict {
						return err
					}
					l.logger.Warn("skipping invalid document", "path", path, "error", err)
					return nil
				}
				mu.Lock()
				docs = append(docs, *doc)
				mu.Unlock()
				return ctx.Err()
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Type != docs[j].Type {
			return docs[i].Type < docs[j].Type
		}
		return docs[i].Slug < docs[j].Slug
	})
	l.logger.Info("corpus loaded", "documents", len(docs), "root", l.root)
	return docs, nil
}

func (l *DirLoader) parseFile(path string, docType DocType) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc Document
	if docType == TypeTool {
		var t toolEntry
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		doc = Document{
			Type:        TypeTool,
			Slug:        t.Slug,
			Title:       t.Name,
			Description: t.Description,
			Tags:        Dedup(append(append([]string{}, t.Tags...), t.Platform...)),
			Categories:  Dedup(t.Categories),
		}
	} else {
		var c contentEntry
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		doc = Document{
			Type:        docType,
			Slug:        c.Slug,
			Title:       c.Title,
			Description: c.Description,
			Tags:        Dedup(c.Tags),
			Categories:  Dedup(c.Categories),
		}
	}
	doc.ID = DocumentID(doc.Type, doc.Slug)
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
