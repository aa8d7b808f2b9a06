package corpus

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

func validDoc() Document {
	return Document{
		ID:          "prompt:motion-outline-starter",
		Type:        TypePrompt,
		Slug:        "motion-outline-starter",
		Title:       "Motion Outline Starter",
		Description: "Skeleton headings for a motion.",
		Tags:        []string{"drafting", "motions"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(d *Document)
		wantField string
	}{
		{"valid", func(d *Document) {}, ""},
		{"missing slug", func(d *Document) { d.Slug = ""; d.ID = "" }, "slug"},
		{"unknown type", func(d *Document) { d.Type = "video"; d.ID = "" }, "type"},
		{"missing title", func(d *Document) { d.Title = "   " }, "title"},
		{"title too long", func(d *Document) { d.Title = strings.Repeat("x", 513) }, "title"},
		{"description too long", func(d *Document) { d.Description = strings.Repeat("y", 8193) }, "description"},
		{"missing id", func(d *Document) { d.ID = "" }, "id"},
		{"id mismatch", func(d *Document) { d.ID = "tool:motion-outline-starter" }, "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDoc()
			tt.mutate(&doc)
			err := Validate(&doc)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate returned nil, want error")
			}
			if !errors.Is(err, apperrors.ErrInvalidDocument) {
				t.Errorf("error does not wrap ErrInvalidDocument: %v", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("error is not a *ValidationError: %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("Fields = %v, want entry for %q", verr.Fields, tt.wantField)
			}
		})
	}
}

func TestDocumentID(t *testing.T) {
	if got := DocumentID(TypeTool, "clio"); got != "tool:clio" {
		t.Errorf("DocumentID = %q, want %q", got, "tool:clio")
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"ai", "research", "ai", "Research", "research"})
	want := []string{"ai", "research", "Research"}
	if len(got) != len(want) {
		t.Fatalf("Dedup = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Dedup[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
