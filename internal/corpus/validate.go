package corpus

import (
	"fmt"
	"strings"

	apperrors "github.com/counselbase/searchcore/pkg/errors"
)

const (
	maxTitleLength       = 512
	maxDescriptionLength = 8192
)

// ValidationError holds per-field validation failure messages for one
// document.
type ValidationError struct {
	DocID  string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return fmt.Sprintf("document %q: %s", e.DocID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidDocument
}

// Validate checks that a document carries every field the index needs to
// resolve results later. A document with a missing id or slug must never be
// indexed, since its hits could not be routed to a page.
func Validate(doc *Document) error {
	errs := make(map[string]string)

	if strings.TrimSpace(doc.Slug) == "" {
		errs["slug"] = "slug is required"
	}
	if !doc.Type.Valid() {
		errs["type"] = fmt.Sprintf("unknown document type %q", doc.Type)
	}
	title := strings.TrimSpace(doc.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if len(doc.Description) > maxDescriptionLength {
		errs["description"] = fmt.Sprintf("description must be at most %d characters", maxDescriptionLength)
	}
	if doc.ID == "" {
		errs["id"] = "id is required"
	} else if doc.ID != DocumentID(doc.Type, doc.Slug) {
		errs["id"] = fmt.Sprintf("id %q does not match type and slug", doc.ID)
	}

	if len(errs) > 0 {
		return &ValidationError{DocID: doc.ID, Fields: errs}
	}
	return nil
}
