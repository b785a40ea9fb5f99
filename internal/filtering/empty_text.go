package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/documents"
)

type emptyTextFilter struct {
	toggle
}

// NewEmptyText creates a filter that removes documents without any text,
// typically scanned PDFs with no text layer.
func NewEmptyText() Filter {
	return &emptyTextFilter{}
}

func (f *emptyTextFilter) Name() string { return "empty_text" }

func (f *emptyTextFilter) Validate(*Config) error { return nil }

func (f *emptyTextFilter) Apply(_ context.Context, deps Deps, docs *documents.Documents) (*documents.Documents, Step, error) {
	initial := docs.Len()
	removed := docs.RemoveFunc(func(d *documents.Document) bool {
		return strings.TrimSpace(d.Text) == ""
	})

	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Warn("excluding documents without text",
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", docs.Len()),
		)
	}

	return docs, Step{Initial: initial, Dropped: len(removed), Left: docs.Len()}, nil
}

func (f *emptyTextFilter) Status() Status {
	return f.status(f.Name(), nil)
}
