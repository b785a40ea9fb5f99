package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/documents"
)

type duplicatesFilter struct {
	toggle
}

// NewDuplicates creates a filter that keeps only the first of several
// documents with the same normalized content.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, docs *documents.Documents) (*documents.Documents, Step, error) {
	initial := docs.Len()
	firstByHash := make(map[string]string, initial)

	removed := docs.RemoveFunc(func(d *documents.Document) bool {
		hash := d.Fingerprint()
		if original, ok := firstByHash[hash]; ok {
			if deps.Logger != nil {
				deps.Logger.Info("duplicate document",
					zap.String("document_id", d.ID),
					zap.String("duplicate_of", original),
				)
			}
			return true
		}
		firstByHash[hash] = d.ID
		return false
	})

	return docs, Step{Initial: initial, Dropped: len(removed), Left: docs.Len()}, nil
}

func (f *duplicatesFilter) Status() Status {
	return f.status(f.Name(), nil)
}
