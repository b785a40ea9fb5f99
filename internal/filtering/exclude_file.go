package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/documents"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes documents listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = strings.TrimSpace(cfg.ExcludeFile)
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, docs *documents.Documents) (*documents.Documents, Step, error) {
	initial := docs.Len()
	if f.path == "" {
		return docs, Step{Initial: initial, Dropped: 0, Left: docs.Len()}, nil
	}

	excluded, err := documents.GetExcludedFromFile(f.path)
	if err != nil {
		return docs, Step{}, fmt.Errorf("getting excluded documents from file: %w", err)
	}

	removed := docs.Exclude(excluded.IDs())
	if deps.Logger != nil && len(removed) > 0 {
		deps.Logger.Info("excluding documents based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_documents", removed),
			zap.Int("documents_left", docs.Len()),
		)
	}

	return docs, Step{Initial: initial, Dropped: len(removed), Left: docs.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return f.status(f.Name(), details)
}
