package documents

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/logger"
)

// Document is one decoded candidate document.
type Document struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
	Text string `json:"-"`
	Size int64  `json:"size"`
}

// Fingerprint identifies documents with the same normalized content.
func (d *Document) Fingerprint() string {
	sum := sha256.Sum256([]byte(strings.ToLower(features.Normalize(d.Text))))
	return fmt.Sprintf("%x", sum[:])
}

// Documents is an ordered collection. Input order is significant: it breaks
// ranking ties, so every mutation preserves it.
type Documents struct {
	Items []*Document
}

func New(items ...*Document) *Documents {
	return &Documents{Items: items}
}

// FromText wraps an in-memory text as a document.
func FromText(id, text string) *Document {
	return &Document{ID: id, Text: text, Size: int64(len(text))}
}

func (d *Documents) Len() int {
	return len(d.Items)
}

func (d *Documents) FindByID(id string) *Document {
	for _, doc := range d.Items {
		if doc.ID == id {
			return doc
		}
	}
	return nil
}

func (d *Documents) IDs() []string {
	ids := make([]string, 0, len(d.Items))
	for _, doc := range d.Items {
		ids = append(ids, doc.ID)
	}
	return ids
}

// Exclude removes documents with the given ids and returns the removed ids.
func (d *Documents) Exclude(ids []string) []string {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	return d.RemoveFunc(func(doc *Document) bool {
		_, ok := drop[doc.ID]
		return ok
	})
}

// RemoveFunc removes every document for which fn returns true, keeping the
// order of the rest. It returns the removed ids.
func (d *Documents) RemoveFunc(fn func(*Document) bool) []string {
	var removed []string
	kept := d.Items[:0]
	for _, doc := range d.Items {
		if fn(doc) {
			removed = append(removed, doc.ID)
			continue
		}
		kept = append(kept, doc)
	}
	for i := len(kept); i < len(d.Items); i++ {
		d.Items[i] = nil
	}
	d.Items = kept
	return removed
}

// Decoder extracts text from a file.
type Decoder interface {
	Decode(ctx context.Context, path string) (string, error)
}

// LoadFailure records a file that could not be decoded.
type LoadFailure struct {
	Path string
	Err  error
}

func (f *LoadFailure) Error() string {
	return fmt.Sprintf("load %s: %v", f.Path, f.Err)
}

func (f *LoadFailure) Unwrap() error { return f.Err }

// Load decodes every path in order. Files that fail to decode are reported as
// failures and skipped; only a canceled context aborts the whole load.
func Load(ctx context.Context, dec Decoder, paths []string, log *zap.Logger) (*Documents, []*LoadFailure, error) {
	log = logger.WithFields(log)
	docs := New()
	var failures []*LoadFailure
	seen := make(map[string]bool, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return docs, failures, err
		}

		text, err := dec.Decode(ctx, path)
		if err != nil {
			log.Warn("skipping document", append(logger.DocumentFields("", path), zap.Error(err))...)
			failures = append(failures, &LoadFailure{Path: path, Err: err})
			continue
		}

		id := uniqueID(seen, filepath.Base(path))
		docs.Items = append(docs.Items, &Document{
			ID:   id,
			Path: path,
			Text: text,
			Size: int64(len(text)),
		})
		log.Debug("document loaded", append(logger.DocumentFields(id, path), zap.Int("chars", len(text)))...)
	}

	return docs, failures, nil
}

// uniqueID returns base, or base#N with the smallest N >= 2 not yet taken.
// A later file literally named base#N still gets a fresh suffix.
func uniqueID(seen map[string]bool, base string) string {
	id := base
	for n := 2; seen[id]; n++ {
		id = fmt.Sprintf("%s#%d", base, n)
	}
	seen[id] = true
	return id
}

// Expand replaces every directory in paths with the files directly inside it
// that accept allows, sorted by name. Plain files are kept as given.
func Expand(paths []string, accept func(name string) bool) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !accept(entry.Name()) {
				continue
			}
			out = append(out, filepath.Join(path, entry.Name()))
		}
	}
	return out, nil
}
