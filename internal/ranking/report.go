package ranking

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spigell/resume-ranker/internal/documents"
	"github.com/spigell/resume-ranker/internal/judgment"
)

// AboveScore returns the entries whose composite score is at least minimum, in rank order.
func (r *Result) AboveScore(minimum float64) []*Entry {
	entries := make([]*Entry, 0, len(r.Entries))
	for _, entry := range r.Entries {
		if entry.CompositeScore >= minimum {
			entries = append(entries, entry)
		}
	}
	return entries
}

// Top returns at most n best entries.
func (r *Result) Top(n int) []*Entry {
	if n < 0 || n >= len(r.Entries) {
		return r.Entries
	}
	return r.Entries[:n]
}

func (r *Result) FindByID(id string) *Entry {
	for _, entry := range r.Entries {
		if entry.DocumentID == id {
			return entry
		}
	}
	return nil
}

// ReportByRecommendation groups the ranked entries by the judge's recommendation.
func (r *Result) ReportByRecommendation() map[judgment.Recommendation][]map[string]string {
	report := make(map[judgment.Recommendation][]map[string]string)
	for _, entry := range r.Entries {
		key := entry.Verdict.Recommendation
		report[key] = append(report[key], map[string]string{
			"document":   entry.DocumentID,
			"composite":  formatScore(entry.CompositeScore),
			"similarity": formatScore(entry.Similarity),
			"judgment":   strconv.Itoa(entry.Verdict.Score),
			"skills":     strings.Join(entry.Features.Skills, ", "),
			"experience": entry.Features.Experience,
			"education":  strings.Join(entry.Features.Education, ", "),
		})
	}
	return report
}

// WriteTable prints the ranking as an aligned table.
func (r *Result) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tDOCUMENT\tCOMPOSITE\tJUDGMENT\tSIMILARITY\tSKILLS\tRECOMMENDATION")
	for i, entry := range r.Entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%d\t%s\n",
			i+1,
			entry.DocumentID,
			formatScore(entry.CompositeScore),
			entry.Verdict.Score,
			formatScore(entry.Similarity),
			entry.Features.SkillCount(),
			entry.Verdict.Recommendation,
		)
	}
	for _, failure := range r.Failures {
		fmt.Fprintf(tw, "-\t%s\tfailed at %s\t\t\t\t%v\n", failure.DocumentID, failure.Stage, failure.Err)
	}
	return tw.Flush()
}

func (r *Result) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteFile stores the result as indented JSON at path.
func (r *Result) WriteFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	return r.WriteJSON(file)
}

func (r *Result) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "ranking_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := r.WriteJSON(file); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ToExcluded converts the ranked entries to exclude file records.
func (r *Result) ToExcluded() *documents.ExcludedDocuments {
	now := time.Now().UTC()
	excluded := &documents.ExcludedDocuments{}
	for _, entry := range r.Entries {
		excluded.Items = append(excluded.Items, &documents.ExcludedDocument{
			ID:             entry.DocumentID,
			Path:           entry.Path,
			Score:          entry.CompositeScore,
			Recommendation: string(entry.Verdict.Recommendation),
			ExcludedAt:     now,
		})
	}
	return excluded
}

// Exclude drops the entries with the given ids.
func (r *Result) Exclude(ids []string) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := r.Entries[:0]
	for _, entry := range r.Entries {
		if _, ok := drop[entry.DocumentID]; !ok {
			kept = append(kept, entry)
		}
	}
	r.Entries = kept
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
