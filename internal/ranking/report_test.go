package ranking

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/resume-ranker/internal/features"
	"github.com/spigell/resume-ranker/internal/judgment"
)

func sampleResult() *Result {
	return &Result{
		RunID: "run-1",
		Entries: []*Entry{
			{
				DocumentID:     "alice.pdf",
				Path:           "/cv/alice.pdf",
				CompositeScore: 81.5,
				Similarity:     73.33,
				Features:       features.FeatureBundle{Skills: []string{"python", "sql"}, Experience: "5 years"},
				Verdict:        judgment.Verdict{Score: 90, Recommendation: judgment.StrongYes},
			},
			{
				DocumentID:     "bob.txt",
				CompositeScore: 64,
				Similarity:     70,
				Verdict:        judgment.Verdict{Score: 70, Recommendation: judgment.Yes},
			},
			{
				DocumentID:     "carol.docx",
				CompositeScore: 40.25,
				Similarity:     50,
				Verdict:        judgment.Verdict{Score: 40, Recommendation: judgment.Yes},
			},
		},
		Failures: []*DocumentFailure{
			{DocumentID: "dave.pdf", Stage: StageJudge, Err: errors.New("quota exceeded")},
		},
	}
}

func TestAboveScore(t *testing.T) {
	result := sampleResult()

	assert.Equal(t, []string{"alice.pdf", "bob.txt"}, ids(result.AboveScore(64)))
	assert.Len(t, result.AboveScore(0), 3)
	assert.Empty(t, result.AboveScore(100))
}

func TestTop(t *testing.T) {
	result := sampleResult()

	assert.Equal(t, []string{"alice.pdf"}, ids(result.Top(1)))
	assert.Len(t, result.Top(10), 3)
	assert.Len(t, result.Top(-1), 3)
}

func TestReportByRecommendation(t *testing.T) {
	report := sampleResult().ReportByRecommendation()

	require.Len(t, report[judgment.StrongYes], 1)
	require.Len(t, report[judgment.Yes], 2)
	assert.Empty(t, report[judgment.No])

	alice := report[judgment.StrongYes][0]
	assert.Equal(t, "alice.pdf", alice["document"])
	assert.Equal(t, "81.50", alice["composite"])
	assert.Equal(t, "73.33", alice["similarity"])
	assert.Equal(t, "90", alice["judgment"])
	assert.Equal(t, "python, sql", alice["skills"])
	assert.Equal(t, "5 years", alice["experience"])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleResult().WriteTable(&buf))

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "alice.pdf")
	assert.Contains(t, out, "81.50")
	assert.Contains(t, out, "failed at judge")
	assert.Contains(t, out, "quota exceeded")
}

func TestDumpToTmpFile(t *testing.T) {
	name, err := sampleResult().DumpToTmpFile()
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(name) })

	data, err := os.ReadFile(name)
	require.NoError(t, err)

	var decoded struct {
		RunID    string `json:"run_id"`
		Entries  []map[string]any
		Failures []map[string]any
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-1", decoded.RunID)
	assert.Len(t, decoded.Entries, 3)
	require.Len(t, decoded.Failures, 1)
	assert.Equal(t, "judge", decoded.Failures[0]["stage"])
	assert.Equal(t, "quota exceeded", decoded.Failures[0]["error"])
}

func TestToExcludedAndExclude(t *testing.T) {
	result := sampleResult()

	excluded := result.ToExcluded()
	require.Len(t, excluded.Items, 3)
	assert.Equal(t, "alice.pdf", excluded.Items[0].ID)
	assert.Equal(t, "/cv/alice.pdf", excluded.Items[0].Path)
	assert.Equal(t, 81.5, excluded.Items[0].Score)
	assert.Equal(t, "StrongYes", excluded.Items[0].Recommendation)
	assert.False(t, excluded.Items[0].ExcludedAt.IsZero())

	result.Exclude([]string{"bob.txt"})
	assert.Equal(t, []string{"alice.pdf", "carol.docx"}, ids(result.Entries))
	assert.Nil(t, result.FindByID("bob.txt"))
	assert.NotNil(t, result.FindByID("carol.docx"))
}

func TestDocumentFailureUnwrap(t *testing.T) {
	cause := errors.New("boom")
	failure := &DocumentFailure{DocumentID: "x", Stage: StageEmbed, Err: cause}

	assert.ErrorIs(t, failure, cause)
	assert.Equal(t, "document x: embed: boom", failure.Error())
}
