package documents

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcludedRoundTripThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, excluded.Items)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	excluded.Append(&ExcludedDocuments{Items: []*ExcludedDocument{
		{ID: "a.pdf", Score: 81.5, Recommendation: "Yes", ExcludedAt: now},
		{ID: "b.pdf", Score: 40, Recommendation: "No", ExcludedAt: now},
	}})
	require.NoError(t, excluded.ToFile(path))

	again, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	again.Append(&ExcludedDocuments{Items: []*ExcludedDocument{{ID: "a.pdf"}, {ID: "c.pdf"}}})

	assert.Equal(t, []string{"a.pdf", "b.pdf", "c.pdf"}, again.IDs())
	assert.Equal(t, 81.5, again.Items[0].Score)
	assert.True(t, again.Items[0].ExcludedAt.Equal(now))
}

func TestToFileTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"Items":[{"ID":"x"},{"ID":"y"},{"ID":"z"}]}`+"\n"), 0o644))

	require.NoError(t, (&ExcludedDocuments{Items: []*ExcludedDocument{{ID: "only"}}}).ToFile(path))

	got, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, got.IDs())
}

func TestGetExcludedFromEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	got, err := GetExcludedFromFile(path)
	require.NoError(t, err)
	assert.Empty(t, got.IDs())
}

func TestGetExcludedFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := GetExcludedFromFile(path)
	require.Error(t, err)
}
