package ranking

import (
	"encoding/json"
	"fmt"
)

// Stage names the step of the per-document pipeline that failed.
type Stage string

const (
	StageEmbed      Stage = "embed"
	StageSimilarity Stage = "similarity"
	StageJudge      Stage = "judge"
	// StageCanceled marks documents never started because the run was canceled.
	StageCanceled Stage = "canceled"
)

// PreconditionError is returned when ranking is attempted without a prepared target.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string {
	return "ranking precondition failed: " + e.Reason
}

// DocumentFailure excludes one document from a ranking. Other documents are unaffected.
type DocumentFailure struct {
	DocumentID string
	Path       string
	Stage      Stage
	Err        error
}

func (f *DocumentFailure) Error() string {
	return fmt.Sprintf("document %s: %s: %v", f.DocumentID, f.Stage, f.Err)
}

func (f *DocumentFailure) Unwrap() error { return f.Err }

func (f *DocumentFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		DocumentID string `json:"document_id"`
		Path       string `json:"path,omitempty"`
		Stage      Stage  `json:"stage"`
		Error      string `json:"error"`
	}{f.DocumentID, f.Path, f.Stage, msg})
}
