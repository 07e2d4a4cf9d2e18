package core

import (
	"errors"
	"fmt"
)

// Stage names the pipeline stage an error originated from. Each external call
// (routing, condensation, the two retrieval paths, reranking, generation) has
// a distinct stage so failures stay attributable instead of collapsing into
// one opaque error.
type Stage string

const (
	// StageRoute covers intent classification.
	StageRoute Stage = "route"
	// StageCondense covers follow-up question condensation.
	StageCondense Stage = "condense"
	// StageRetrieve covers the hybrid dense+sparse retrieval call.
	StageRetrieve Stage = "retrieve"
	// StageRerank covers the cross-encoder rerank call.
	StageRerank Stage = "rerank"
	// StageGenerate covers answer generation (streaming or sync).
	StageGenerate Stage = "generate"
)

// StageError wraps an underlying failure with the stage it occurred in.
// Callers branch on the stage via StageOf or errors.As; the underlying cause
// remains reachable through errors.Is/Unwrap.
type StageError struct {
	Stage Stage
	Err   error
}

// NewStageError wraps err with stage attribution. Returns nil if err is nil.
func NewStageError(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, Err: err}
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *StageError) Unwrap() error { return e.Err }

// StageOf extracts the stage from an error chain. The second return is false
// when no StageError is present in the chain.
func StageOf(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}
