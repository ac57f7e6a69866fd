package digest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned when a request carries no image or no lines
	ErrNoInput = errors.New("no input provided")

	// ErrNotFound is returned when a digest does not exist
	ErrNotFound = errors.New("digest not found")
)

// Stage names a step of the summarization pipeline
type Stage string

const (
	StageStore       Stage = "store"
	StageScan        Stage = "scan"
	StageReconstruct Stage = "reconstruct"
	StageSummarize   Stage = "summarize"
	StagePersist     Stage = "persist"
)

// StageError records which pipeline stage failed
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
