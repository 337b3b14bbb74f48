package cascade

import (
	"errors"
	"fmt"
)

// ErrNoValidSelection is returned when none of the selected node ids resolve
// to a known effect. No generation call is made.
var ErrNoValidSelection = errors.New("no valid selection")

// ErrInvalidLevel is returned for a deep-dive level other than secondary or tertiary.
var ErrInvalidLevel = errors.New("invalid deep dive level")

// Stage names a step of a pipeline run or deep dive.
type Stage string

const (
	StageFirstOrder  Stage = "first-order"
	StageHigherOrder Stage = "higher-order"
	StageSynthesis   Stage = "synthesis"
	StageDeepDive    Stage = "deep-dive"
)

// StageError wraps the failure that aborted an operation with the stage it
// happened in. Generation and parse errors stay reachable via errors.As/Is.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
