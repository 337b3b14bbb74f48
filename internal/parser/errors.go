package parser

import (
	"fmt"

	"github.com/josephgoksu/cascade/internal/utils"
)

// Stage names the payload shape that failed to parse.
type Stage string

const (
	StageEffects   Stage = "effect generation"
	StageSynthesis Stage = "synthesis"
	StageDeepDive  Stage = "deep dive"
)

// excerptLen caps the raw response quoted in a ParseError.
const excerptLen = 200

// ParseError reports generated text that could not be turned into the
// expected shape.
type ParseError struct {
	Stage   Stage
	Err     error
	Excerpt string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s response: %v", e.Stage, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(stage Stage, raw string, err error) *ParseError {
	return &ParseError{Stage: stage, Err: err, Excerpt: utils.Excerpt(raw, excerptLen)}
}
