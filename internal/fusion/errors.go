package fusion

import (
	"errors"
	"fmt"
)

var (
	// ErrModelInvocation is matched by every detector failure surfaced by the engine.
	ErrModelInvocation = errors.New("model invocation failed")
	// ErrNoDetector is returned by NewEngine without a primary detector.
	ErrNoDetector = errors.New("engine must have a primary detector")
	// ErrNoEncoder is returned by NewEngine without a crop encoder.
	ErrNoEncoder = errors.New("engine must have a crop encoder")
)

// Stage names the model that failed.
type Stage string

const (
	StagePrimary Stage = "primary"
	StageSpecies Stage = "species"
)

// ModelError wraps a detector failure. There are no partial results: a
// ModelError fails the whole request.
type ModelError struct {
	Stage Stage
	Err   error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("%s detector: %v", e.Stage, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrModelInvocation) hold for any ModelError.
func (e *ModelError) Is(target error) bool {
	return target == ErrModelInvocation
}
