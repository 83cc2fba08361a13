// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"errors"
	"fmt"

	"github.com/pdiddy/manuscript-engine/pkg/types"
)

// ErrAlreadyInitialized is returned by Init when a state document exists
// and overwrite was not requested.
var ErrAlreadyInitialized = errors.New("workflow state already initialized")

// ErrStateCorrupt is returned when a persisted state document fails schema
// validation. Corruption is fatal and requires operator-driven
// reinitialization; it is never silently repaired.
var ErrStateCorrupt = errors.New("workflow state is corrupt")

// ErrVenueLocked is returned when the target venue is changed after
// assembly has completed.
var ErrVenueLocked = errors.New("target venue is locked after assembly")

// DependencyError reports an out-of-order stage transition. It names the
// first missing predecessor so the caller can run that stage first.
type DependencyError struct {
	// Stage is the stage whose transition was rejected.
	Stage types.Stage

	// Missing is the incomplete predecessor blocking the transition.
	Missing types.Stage
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("stage %q requires completed stage %q first", e.Stage, e.Missing)
}

// UnknownStageError reports a stage name outside the fixed pipeline order.
type UnknownStageError struct {
	Stage types.Stage
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown workflow stage %q", e.Stage)
}
