package easel

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for the operations of the scene model, the paste handler,
// and the iteration pipeline. Callers match them with errors.Is.
var (
	// ErrNotFound means an operation referenced an entity id that does not
	// exist in the scene (e.g. appending an iteration to a vanished parent).
	// Recovered locally: the operation is a no-op.
	ErrNotFound = errors.New("easel: entity not found")

	// ErrInvalidLink means pasted text was recognized as a share link but is
	// missing required fields. Recovered locally.
	ErrInvalidLink = errors.New("easel: invalid share link")

	// ErrRunActive means an iterate request arrived for an artifact whose
	// pipeline run is still in flight. The request is rejected, not queued.
	ErrRunActive = errors.New("easel: iteration already running")
)

// PipelineError wraps a failure from the AI call or a downstream pipeline
// step. The artifact is reset to idle before this surfaces.
type PipelineError struct {
	ArtifactID string
	Err        error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("easel: pipeline run for %s failed: %v", e.ArtifactID, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// IsCancelled reports whether err represents a user-initiated abort rather
// than a true failure. Cancellations are silent: state is reset but no error
// surfaces to the user.
func IsCancelled(err error) bool {
	return errors.Is(err, context.Canceled)
}
