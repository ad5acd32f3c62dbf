// ABOUTME: Error taxonomy for the interaction engine
// ABOUTME: Distinguishes quota pre-flight, remote, and history failures

package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the engine.
var (
	// ErrNothingToUndo is returned when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrOperationInFlight is returned when an execute/undo/redo call
	// overlaps with one already running.
	ErrOperationInFlight = errors.New("another operation is in flight")
	// ErrAlreadyExecuted guards Operation.Execute on an executed operation.
	ErrAlreadyExecuted = errors.New("operation already executed")
	// ErrNotExecuted guards Operation.Undo on an unexecuted operation.
	ErrNotExecuted = errors.New("operation not executed")
	// ErrImmutableContainer rejects mutation of special/virtual playlists.
	ErrImmutableContainer = errors.New("playlist does not allow modification")
	// ErrClipboardEmpty rejects paste with nothing staged.
	ErrClipboardEmpty = errors.New("clipboard is empty")
	// ErrQuotaExceeded is returned by remote wrappers when a call would
	// overrun the daily budget.
	ErrQuotaExceeded = errors.New("API quota exceeded")
)

// QuotaPreflightError reports that an operation was never started because
// its estimated cost exceeds the remaining quota.
type QuotaPreflightError struct {
	Required  int
	Remaining int
}

func (e *QuotaPreflightError) Error() string {
	return fmt.Sprintf("not enough quota: need %d units, have %d", e.Required, e.Remaining)
}

// RemoteError is a failed remote API call.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Message)
}

// BatchError aggregates per-item failures of a multi-item operation.
// Each remote call is an independent side effect, so a mid-batch failure
// is reported as counts rather than an all-or-nothing abort.
type BatchError struct {
	Succeeded int
	Failed    int
	First     error // first per-item error, for display
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d succeeded, %d failed (first: %v)", e.Succeeded, e.Failed, e.First)
}

func (e *BatchError) Unwrap() error { return e.First }

// UndoFailedError wraps a failed undo; the entry stays on the undo stack
// so the operator can retry.
type UndoFailedError struct {
	Description string
	Err         error
}

func (e *UndoFailedError) Error() string {
	return fmt.Sprintf("undo failed for %q: %v", e.Description, e.Err)
}

func (e *UndoFailedError) Unwrap() error { return e.Err }

// RedoFailedError wraps a failed redo; the entry stays on the redo stack.
type RedoFailedError struct {
	Description string
	Err         error
}

func (e *RedoFailedError) Error() string {
	return fmt.Sprintf("redo failed for %q: %v", e.Description, e.Err)
}

func (e *RedoFailedError) Unwrap() error { return e.Err }
