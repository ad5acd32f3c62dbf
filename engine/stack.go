// ABOUTME: Bounded undo/redo history executing reversible operations
// ABOUTME: Serializes execute/undo/redo with a single in-flight guard

package engine

import (
	"context"
	"sync"
)

// DefaultHistorySize is the default bound on each history stack.
const DefaultHistorySize = 100

// OperationStack is the bounded, reversible operation history. A
// successful Execute pushes to the undo side and clears redo; the oldest
// undo entry is silently evicted at capacity, which forecloses its future
// undo — a documented bound, not an accident. A single in-flight guard
// rejects overlapping execute/undo/redo calls.
type OperationStack struct {
	mu       sync.Mutex
	inFlight bool
	undo     []Operation
	redo     []Operation
	capacity int
}

// NewOperationStack creates a history bounded to capacity entries per
// side. Non-positive capacities fall back to DefaultHistorySize.
func NewOperationStack(capacity int) *OperationStack {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}

	return &OperationStack{capacity: capacity}
}

// Execute runs the operation. On success it is pushed onto the undo stack
// and the redo stack is cleared unconditionally. On failure nothing is
// pushed and the error is surfaced to the caller, not retried.
func (s *OperationStack) Execute(ctx context.Context, op Operation) error {
	if err := s.acquire(); err != nil {
		return err
	}
	defer s.release()

	if err := op.Execute(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = append(s.undo, op)
	if len(s.undo) > s.capacity {
		s.undo = s.undo[1:]
	}

	s.redo = nil

	return nil
}

// Undo reverses the most recent operation and moves it to the redo stack,
// returning it for UI description. On failure the entry is pushed back
// onto the undo stack — it is still done from the remote's point of view,
// and undoing from a different state is not assumed retry-safe.
func (s *OperationStack) Undo(ctx context.Context) (Operation, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	s.mu.Lock()
	if len(s.undo) == 0 {
		s.mu.Unlock()
		return nil, ErrNothingToUndo
	}

	op := s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	s.mu.Unlock()

	if err := op.Undo(ctx); err != nil {
		s.mu.Lock()
		s.undo = append(s.undo, op)
		s.mu.Unlock()

		return nil, &UndoFailedError{Description: op.Description(), Err: err}
	}

	s.mu.Lock()
	s.redo = append(s.redo, op)
	if len(s.redo) > s.capacity {
		s.redo = s.redo[1:]
	}
	s.mu.Unlock()

	return op, nil
}

// Redo re-executes the most recently undone operation and moves it back
// to the undo stack. On failure the entry is pushed back onto redo.
func (s *OperationStack) Redo(ctx context.Context) (Operation, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	s.mu.Lock()
	if len(s.redo) == 0 {
		s.mu.Unlock()
		return nil, ErrNothingToRedo
	}

	op := s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	s.mu.Unlock()

	if err := op.Execute(ctx); err != nil {
		s.mu.Lock()
		s.redo = append(s.redo, op)
		s.mu.Unlock()

		return nil, &RedoFailedError{Description: op.Description(), Err: err}
	}

	s.mu.Lock()
	s.undo = append(s.undo, op)
	if len(s.undo) > s.capacity {
		s.undo = s.undo[1:]
	}
	s.mu.Unlock()

	return op, nil
}

// Clear drops all history. Called on full cache invalidation (refresh
// all), when recorded item ids can no longer be trusted.
func (s *OperationStack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.undo = nil
	s.redo = nil
}

// UndoSize returns the number of undoable entries.
func (s *OperationStack) UndoSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.undo)
}

// RedoSize returns the number of redoable entries.
func (s *OperationStack) RedoSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.redo)
}

// UndoDescription describes the operation Undo would reverse ("" if none).
func (s *OperationStack) UndoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.undo) == 0 {
		return ""
	}

	return s.undo[len(s.undo)-1].Description()
}

// RedoDescription describes the operation Redo would replay ("" if none).
func (s *OperationStack) RedoDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.redo) == 0 {
		return ""
	}

	return s.redo[len(s.redo)-1].Description()
}

func (s *OperationStack) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrOperationInFlight
	}

	s.inFlight = true

	return nil
}

func (s *OperationStack) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
