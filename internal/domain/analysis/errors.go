package analysis

import (
	"errors"
	"fmt"
)

// ErrInvalidScope rejects a start request before any state is created.
var ErrInvalidScope = errors.New("invalid scope")

// ErrDecisionPending means a second decision was requested while one is
// outstanding. Sequential execution should make this impossible; if it
// happens the run is treated as broken and fails.
var ErrDecisionPending = errors.New("decision already pending")

// ErrDecisionTimeout means nobody answered within the decision window.
var ErrDecisionTimeout = errors.New("decision timed out")

// ErrNoPendingDecision is returned when submitting an answer to an analysis
// that is not waiting on one.
var ErrNoPendingDecision = errors.New("no pending decision")

// ErrInvalidAnswer is returned when a submitted answer is not one of the
// allowed answers of the pending decision.
var ErrInvalidAnswer = errors.New("answer not allowed")

// ErrNotRunning is returned when cancelling an analysis that has no live run.
var ErrNotRunning = errors.New("analysis is not running")

// ToolExecutionError wraps a single tool failure. The orchestrator catches
// these, records empty findings, and moves on to the next tool.
type ToolExecutionError struct {
	Tool Tool
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }
