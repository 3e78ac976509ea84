package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrGraphNotFound indicates a graph was not found by the given identifier.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrVersionConflict indicates a write carried a stale version.
	ErrVersionConflict = errors.New("version conflict")
)

// ConflictError is returned when the expected version of a write does not match the stored one.
// The stored graph is left unchanged; callers reload and retry.
type ConflictError struct {
	GraphID  string
	Expected int64
	Actual   int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("graph %s: expected version %d, stored version is %d", e.GraphID, e.Expected, e.Actual)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrVersionConflict
}

// GraphError wraps graph-related errors with additional context.
type GraphError struct {
	Op      string // Operation being performed (e.g., "LoadGraph", "SaveGraph")
	GraphID string
	Err     error
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("%s operation failed for graph %s: %v", e.Op, e.GraphID, e.Err)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewGraphError creates a new graph error with context.
func NewGraphError(op, graphID string, err error) *GraphError {
	return &GraphError{
		Op:      op,
		GraphID: graphID,
		Err:     err,
	}
}

// IsGraphNotFound checks if an error indicates a graph was not found.
func IsGraphNotFound(err error) bool {
	return errors.Is(err, ErrGraphNotFound)
}

// IsConflict checks if an error is a version conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrVersionConflict)
}
