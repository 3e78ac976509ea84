// Package protocol defines the contract every action executor implements.
package protocol

import (
	"context"
	"errors"

	"github.com/dukex/talentflow/pkg/models"
)

// Input is what the engine hands to an executor for one node invocation.
type Input struct {
	Data        map[string]any
	Owner       string
	GraphID     string
	ExecutionID string
	NodeID      string
}

// ActionExecutor performs the side effect of one action node type. Implementations hold no
// per-call state and are invoked concurrently by independent executions.
type ActionExecutor interface {
	Type() models.NodeType
	Execute(ctx context.Context, config models.NodeConfig, input Input) (map[string]any, error)
}

// ActionError is the failure an executor reports. Retryable failures are attempted again by the
// engine; the rest fail the node after one attempt.
type ActionError struct {
	Retryable bool
	Err       error
}

func (e *ActionError) Error() string {
	return e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// Retryable wraps err as a transient failure.
func Retryable(err error) *ActionError {
	return &ActionError{Retryable: true, Err: err}
}

// Terminal wraps err as a failure that retrying cannot fix.
func Terminal(err error) *ActionError {
	return &ActionError{Retryable: false, Err: err}
}

// IsRetryable reports whether err carries a retryable ActionError.
func IsRetryable(err error) bool {
	var actionErr *ActionError

	return errors.As(err, &actionErr) && actionErr.Retryable
}
