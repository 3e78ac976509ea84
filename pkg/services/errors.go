// Package services implements the automation lifecycle on top of the store and the validator.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/talentflow/pkg/graph"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
)

var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest = errors.New("invalid request")
	ErrEmptyOwnerID   = errors.New("owner ID cannot be empty")
	ErrGraphNil       = errors.New("automation cannot be nil")

	// ErrValidationFailed is matched by ActivationError (422 Unprocessable Entity).
	ErrValidationFailed = errors.New("automation has validation errors")

	// ErrAutomationNotFound is returned when an automation is not found (404 Not Found).
	ErrAutomationNotFound = persistence.ErrGraphNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ActivationError blocks an activation, or an edit of an active automation, and carries every
// issue found.
type ActivationError struct {
	GraphID string
	Issues  []models.ValidationIssue
}

func (e *ActivationError) Error() string {
	messages := make([]string, 0, len(e.Issues))

	for _, issue := range e.Issues {
		if issue.Severity == models.SeverityError {
			messages = append(messages, issue.String())
		}
	}

	return fmt.Sprintf("automation %s has %d validation errors: %s", e.GraphID, len(messages), strings.Join(messages, "; "))
}

func (e *ActivationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrEmptyOwnerID) ||
		errors.Is(err, ErrGraphNil) ||
		graph.IsMalformed(err)
}

// IsConflictError checks if an error is a stale write that should return HTTP 409.
func IsConflictError(err error) bool {
	return persistence.IsConflict(err)
}

func IsNotFoundError(err error) bool {
	return persistence.IsGraphNotFound(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
