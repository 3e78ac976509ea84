package web

import "github.com/dukex/talentflow/pkg/models"

// CreateAutomationRequest represents the request body for creating a new automation.
type CreateAutomationRequest struct {
	Owner string         `json:"owner" validate:"required"`
	Name  string         `json:"name"  validate:"required,min=3"`
	Nodes []*models.Node `json:"nodes"`
	Edges []models.Edge  `json:"edges"`
}

// UpdateAutomationRequest replaces the structure of an automation. Version is the version the
// client last read.
type UpdateAutomationRequest struct {
	Name    string         `json:"name"    validate:"required,min=3"`
	Version int64          `json:"version" validate:"min=1"`
	Nodes   []*models.Node `json:"nodes"`
	Edges   []models.Edge  `json:"edges"`
}

// StatusChangeRequest carries the version an activation or disable is based on.
type StatusChangeRequest struct {
	Version int64 `json:"version" validate:"min=1"`
}

type ValidationResponse struct {
	Valid  bool                     `json:"valid"`
	Issues []models.ValidationIssue `json:"issues"`
}

// EventAcceptedResponse is returned once an event is on the bus. Matching happens asynchronously.
type EventAcceptedResponse struct {
	EventID string `json:"event_id"`
}

func newValidationResponse(issues []models.ValidationIssue) ValidationResponse {
	return ValidationResponse{
		Valid:  !models.HasErrors(issues),
		Issues: issues,
	}
}
