package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/talentflow/pkg/graph"
	"github.com/dukex/talentflow/pkg/modelregistry"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/dukex/talentflow/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ActivityReader serves entity timelines when activities live outside the main store.
type ActivityReader interface {
	ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error)
}

type Automation struct {
	persistence persistence.Persistence
	activities  ActivityReader
	catalog     modelregistry.Catalog
	validator   *validation.Validator
	validate    *validator.Validate
	logger      *slog.Logger
}

type Option func(*Automation)

func WithActivities(reader ActivityReader) Option {
	return func(a *Automation) {
		a.activities = reader
	}
}

// NewAutomation creates a new automation service.
func NewAutomation(persistence persistence.Persistence, catalog modelregistry.Catalog, logger *slog.Logger, opts ...Option) *Automation {
	automation := &Automation{
		persistence: persistence,
		activities:  persistence,
		catalog:     catalog,
		validator:   validation.New(catalog),
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger.With("module", "automation_service"),
	}

	for _, opt := range opts {
		opt(automation)
	}

	return automation
}

// HealthCheck checks the health of the persistence layer.
func (a *Automation) HealthCheck(ctx context.Context) (string, bool) {
	if a.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := a.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Models returns the automatable models graphs may reference.
func (a *Automation) Models() []models.AutomatableModel {
	return a.catalog.All()
}

// List returns the automations of owner. An empty owner lists every automation.
func (a *Automation) List(ctx context.Context, owner string) ([]*models.Graph, error) {
	graphs, err := a.persistence.ListGraphs(ctx, strings.TrimSpace(owner))
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}

	return graphs, nil
}

func (a *Automation) Get(ctx context.Context, id string) (*models.Graph, error) {
	return a.persistence.LoadGraph(ctx, id)
}

// Create stores doc as a new draft at version 1.
func (a *Automation) Create(ctx context.Context, doc *models.Graph) (*models.Graph, error) {
	err := a.checkDocument("create", doc)
	if err != nil {
		return nil, err
	}

	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	doc.Status = models.GraphStatusDraft
	doc.Version = 0
	doc.CreatedAt = now
	doc.UpdatedAt = now

	saved, err := a.persistence.SaveGraph(ctx, doc, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create automation: %w", err)
	}

	a.logger.InfoContext(ctx, "Created automation", "graph_id", saved.ID, "owner", saved.Owner)

	return saved, nil
}

// Update replaces the structure of automation id. Owner, status and creation time are kept.
// An active automation is re-validated and any error-severity issue rejects the edit.
func (a *Automation) Update(ctx context.Context, id string, doc *models.Graph, expectedVersion int64) (*models.Graph, error) {
	existing, err := a.persistence.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		return nil, ErrGraphNil
	}

	doc.ID = id
	doc.Owner = existing.Owner
	doc.Status = existing.Status
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now().UTC()

	err = a.checkDocument("update", doc)
	if err != nil {
		return nil, err
	}

	if existing.IsActive() {
		issues, err := a.validator.ValidateDocument(doc)
		if err != nil {
			return nil, NewValidationError("update", "MALFORMED_GRAPH", err.Error(), err)
		}

		if models.HasErrors(issues) {
			return nil, &ActivationError{GraphID: id, Issues: issues}
		}
	}

	saved, err := a.persistence.SaveGraph(ctx, doc, expectedVersion)
	if err != nil {
		return nil, fmt.Errorf("failed to update automation: %w", err)
	}

	a.logger.InfoContext(ctx, "Updated automation", "graph_id", id, "version", saved.Version)

	return saved, nil
}

// Validate returns every issue of the stored automation. Issues are data, not errors.
func (a *Automation) Validate(ctx context.Context, id string) ([]models.ValidationIssue, error) {
	doc, err := a.persistence.LoadGraph(ctx, id)
	if err != nil {
		return nil, err
	}

	issues, err := a.validator.ValidateDocument(doc)
	if err != nil {
		return nil, NewValidationError("validate", "MALFORMED_GRAPH", err.Error(), err)
	}

	return issues, nil
}

// ValidateDocument validates a graph that is not stored.
func (a *Automation) ValidateDocument(doc *models.Graph) ([]models.ValidationIssue, error) {
	if doc == nil {
		return nil, ErrGraphNil
	}

	issues, err := a.validator.ValidateDocument(doc)
	if err != nil {
		return nil, NewValidationError("validate", "MALFORMED_GRAPH", err.Error(), err)
	}

	return issues, nil
}

// Activate makes the automation eligible for matching when it has no error-severity issues.
// Warnings never block.
func (a *Automation) Activate(ctx context.Context, id string, expectedVersion int64) (*models.Graph, error) {
	issues, err := a.Validate(ctx, id)
	if err != nil {
		return nil, err
	}

	if models.HasErrors(issues) {
		a.logger.InfoContext(ctx, "Activation rejected", "graph_id", id, "issues", len(issues))

		return nil, &ActivationError{GraphID: id, Issues: issues}
	}

	return a.setStatus(ctx, id, models.GraphStatusActive, expectedVersion)
}

// Disable stops matching. Executions already running stop before their next node.
func (a *Automation) Disable(ctx context.Context, id string, expectedVersion int64) (*models.Graph, error) {
	return a.setStatus(ctx, id, models.GraphStatusDisabled, expectedVersion)
}

func (a *Automation) setStatus(ctx context.Context, id string, status models.GraphStatus, expectedVersion int64) (*models.Graph, error) {
	updated, err := a.persistence.UpdateGraphStatus(ctx, id, status, expectedVersion)
	if err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "Changed automation status", "graph_id", id, "status", status)

	return updated, nil
}

// Delete removes automation id. Its execution records are kept.
func (a *Automation) Delete(ctx context.Context, id string) error {
	err := a.persistence.DeleteGraph(ctx, id)
	if err != nil {
		return err
	}

	a.logger.InfoContext(ctx, "Deleted automation", "graph_id", id)

	return nil
}

// Executions returns the records of automation id, newest first.
func (a *Automation) Executions(ctx context.Context, id string, limit int) ([]*models.ExecutionRecord, error) {
	records, err := a.persistence.ExecutionsByGraph(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return records, nil
}

// Activities returns the timeline of entityID within owner.
func (a *Automation) Activities(ctx context.Context, owner, entityID string) ([]models.Activity, error) {
	if strings.TrimSpace(owner) == "" {
		return nil, ErrEmptyOwnerID
	}

	activities, err := a.activities.ActivitiesByEntity(ctx, owner, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}

// PurgeExecutions deletes execution records that finished more than olderThan ago.
func (a *Automation) PurgeExecutions(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, NewValidationError("purge", "INVALID_RETENTION", "retention must be positive", ErrInvalidRequest)
	}

	deleted, err := a.persistence.DeleteExecutionsBefore(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("failed to purge executions: %w", err)
	}

	a.logger.InfoContext(ctx, "Purged execution records", "deleted", deleted, "older_than", olderThan)

	return deleted, nil
}

// checkDocument rejects documents that cannot be stored at all. Rule violations such as cycles
// are allowed in drafts and only reported by Validate.
func (a *Automation) checkDocument(op string, doc *models.Graph) error {
	if doc == nil {
		return ErrGraphNil
	}

	doc.Owner = strings.TrimSpace(doc.Owner)
	if doc.Owner == "" {
		return ErrEmptyOwnerID
	}

	err := a.validate.Struct(doc)
	if err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return NewValidationError(op, "INVALID_AUTOMATION", validationErrors.Error(), ErrInvalidRequest)
		}

		return NewValidationError(op, "INVALID_AUTOMATION", err.Error(), ErrInvalidRequest)
	}

	_, err = graph.FromDocument(doc)
	if err != nil {
		return NewValidationError(op, "MALFORMED_GRAPH", err.Error(), err)
	}

	return nil
}
