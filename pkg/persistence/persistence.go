// Package persistence provides the storage abstraction for automation graphs, execution records
// and activities.
package persistence

import (
	"context"
	"time"

	"github.com/dukex/talentflow/pkg/models"
)

// GraphRepository is the Automation Store. Structural saves are guarded by the graph version.
type GraphRepository interface {
	// LoadGraph returns ErrGraphNotFound when no graph has the id.
	LoadGraph(ctx context.Context, id string) (*models.Graph, error)
	// SaveGraph stores graph when the stored version equals expectedVersion (0 for a new graph)
	// and returns the stored copy with the version bumped by one.
	SaveGraph(ctx context.Context, graph *models.Graph, expectedVersion int64) (*models.Graph, error)
	// UpdateGraphStatus changes the status only. The version is checked but not bumped.
	UpdateGraphStatus(ctx context.Context, id string, status models.GraphStatus, expectedVersion int64) (*models.Graph, error)
	// ListActive returns the active graphs of owner. A non-empty modelKey keeps only graphs whose
	// trigger is bound to that model; an empty one returns every active graph of the owner.
	ListActive(ctx context.Context, owner, modelKey string) ([]*models.Graph, error)
	ListGraphs(ctx context.Context, owner string) ([]*models.Graph, error)
	DeleteGraph(ctx context.Context, id string) error
}

// ExecutionRepository keeps finished execution records.
type ExecutionRepository interface {
	SaveExecution(ctx context.Context, record *models.ExecutionRecord) error
	// ExecutionsByGraph returns records newest first. A limit <= 0 returns all of them.
	ExecutionsByGraph(ctx context.Context, graphID string, limit int) ([]*models.ExecutionRecord, error)
	// DeleteExecutionsBefore removes records that finished before cutoff and returns how many.
	DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ActivityRepository keeps the activity timeline written by create_activity.
type ActivityRepository interface {
	AppendActivity(ctx context.Context, activity models.Activity) error
	// ActivitiesByEntity returns the entity timeline oldest first.
	ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error)
}

type Persistence interface {
	GraphRepository
	ExecutionRepository
	ActivityRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// MatchesModel reports whether the trigger of graph is bound to modelKey. An empty key matches.
func MatchesModel(graph *models.Graph, modelKey string) bool {
	if modelKey == "" {
		return true
	}

	trigger := graph.TriggerNode()
	if trigger == nil {
		return false
	}

	return models.TriggerModel(trigger.Config) == modelKey
}
