package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

const selectGraph = `
	SELECT
		id
	  , owner
	  , name
	  , status
	  , version
	  , document
	  , created_at
	  , updated_at
	FROM graphs
`

// document is the JSONB column: the structural part of a graph.
type document struct {
	Nodes []*models.Node `json:"nodes"`
	Edges []models.Edge  `json:"edges"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

// LoadGraph returns the graph with id.
func (p *Persistence) LoadGraph(ctx context.Context, id string) (*models.Graph, error) {
	graph, err := scanGraph(p.db.QueryRowContext(ctx, selectGraph+" WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewGraphError("LoadGraph", id, persistence.ErrGraphNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to scan graph %s: %w", id, err)
	}

	return graph, nil
}

// SaveGraph inserts the graph when expectedVersion is 0 and otherwise updates it guarded by the
// stored version.
func (p *Persistence) SaveGraph(ctx context.Context, graph *models.Graph, expectedVersion int64) (*models.Graph, error) {
	doc, err := json.Marshal(document{Nodes: graph.Nodes, Edges: graph.Edges})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal graph %s: %w", graph.ID, err)
	}

	triggerType, triggerModel, webhookPath := triggerColumns(graph)
	now := time.Now().UTC()

	stored := *graph
	stored.Version = expectedVersion + 1
	stored.UpdatedAt = now

	if expectedVersion == 0 {
		stored.CreatedAt = now

		_, err = p.db.ExecContext(ctx, `
			INSERT INTO graphs (
				id, owner, name, status, version, trigger_type, trigger_model, webhook_path, document, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
			stored.ID, stored.Owner, stored.Name, stored.Status, stored.Version,
			triggerType, triggerModel, webhookPath, string(doc), now,
		)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, p.conflict(ctx, graph.ID, expectedVersion)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to insert graph %s: %w", graph.ID, err)
		}

		return &stored, nil
	}

	err = p.db.QueryRowContext(ctx, `
		UPDATE graphs SET
			owner = $3
		  , name = $4
		  , status = $5
		  , version = version + 1
		  , trigger_type = $6
		  , trigger_model = $7
		  , webhook_path = $8
		  , document = $9
		  , updated_at = $10
		WHERE id = $1 AND version = $2
		RETURNING created_at`,
		stored.ID, expectedVersion, stored.Owner, stored.Name, stored.Status,
		triggerType, triggerModel, webhookPath, string(doc), now,
	).Scan(&stored.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, p.conflict(ctx, graph.ID, expectedVersion)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to update graph %s: %w", graph.ID, err)
	}

	return &stored, nil
}

// UpdateGraphStatus changes the status without bumping the version.
func (p *Persistence) UpdateGraphStatus(ctx context.Context, id string, status models.GraphStatus, expectedVersion int64) (*models.Graph, error) {
	result, err := p.db.ExecContext(ctx,
		"UPDATE graphs SET status = $3, updated_at = $4 WHERE id = $1 AND version = $2",
		id, expectedVersion, status, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update status of graph %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update status of graph %s: %w", id, err)
	}

	if affected == 0 {
		_, err := p.LoadGraph(ctx, id)
		if err != nil {
			return nil, err
		}

		return nil, p.conflict(ctx, id, expectedVersion)
	}

	return p.LoadGraph(ctx, id)
}

// ListActive returns the active graphs of owner, narrowed to modelKey when it is set.
func (p *Persistence) ListActive(ctx context.Context, owner, modelKey string) ([]*models.Graph, error) {
	if modelKey == "" {
		return p.queryGraphs(ctx, selectGraph+" WHERE owner = $1 AND status = 'active' ORDER BY created_at, id", owner)
	}

	return p.queryGraphs(ctx,
		selectGraph+" WHERE owner = $1 AND status = 'active' AND trigger_model = $2 ORDER BY created_at, id",
		owner, modelKey,
	)
}

// ListGraphs returns every graph of owner. An empty owner lists all graphs.
func (p *Persistence) ListGraphs(ctx context.Context, owner string) ([]*models.Graph, error) {
	if owner == "" {
		return p.queryGraphs(ctx, selectGraph+" ORDER BY created_at, id")
	}

	return p.queryGraphs(ctx, selectGraph+" WHERE owner = $1 ORDER BY created_at, id", owner)
}

// DeleteGraph removes the graph. Its execution records are kept for the audit trail.
func (p *Persistence) DeleteGraph(ctx context.Context, id string) error {
	result, err := p.db.ExecContext(ctx, "DELETE FROM graphs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete graph %s: %w", id, err)
	}

	if affected == 0 {
		return persistence.NewGraphError("DeleteGraph", id, persistence.ErrGraphNotFound)
	}

	return nil
}

func (p *Persistence) queryGraphs(ctx context.Context, query string, args ...any) ([]*models.Graph, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query graphs: %w", err)
	}
	defer p.closeRows(ctx, rows)

	graphs := make([]*models.Graph, 0)

	for rows.Next() {
		graph, err := scanGraph(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan graph: %w", err)
		}

		graphs = append(graphs, graph)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating graphs: %w", err)
	}

	return graphs, nil
}

// conflict builds the ConflictError for a rejected write from the currently stored version.
func (p *Persistence) conflict(ctx context.Context, id string, expected int64) error {
	var actual int64

	err := p.db.QueryRowContext(ctx, "SELECT version FROM graphs WHERE id = $1", id).Scan(&actual)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to read version of graph %s: %w", id, err)
	}

	return &persistence.ConflictError{GraphID: id, Expected: expected, Actual: actual}
}

func scanGraph(row rowScanner) (*models.Graph, error) {
	var (
		graph models.Graph
		doc   []byte
	)

	err := row.Scan(
		&graph.ID,
		&graph.Owner,
		&graph.Name,
		&graph.Status,
		&graph.Version,
		&doc,
		&graph.CreatedAt,
		&graph.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var structure document

	err = json.Unmarshal(doc, &structure)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph document: %w", err)
	}

	graph.Nodes = structure.Nodes
	graph.Edges = structure.Edges

	return &graph, nil
}

func triggerColumns(graph *models.Graph) (sql.NullString, sql.NullString, sql.NullString) {
	var triggerType, triggerModel, webhookPath sql.NullString

	trigger := graph.TriggerNode()
	if trigger == nil {
		return triggerType, triggerModel, webhookPath
	}

	triggerType = sql.NullString{String: string(trigger.Type), Valid: true}

	if model := models.TriggerModel(trigger.Config); model != "" {
		triggerModel = sql.NullString{String: model, Valid: true}
	}

	if config, ok := trigger.Config.(*models.WebhookReceiveConfig); ok {
		webhookPath = sql.NullString{String: config.WebhookPath, Valid: true}
	}

	return triggerType, triggerModel, webhookPath
}
