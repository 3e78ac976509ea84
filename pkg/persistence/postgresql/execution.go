package postgresql

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukex/talentflow/pkg/models"
)

// SaveExecution inserts or replaces an execution record.
func (p *Persistence) SaveExecution(ctx context.Context, record *models.ExecutionRecord) error {
	nodeResults, err := json.Marshal(record.NodeResults)
	if err != nil {
		return fmt.Errorf("failed to marshal node results of execution %s: %w", record.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO executions (
			id, graph_id, graph_version, owner, trigger_event_id, status, node_results, started_at, finished_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status
		  , node_results = EXCLUDED.node_results
		  , finished_at = EXCLUDED.finished_at`,
		record.ID, record.GraphID, record.GraphVersion, record.Owner, record.TriggerEventID,
		record.Status, string(nodeResults), record.StartedAt, record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution %s: %w", record.ID, err)
	}

	return nil
}

// ExecutionsByGraph returns the records of graphID, newest first.
func (p *Persistence) ExecutionsByGraph(ctx context.Context, graphID string, limit int) ([]*models.ExecutionRecord, error) {
	query := `
		SELECT
			id
		  , graph_id
		  , graph_version
		  , owner
		  , trigger_event_id
		  , status
		  , node_results
		  , started_at
		  , finished_at
		FROM executions
		WHERE graph_id = $1
		ORDER BY started_at DESC
	`
	args := []any{graphID}

	if limit > 0 {
		query += " LIMIT $2"

		args = append(args, limit)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query executions: %w", err)
	}
	defer p.closeRows(ctx, rows)

	records := make([]*models.ExecutionRecord, 0)

	for rows.Next() {
		var (
			record      models.ExecutionRecord
			nodeResults []byte
		)

		err := rows.Scan(
			&record.ID,
			&record.GraphID,
			&record.GraphVersion,
			&record.Owner,
			&record.TriggerEventID,
			&record.Status,
			&nodeResults,
			&record.StartedAt,
			&record.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}

		err = json.Unmarshal(nodeResults, &record.NodeResults)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal node results of execution %s: %w", record.ID, err)
		}

		records = append(records, &record)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating executions: %w", err)
	}

	return records, nil
}

// DeleteExecutionsBefore removes the records that finished before cutoff.
func (p *Persistence) DeleteExecutionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := p.db.ExecContext(ctx, "DELETE FROM executions WHERE finished_at < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete executions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted executions: %w", err)
	}

	return deleted, nil
}
