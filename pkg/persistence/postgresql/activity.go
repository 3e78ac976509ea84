package postgresql

import (
	"context"
	"fmt"

	"github.com/dukex/talentflow/pkg/models"
)

func (p *Persistence) AppendActivity(ctx context.Context, activity models.Activity) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO activities (id, owner, entity_id, message, graph_id, execution_id, node_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		activity.ID, activity.Owner, activity.EntityID, activity.Message,
		activity.GraphID, activity.ExecutionID, activity.NodeID, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity %s: %w", activity.ID, err)
	}

	return nil
}

func (p *Persistence) ActivitiesByEntity(ctx context.Context, owner, entityID string) ([]models.Activity, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, owner, entity_id, message, graph_id, execution_id, node_id, created_at
		FROM activities
		WHERE owner = $1 AND entity_id = $2
		ORDER BY created_at, id`,
		owner, entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query activities: %w", err)
	}
	defer p.closeRows(ctx, rows)

	activities := make([]models.Activity, 0)

	for rows.Next() {
		var activity models.Activity

		err := rows.Scan(
			&activity.ID,
			&activity.Owner,
			&activity.EntityID,
			&activity.Message,
			&activity.GraphID,
			&activity.ExecutionID,
			&activity.NodeID,
			&activity.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}

		activities = append(activities, activity)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating activities: %w", err)
	}

	return activities, nil
}
