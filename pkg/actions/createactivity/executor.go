// Package createactivity writes a timeline entry for the entity referenced by the node input.
package createactivity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/protocol"
	"github.com/dukex/talentflow/pkg/template"
	"github.com/google/uuid"
)

// Store persists activities.
type Store interface {
	AppendActivity(ctx context.Context, activity models.Activity) error
}

type Executor struct {
	store  Store
	logger *slog.Logger
}

func NewExecutor(store Store, logger *slog.Logger) *Executor {
	return &Executor{
		store:  store,
		logger: logger.With("module", "create_activity"),
	}
}

func (e *Executor) Type() models.NodeType {
	return models.NodeTypeCreateActivity
}

// Execute renders the message and appends it to the store. Store failures are retryable; a
// missing entity or a message that does not render cannot be fixed by retrying.
func (e *Executor) Execute(ctx context.Context, config models.NodeConfig, input protocol.Input) (map[string]any, error) {
	cfg, ok := config.(*models.CreateActivityConfig)
	if !ok {
		return nil, protocol.Terminal(fmt.Errorf("create_activity: unexpected config %T", config))
	}

	value, ok := input.Data[cfg.EntityField]
	if !ok || value == nil {
		return nil, protocol.Terminal(fmt.Errorf("entity field %q is missing", cfg.EntityField))
	}

	entityID := fmt.Sprint(value)

	message, err := template.RenderString(cfg.MessageTemplate, input.Data)
	if err != nil {
		return nil, protocol.Terminal(fmt.Errorf("failed to render activity message: %w", err))
	}

	activity := models.Activity{
		ID:          uuid.New().String(),
		Owner:       input.Owner,
		EntityID:    entityID,
		Message:     message,
		GraphID:     input.GraphID,
		ExecutionID: input.ExecutionID,
		NodeID:      input.NodeID,
		CreatedAt:   time.Now().UTC(),
	}

	err = e.store.AppendActivity(ctx, activity)
	if err != nil {
		return nil, protocol.Retryable(fmt.Errorf("failed to store activity: %w", err))
	}

	e.logger.InfoContext(ctx, "Activity recorded",
		"entity_id", entityID,
		"node_id", input.NodeID,
		"execution_id", input.ExecutionID,
	)

	return map[string]any{
		"activity_id": activity.ID,
		"entity_id":   entityID,
		"message":     message,
	}, nil
}
