package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// ActiveGraphSource lists the active graphs of a tenant.
type ActiveGraphSource interface {
	ListActive(ctx context.Context, owner, modelKey string) ([]*models.Graph, error)
}

// TriggerMatcher finds the active graphs whose trigger fires for an event. It only reads, so it
// is safe to call concurrently and repeatedly for the same event.
type TriggerMatcher struct {
	store   ActiveGraphSource
	logger  *slog.Logger
	schemas sync.Map // graph id@version -> *gojsonschema.Schema
}

// NewTriggerMatcher creates a new trigger matcher
func NewTriggerMatcher(store ActiveGraphSource, logger *slog.Logger) *TriggerMatcher {
	return &TriggerMatcher{
		store:  store,
		logger: logger.With("module", "trigger_matcher"),
	}
}

// Match returns the matching graphs in the order the store lists them.
func (tm *TriggerMatcher) Match(ctx context.Context, event models.DomainEvent) ([]*models.Graph, error) {
	modelKey := event.ModelKey
	if event.Kind == models.EventKindWebhookReceive {
		modelKey = ""
	}

	candidates, err := tm.store.ListActive(ctx, event.Owner, modelKey)
	if err != nil {
		return nil, fmt.Errorf("failed to list active graphs: %w", err)
	}

	matched := make([]*models.Graph, 0, len(candidates))

	for _, graph := range candidates {
		if matches(graph, event, tm.schema) {
			matched = append(matched, graph)
		}
	}

	tm.logger.DebugContext(ctx, "Completed trigger matching",
		"event_id", event.ID,
		"owner", event.Owner,
		"model_key", event.ModelKey,
		"event_kind", event.Kind,
		"candidates", len(candidates),
		"matches_found", len(matched))

	return matched, nil
}

func (tm *TriggerMatcher) schema(graph *models.Graph, definition map[string]any) (*gojsonschema.Schema, error) {
	key := fmt.Sprintf("%s@%d", graph.ID, graph.Version)

	if cached, ok := tm.schemas.Load(key); ok {
		return cached.(*gojsonschema.Schema), nil
	}

	compiled, err := compileSchema(graph, definition)
	if err != nil {
		return nil, err
	}

	tm.schemas.Store(key, compiled)

	return compiled, nil
}

// Matches reports whether the trigger of an active graph fires for event.
func Matches(graph *models.Graph, event models.DomainEvent) bool {
	return matches(graph, event, compileSchema)
}

type schemaCompiler func(graph *models.Graph, definition map[string]any) (*gojsonschema.Schema, error)

func matches(graph *models.Graph, event models.DomainEvent, compile schemaCompiler) bool {
	if !graph.IsActive() || graph.Owner != event.Owner {
		return false
	}

	trigger := graph.TriggerNode()
	if trigger == nil {
		return false
	}

	kind, ok := trigger.Type.EventKind()
	if !ok || kind != event.Kind {
		return false
	}

	switch config := trigger.Config.(type) {
	case *models.ModelTriggerConfig:
		return config.Model == event.ModelKey
	case *models.StageChangedConfig:
		return config.Model == event.ModelKey && stageMatches(config, event.Transition)
	case *models.WebhookReceiveConfig:
		return config.WebhookPath == event.WebhookPath && payloadMatches(graph, config, event.Payload, compile)
	default:
		return false
	}
}

// stageMatches treats an empty filter as "any stage".
func stageMatches(config *models.StageChangedConfig, transition *models.StageTransition) bool {
	if transition == nil {
		return config.FromStage == "" && config.ToStage == ""
	}

	if config.FromStage != "" && config.FromStage != transition.From {
		return false
	}

	if config.ToStage != "" && config.ToStage != transition.To {
		return false
	}

	return true
}

func payloadMatches(graph *models.Graph, config *models.WebhookReceiveConfig, payload map[string]any, compile schemaCompiler) bool {
	if config.Schema == nil {
		return true
	}

	schema, err := compile(graph, config.Schema)
	if err != nil {
		return false
	}

	if payload == nil {
		payload = map[string]any{}
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(payload))
	if err != nil {
		return false
	}

	return result.Valid()
}

func compileSchema(_ *models.Graph, definition map[string]any) (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(definition))
}
