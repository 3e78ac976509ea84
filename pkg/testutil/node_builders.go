// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"github.com/dukex/talentflow/pkg/models"
	"github.com/google/uuid"
)

// NewGraph creates a draft test graph with default values that can be overridden.
func NewGraph(overrides ...func(*models.Graph)) *models.Graph {
	graph := &models.Graph{
		ID:     uuid.New().String(),
		Owner:  "tenant-1",
		Name:   "Test Automation",
		Status: models.GraphStatusDraft,
		Nodes:  []*models.Node{},
		Edges:  []models.Edge{},
	}

	for _, override := range overrides {
		override(graph)
	}

	return graph
}

// WithNodes appends nodes to the graph.
func WithNodes(nodes ...*models.Node) func(*models.Graph) {
	return func(g *models.Graph) {
		g.Nodes = append(g.Nodes, nodes...)
	}
}

// WithEdges appends edges to the graph.
func WithEdges(edges ...models.Edge) func(*models.Graph) {
	return func(g *models.Graph) {
		g.Edges = append(g.Edges, edges...)
	}
}

// WithID sets the graph ID.
func WithID(id string) func(*models.Graph) {
	return func(g *models.Graph) {
		g.ID = id
	}
}

// WithOwner sets the graph owner.
func WithOwner(owner string) func(*models.Graph) {
	return func(g *models.Graph) {
		g.Owner = owner
	}
}

// WithStatus sets the graph status.
func WithStatus(status models.GraphStatus) func(*models.Graph) {
	return func(g *models.Graph) {
		g.Status = status
	}
}

// WithVersion sets the graph version.
func WithVersion(version int64) func(*models.Graph) {
	return func(g *models.Graph) {
		g.Version = version
	}
}

// Edge creates an edge between two node ids.
func Edge(source, target string) models.Edge {
	return models.Edge{Source: source, Target: target}
}

// ModelTrigger creates a model_created, model_updated or model_deleted trigger.
func ModelTrigger(id string, nodeType models.NodeType, model string) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindTrigger,
		Type:   nodeType,
		Label:  "When " + model + " changes",
		Config: &models.ModelTriggerConfig{Model: model},
	}
}

// StageTrigger creates a stage_changed trigger. Empty stages match any stage.
func StageTrigger(id, model, from, to string) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindTrigger,
		Type:   models.NodeTypeStageChanged,
		Label:  "When " + model + " moves",
		Config: &models.StageChangedConfig{Model: model, FromStage: from, ToStage: to},
	}
}

// WebhookTrigger creates a webhook_receive trigger with an optional payload schema.
func WebhookTrigger(id, path string, schema map[string]any) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindTrigger,
		Type:   models.NodeTypeWebhookReceive,
		Label:  "Inbound " + path,
		Config: &models.WebhookReceiveConfig{WebhookPath: path, Schema: schema},
	}
}

// WebhookAction creates a send_webhook action posting to url.
func WebhookAction(id, url string) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindAction,
		Type:   models.NodeTypeSendWebhook,
		Label:  "Send webhook",
		Config: &models.SendWebhookConfig{URL: url},
	}
}

// EmailAction creates a send_email action.
func EmailAction(id, template string) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindAction,
		Type:   models.NodeTypeSendEmail,
		Label:  "Send email",
		Config: &models.SendEmailConfig{Template: template},
	}
}

// ActivityAction creates a create_activity action.
func ActivityAction(id, entityField, message string) *models.Node {
	return &models.Node{
		ID:     id,
		Kind:   models.NodeKindAction,
		Type:   models.NodeTypeCreateActivity,
		Label:  "Log activity",
		Config: &models.CreateActivityConfig{EntityField: entityField, MessageTemplate: message},
	}
}

// LeadCreatedEvent creates a created event for the lead model.
func LeadCreatedEvent(payload map[string]any) models.DomainEvent {
	return models.DomainEvent{
		ID:       uuid.New().String(),
		Owner:    "tenant-1",
		ModelKey: "lead",
		Kind:     models.EventKindCreated,
		Payload:  payload,
	}
}
