// Package models defines the automation graph document, its typed node configs and execution records.
package models

import (
	"encoding/json"
	"fmt"
)

// NodeKind separates the single entry point of a graph from the nodes that perform side effects.
type NodeKind string

const (
	NodeKindTrigger NodeKind = "trigger"
	NodeKindAction  NodeKind = "action"
)

// NodeType is the fixed enumeration of node types.
type NodeType string

// Trigger node types.
const (
	NodeTypeWebhookReceive NodeType = "webhook_receive"
	NodeTypeModelCreated   NodeType = "model_created"
	NodeTypeModelUpdated   NodeType = "model_updated"
	NodeTypeModelDeleted   NodeType = "model_deleted"
	NodeTypeStageChanged   NodeType = "stage_changed"
)

// Action node types.
const (
	NodeTypeSendWebhook    NodeType = "send_webhook"
	NodeTypeSendEmail      NodeType = "send_email"
	NodeTypeCreateActivity NodeType = "create_activity"
)

// Kind returns the node kind a type belongs to, or an empty kind for unknown types.
func (t NodeType) Kind() NodeKind {
	switch t {
	case NodeTypeWebhookReceive, NodeTypeModelCreated, NodeTypeModelUpdated, NodeTypeModelDeleted, NodeTypeStageChanged:
		return NodeKindTrigger
	case NodeTypeSendWebhook, NodeTypeSendEmail, NodeTypeCreateActivity:
		return NodeKindAction
	default:
		return ""
	}
}

// EventKind returns the domain event kind a trigger type listens to.
func (t NodeType) EventKind() (EventKind, bool) {
	switch t {
	case NodeTypeWebhookReceive:
		return EventKindWebhookReceive, true
	case NodeTypeModelCreated:
		return EventKindCreated, true
	case NodeTypeModelUpdated:
		return EventKindUpdated, true
	case NodeTypeModelDeleted:
		return EventKindDeleted, true
	case NodeTypeStageChanged:
		return EventKindStageChanged, true
	default:
		return "", false
	}
}

// Position is presentation only; execution ignores it.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a graph vertex. Config holds the typed variant matching Type.
type Node struct {
	ID       string     `json:"id"                 validate:"required"`
	Kind     NodeKind   `json:"kind"               validate:"required,oneof=trigger action"`
	Type     NodeType   `json:"type"               validate:"required"`
	Label    string     `json:"label,omitempty"`
	Config   NodeConfig `json:"config"             validate:"-"`
	Position Position   `json:"position"`
}

func (n *Node) IsTrigger() bool {
	return n.Kind == NodeKindTrigger
}

func (n *Node) IsAction() bool {
	return n.Kind == NodeKindAction
}

// UnmarshalJSON decodes the config into the variant selected by the node type.
// Undecodable configs are kept as *InvalidConfig so validation can report them.
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       string          `json:"id"`
		Kind     NodeKind        `json:"kind"`
		Type     NodeType        `json:"type"`
		Label    string          `json:"label"`
		Config   json.RawMessage `json:"config"`
		Position Position        `json:"position"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode node: %w", err)
	}

	n.ID = raw.ID
	n.Kind = raw.Kind
	n.Type = raw.Type
	n.Label = raw.Label
	n.Position = raw.Position
	n.Config = DecodeNodeConfig(raw.Type, raw.Config)

	return nil
}

// Edge is a directed relation between two nodes of the same graph.
type Edge struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}
