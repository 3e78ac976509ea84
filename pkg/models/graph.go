package models

import "time"

// GraphStatus is the lifecycle state of an automation graph.
type GraphStatus string

const (
	GraphStatusDraft    GraphStatus = "draft"    // editable, never matched
	GraphStatusActive   GraphStatus = "active"   // validated, matched against events
	GraphStatusDisabled GraphStatus = "disabled" // kept, never matched
)

// Graph is the persisted automation document.
type Graph struct {
	ID        string      `json:"id"`
	Owner     string      `json:"owner"      validate:"required"`
	Name      string      `json:"name"       validate:"required,min=3"`
	Status    GraphStatus `json:"status"`
	Version   int64       `json:"version"`
	Nodes     []*Node     `json:"nodes"      validate:"dive"`
	Edges     []Edge      `json:"edges"      validate:"dive"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TriggerNode returns the first trigger-kind node of the document.
func (g *Graph) TriggerNode() *Node {
	for _, node := range g.Nodes {
		if node.IsTrigger() {
			return node
		}
	}

	return nil
}

// IsActive reports whether the graph takes part in matching.
func (g *Graph) IsActive() bool {
	return g.Status == GraphStatusActive
}
