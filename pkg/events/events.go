// Package events defines the messages exchanged on the talentflow event bus.
package events

import (
	"time"

	"github.com/dukex/talentflow/pkg/models"
)

type EventType string

// Topic carries every talentflow event.
const Topic = "talentflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DomainEventReceivedEvent EventType = "domain.event_received"
	ExecutionFinishedEvent   EventType = "execution.finished"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Owner     string    `json:"owner"`
	WorkerID  string    `json:"worker_id,omitempty"`
}

// DomainEventReceived carries an event from the host application or an inbound webhook to the
// workers that match and execute graphs.
type DomainEventReceived struct {
	BaseEvent

	Event models.DomainEvent `json:"event"`
}

func (e DomainEventReceived) GetType() EventType {
	return DomainEventReceivedEvent
}

// ExecutionFinished summarises a completed execution record.
type ExecutionFinished struct {
	BaseEvent

	ExecutionID    string                 `json:"execution_id"`
	GraphID        string                 `json:"graph_id"`
	GraphVersion   int64                  `json:"graph_version"`
	TriggerEventID string                 `json:"trigger_event_id"`
	Status         models.ExecutionStatus `json:"status"`
	Failed         []string               `json:"failed,omitempty"`
	Duration       time.Duration          `json:"duration"`
}

func (e ExecutionFinished) GetType() EventType {
	return ExecutionFinishedEvent
}

// NewExecutionFinished builds the notification for record.
func NewExecutionFinished(id, workerID string, record *models.ExecutionRecord) ExecutionFinished {
	failed := make([]string, 0)

	for _, result := range record.NodeResults {
		if result.Status == models.NodeStatusFailed {
			failed = append(failed, result.NodeID)
		}
	}

	return ExecutionFinished{
		BaseEvent: BaseEvent{
			ID:        id,
			Type:      ExecutionFinishedEvent,
			Timestamp: time.Now().UTC(),
			Owner:     record.Owner,
			WorkerID:  workerID,
		},
		ExecutionID:    record.ID,
		GraphID:        record.GraphID,
		GraphVersion:   record.GraphVersion,
		TriggerEventID: record.TriggerEventID,
		Status:         record.Status,
		Failed:         failed,
		Duration:       record.FinishedAt.Sub(record.StartedAt),
	}
}
