package events

import (
	"testing"
	"time"

	"github.com/dukex/talentflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestNewExecutionFinished(t *testing.T) {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	record := &models.ExecutionRecord{
		ID:             "exec-1",
		GraphID:        "graph-1",
		GraphVersion:   4,
		Owner:          "tenant-1",
		TriggerEventID: "event-1",
		Status:         models.ExecutionStatusPartiallyFailed,
		StartedAt:      started,
		FinishedAt:     started.Add(3 * time.Second),
		NodeResults: []models.NodeResult{
			{NodeID: "trigger", Status: models.NodeStatusSucceeded},
			{NodeID: "a", Status: models.NodeStatusFailed},
			{NodeID: "b", Status: models.NodeStatusSkipped},
			{NodeID: "c", Status: models.NodeStatusSucceeded},
		},
	}

	event := NewExecutionFinished("evt-1", "worker-1", record)

	assert.Equal(t, ExecutionFinishedEvent, event.GetType())
	assert.Equal(t, ExecutionFinishedEvent, event.Type)
	assert.Equal(t, "tenant-1", event.Owner)
	assert.Equal(t, "worker-1", event.WorkerID)
	assert.Equal(t, int64(4), event.GraphVersion)
	assert.Equal(t, []string{"a"}, event.Failed)
	assert.Equal(t, 3*time.Second, event.Duration)
}

func TestDomainEventReceived_GetType(t *testing.T) {
	assert.Equal(t, DomainEventReceivedEvent, DomainEventReceived{}.GetType())
}
