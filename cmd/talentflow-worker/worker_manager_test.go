package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/talentflow/pkg/channels/gochannel"
	"github.com/dukex/talentflow/pkg/cmd"
	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/models"
	"github.com/dukex/talentflow/pkg/persistence/file"
	"github.com/dukex/talentflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerManager_ExecutesMatchingAutomation(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	store := file.NewPersistence(t.TempDir())

	graph := testutil.NewGraph(
		testutil.WithNodes(
			testutil.ModelTrigger("trigger", models.NodeTypeModelCreated, "lead"),
			testutil.ActivityAction("log", "id", "Lead {{ .name }} created"),
		),
		testutil.WithEdges(testutil.Edge("trigger", "log")),
	)

	saved, err := store.SaveGraph(ctx, graph, 0)
	require.NoError(t, err)

	_, err = store.UpdateGraphStatus(ctx, saved.ID, models.GraphStatusActive, saved.Version)
	require.NoError(t, err)

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, logger)
	defer bus.Close()

	registry := cmd.NewRegistry(logger, t.TempDir(), cmd.ExecutorDeps{Activities: store})
	dispatcher := newDispatcher("worker-test", store, registry, bus, logger)
	worker := NewWorkerManager("worker-test", dispatcher, bus, nil, logger)

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)

	go func() {
		done <- worker.Run(runCtx)
	}()

	event := testutil.LeadCreatedEvent(map[string]any{"id": "lead-7", "name": "Ada"})

	err = bus.Publish(ctx, event.Owner, events.DomainEventReceived{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.DomainEventReceivedEvent,
			Timestamp: time.Now().UTC(),
			Owner:     event.Owner,
		},
		Event: event,
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		records, err := store.ExecutionsByGraph(ctx, saved.ID, 0)

		return err == nil && len(records) == 1
	}, 5*time.Second, 20*time.Millisecond)

	records, err := store.ExecutionsByGraph(ctx, saved.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusSucceeded, records[0].Status)
	assert.Equal(t, event.ID, records[0].TriggerEventID)

	activities, err := store.ActivitiesByEntity(ctx, "tenant-1", "lead-7")
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "Lead Ada created", activities[0].Message)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop")
	}
}

type purgerFunc func(ctx context.Context, olderThan time.Duration) (int64, error)

func (f purgerFunc) PurgeExecutions(ctx context.Context, olderThan time.Duration) (int64, error) {
	return f(ctx, olderThan)
}

func TestRetentionSweeper(t *testing.T) {
	var got time.Duration

	sweeper, err := NewRetentionSweeper("@daily", 48*time.Hour, purgerFunc(func(_ context.Context, olderThan time.Duration) (int64, error) {
		got = olderThan

		return 3, nil
	}), slog.Default())
	require.NoError(t, err)

	sweeper.Sweep()
	assert.Equal(t, 48*time.Hour, got)

	sweeper.Start()
	sweeper.Stop()
}

func TestRetentionSweeper_InvalidSettings(t *testing.T) {
	noop := purgerFunc(func(context.Context, time.Duration) (int64, error) { return 0, nil })

	_, err := NewRetentionSweeper("not a schedule", time.Hour, noop, slog.Default())
	assert.Error(t, err)

	_, err = NewRetentionSweeper("@daily", 0, noop, slog.Default())
	assert.Error(t, err)
}
