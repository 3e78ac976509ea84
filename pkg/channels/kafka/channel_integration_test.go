//go:build integration

package kafka_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/talentflow/pkg/channels/kafka"
	"github.com/dukex/talentflow/pkg/eventbus"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkacontainer "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestEventBus_KafkaRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	container, err := kafkacontainer.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafkacontainer.WithClusterID("talentflow-test"),
	)
	require.NoError(t, err)

	defer func() {
		err := testcontainers.TerminateContainer(container)
		assert.NoError(t, err)
	}()

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)

	pub, sub, err := kafka.CreateChannel(watermill.NopLogger{}, brokers, "talentflow-test")
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub, slog.Default())
	defer bus.Close()

	received := make(chan *events.DomainEventReceived, 1)

	err = bus.Handle(events.DomainEventReceivedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.DomainEventReceived)

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(ctx))

	event := testutil.LeadCreatedEvent(map[string]any{"id": "lead-1"})

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

	select {
	case got := <-received:
		assert.Equal(t, event.ID, got.Event.ID)
		assert.Equal(t, "lead", got.Event.ModelKey)
	case <-ctx.Done():
		t.Fatal("event was not delivered")
	}
}
