// Package mail hands rendered email messages to the delivery service through the message bus.
package mail

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/talentflow/pkg/events"
	"github.com/dukex/talentflow/pkg/models"
)

// Topic is consumed by the delivery service.
const Topic = "talentflow.emails"

// Queue publishes every message as JSON on a topic. It implements the send_email Mailer.
type Queue struct {
	publisher message.Publisher
	topic     string
}

func NewQueue(publisher message.Publisher, topic string) *Queue {
	if topic == "" {
		topic = Topic
	}

	return &Queue{publisher: publisher, topic: topic}
}

// Deliver publishes msg keyed by owner. The message id doubles as the bus message id so the
// delivery service can drop duplicates of a retried node.
func (q *Queue) Deliver(ctx context.Context, msg models.EmailMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email %s: %w", msg.ID, err)
	}

	out := message.NewMessage(msg.ID, payload)
	out.SetContext(ctx)
	out.Metadata.Set(events.EventMetadataKey, msg.Owner)
	out.Metadata.Set("execution_id", msg.ExecutionID)

	err = q.publisher.Publish(q.topic, out)
	if err != nil {
		return fmt.Errorf("failed to queue email %s: %w", msg.ID, err)
	}

	return nil
}
