package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dukex/talentflow/pkg/channels/gochannel"
	"github.com/dukex/talentflow/pkg/channels/kafka"
	"github.com/dukex/talentflow/pkg/eventbus"
)

// NewEventBus creates the bus for provider "gochannel" (in-process) or "kafka".
func NewEventBus(provider string, brokers []string, serviceName string, logger *slog.Logger) eventbus.EventBus {
	var (
		pub message.Publisher
		sub message.Subscriber
		err error
	)

	switch provider {
	case "kafka":
		pub, sub, err = kafka.CreateChannel(watermill.NewSlogLogger(logger), brokers, serviceName)
	case "gochannel":
		pub, sub, err = gochannel.CreateChannel(watermill.NewSlogLogger(logger))
	default:
		panic("Unsupported event bus provider: " + provider)
	}

	if err != nil {
		panic(fmt.Errorf("failed to create %s pub/sub: %w", provider, err))
	}

	return eventbus.NewWatermillEventBus(pub, sub, logger)
}

// NewMailPublisher creates the publisher of the outbound email topic.
func NewMailPublisher(provider string, brokers []string, logger *slog.Logger) message.Publisher {
	switch provider {
	case "kafka":
		pub, err := kafka.NewPublisher(watermill.NewSlogLogger(logger), brokers)
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka mail publisher: %w", err))
		}

		return pub
	case "gochannel":
		pub, _, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create mail publisher: %w", err))
		}

		return pub
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
