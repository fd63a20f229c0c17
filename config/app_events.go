package config

import (
	"github.com/stackos/landing/internal/log"
	"github.com/stackos/landing/pkg/events"
	"github.com/stackos/landing/pkg/utils"
)

type EventsConfig struct {
	Brokers []string
	Topic   string
}

func NewEventsConfig() *EventsConfig {
	return &EventsConfig{
		Brokers: events.ParseBrokers(utils.GetEnvTrimmed("KAFKA_BROKERS")),
		Topic:   utils.GetEnvTrimmedOrDefault("KAFKA_TOPIC", events.DefaultSignupTopic),
	}
}

func (ec *EventsConfig) IsConfigured() bool {
	return len(ec.Brokers) > 0
}

// NewPublisherOrNop returns a Kafka publisher, or a publisher that drops events
// when no broker is configured. Signup events are best effort, so a bad broker
// list never stops the service.
func (ec *EventsConfig) NewPublisherOrNop(logger *log.Logger) events.Publisher {
	if !ec.IsConfigured() {
		logger.Info("Message queue (Kafka) is not configured; signup events are dropped")
		return events.NopPublisher{}
	}

	publisher, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers: ec.Brokers,
		Topic:   ec.Topic,
	})
	if err != nil {
		logger.Error("Failed to create Kafka publisher", "error", err)
		return events.NopPublisher{}
	}

	logger.Info("Message queue (Kafka) publisher ready", "brokers", ec.Brokers, "topic", ec.Topic)
	return publisher
}

func ClosePublisher(publisher events.Publisher, logger *log.Logger) {
	if publisher == nil {
		return
	}

	if err := publisher.Close(); err != nil {
		logger.Error("Failed to close event publisher", "error", err)
		return
	}
	logger.Info("Event publisher closed")
}
