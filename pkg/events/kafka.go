package events

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultSignupTopic = "waitlist.signups"

	publishTimeout = 5 * time.Second
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher writes events synchronously, keyed by email so one address stays on one partition.
type KafkaPublisher struct {
	writer  messageWriter
	brokers []string
	topic   string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil, errors.New("events: at least one kafka broker is required")
	}

	topic := strings.TrimSpace(cfg.Topic)
	if topic == "" {
		topic = DefaultSignupTopic
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Async:                  false,
		BatchTimeout:           20 * time.Millisecond,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: false,
	}

	return newKafkaPublisher(w, brokers, topic), nil
}

func newKafkaPublisher(w messageWriter, brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		brokers: brokers,
		topic:   topic,
		dial:    kafka.DialContext,
	}
}

func (p *KafkaPublisher) PublishSignup(ctx context.Context, event SignupEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", event.Event, err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Email),
		Value: payload,
		Time:  event.TS,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte("SignupEvent")},
			{Key: "version", Value: []byte(strconv.Itoa(event.Version))},
			{Key: "message_id", Value: []byte(uuid.NewString())},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events: write to %s: %w", p.topic, err)
	}
	return nil
}

// Ping opens and closes a connection to the first reachable broker.
func (p *KafkaPublisher) Ping(ctx context.Context) error {
	var lastErr error
	for _, broker := range p.brokers {
		conn, err := p.dial(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		return conn.Close()
	}
	return fmt.Errorf("events: no kafka broker reachable: %w", lastErr)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// ParseBrokers splits a comma-separated broker list.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			brokers = append(brokers, part)
		}
	}
	return brokers
}
