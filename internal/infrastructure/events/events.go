// Package events publishes registry changes for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const (
	CaregiverCreated = "caregiver.created"
	CaregiverUpdated = "caregiver.updated"
	CaregiverDeleted = "caregiver.deleted"
	CaregiverStatus  = "caregiver.status_changed"
	ChildCreated     = "child.created"
	ChildUpdated     = "child.updated"
	ChildDeleted     = "child.deleted"
	IntakeSubmitted  = "intake.submitted"
	RegistryImported = "registry.imported"
	RegistryCleaned  = "registry.maintenance"
)

type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	EntityID   string      `json:"entityId,omitempty"`
	Operator   string      `json:"operator,omitempty"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload,omitempty"`
}

func New(typ, entityID, operator string, payload interface{}) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		EntityID:   entityID,
		Operator:   operator,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher checks that broker is reachable and returns a publisher
// writing to topic. Messages are keyed by entity id so one record's events stay ordered.
func NewKafkaPublisher(broker, topic string) (Publisher, error) {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Kafka: %w", err)
	}
	conn.Close()

	return &kafkaPublisher{writer: &kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}}, nil
}

func (k *kafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", e.Type, err)
	}
	return k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.EntityID),
		Value: value,
		Time:  e.OccurredAt,
	})
}

func (k *kafkaPublisher) Close() error {
	return k.writer.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types lists the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
