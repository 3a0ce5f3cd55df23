package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"dummyapi/internal/dummy/models"
	"dummyapi/internal/platform/kafka/producer"
	"dummyapi/pkg/platform/circuit"
	"dummyapi/pkg/requestcontext"
)

const DefaultTopic = "dummy.events"

// Producer is the subset of the Kafka producer the publisher needs.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// Publisher writes dummy lifecycle events to Kafka as JSON. Records are keyed
// by dummy id so all events for one record land on the same partition.
type Publisher struct {
	producer Producer
	topic    string
	logger   *slog.Logger
	breaker  *circuit.Breaker
	now      func() time.Time
}

type Option func(*Publisher)

func WithTopic(topic string) Option {
	return func(p *Publisher) {
		if topic != "" {
			p.topic = topic
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithBreaker replaces the default breaker (5 failures to open, 3 successes
// to close).
func WithBreaker(b *circuit.Breaker) Option {
	return func(p *Publisher) {
		p.breaker = b
	}
}

func New(prod Producer, opts ...Option) *Publisher {
	p := &Publisher{
		producer: prod,
		topic:    DefaultTopic,
		breaker:  circuit.New("kafka_publisher"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type eventPayload struct {
	Type       string         `json:"type"`
	DummyID    int64          `json:"dummy_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Record     *recordPayload `json:"record,omitempty"`
}

// recordPayload carries the record in the same shape the HTTP API uses.
type recordPayload struct {
	ID         int64        `json:"id"`
	Name       string       `json:"dummy"`
	NationalID *int64       `json:"dni,omitempty"`
	Email      *string      `json:"email,omitempty"`
	Phone      *int64       `json:"tel,omitempty"`
	BirthDate  *models.Date `json:"fecha_Nac,omitempty"`
}

func toPayload(event models.DummyEvent, at time.Time) eventPayload {
	payload := eventPayload{
		Type:       event.Type,
		DummyID:    int64(event.DummyID),
		OccurredAt: at.UTC(),
	}
	if d := event.Record; d != nil {
		payload.Record = &recordPayload{
			ID:         int64(d.ID),
			Name:       d.Name,
			NationalID: d.NationalID,
			Email:      d.Email,
			Phone:      d.Phone,
			BirthDate:  d.BirthDate,
		}
	}
	return payload
}

// Publish serializes event and waits for the broker acknowledgement.
func (p *Publisher) Publish(ctx context.Context, event models.DummyEvent) error {
	value, err := json.Marshal(toPayload(event, p.now()))
	if err != nil {
		return fmt.Errorf("marshal dummy event: %w", err)
	}

	headers := map[string]string{"event_type": event.Type}
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		headers["request_id"] = reqID
	}

	msg := &producer.Message{
		Topic:   p.topic,
		Key:     []byte(strconv.FormatInt(int64(event.DummyID), 10)),
		Value:   value,
		Headers: headers,
	}
	if err := p.producer.Produce(ctx, msg); err != nil {
		if p.breaker.RecordFailure() == circuit.Opened && p.logger != nil {
			p.logger.WarnContext(ctx, "dummy event publishing degraded", "breaker", p.breaker.Name(), "error", err)
		}
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	if p.breaker.RecordSuccess() == circuit.Closed && p.logger != nil {
		p.logger.InfoContext(ctx, "dummy event publishing recovered", "breaker", p.breaker.Name())
	}

	if p.logger != nil {
		p.logger.DebugContext(ctx, "dummy event published",
			"event_type", event.Type,
			"dummy_id", int64(event.DummyID),
			"topic", p.topic,
		)
	}
	return nil
}

// Degraded reports whether recent publishes have been failing.
func (p *Publisher) Degraded() bool {
	return p.breaker.IsOpen()
}
