package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"staybook/config"

	"go.uber.org/zap"
)

// Envelope is the wire form of every published booking event.
type Envelope struct {
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// Publisher delivers booking lifecycle events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

func newEnvelope(eventType, key string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return json.Marshal(Envelope{
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// MemoryPublisher keeps published envelopes in memory.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Envelope
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, eventType, key string, payload any) error {
	b, err := newEnvelope(eventType, key, payload)
	if err != nil {
		return err
	}
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	p.mu.Lock()
	p.events = append(p.events, env)
	p.mu.Unlock()
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

// Events returns a copy of what was published so far.
func (p *MemoryPublisher) Events() []Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Envelope(nil), p.events...)
}

// OfType returns the published envelopes with the given type.
func (p *MemoryPublisher) OfType(eventType string) []Envelope {
	var out []Envelope
	for _, e := range p.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// NewPublisherFromConfig builds the publisher selected by EVENTS_BROKER.
func NewPublisherFromConfig(logger *zap.Logger) (Publisher, error) {
	cfg := config.AppConfig
	switch cfg.EventsBroker {
	case "", "none":
		return NopPublisher{}, nil
	case "kafka":
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	case "amqp":
		return NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	default:
		return nil, fmt.Errorf("unknown EVENTS_BROKER %q", cfg.EventsBroker)
	}
}

// Emit publishes best-effort: failures are logged and never returned.
func Emit(ctx context.Context, p Publisher, logger *zap.Logger, eventType, key string, payload any) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := p.Publish(ctx, eventType, key, payload); err != nil {
		logger.Warn("failed to publish event",
			zap.String("type", eventType),
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
