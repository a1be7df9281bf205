package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go/jetstream"
)

// Publisher provides typed methods for publishing events to NATS JetStream.
// A nil Publisher is safe to call; publishes become no-ops so the service
// runs without NATS configured.
type Publisher struct {
	js jetstream.JetStream
}

// NewPublisher creates a new Publisher.
func NewPublisher(js jetstream.JetStream) *Publisher {
	return &Publisher{js: js}
}

// PublishMessageSent publishes a message-sent event.
func (p *Publisher) PublishMessageSent(ctx context.Context, ev MessageSent) error {
	return p.publish(ctx, SubjectMessageSent, ev)
}

// PublishQuotaExceeded publishes a quota-exceeded event.
func (p *Publisher) PublishQuotaExceeded(ctx context.Context, ev QuotaExceeded) error {
	return p.publish(ctx, SubjectQuotaExceeded, ev)
}

func (p *Publisher) publish(ctx context.Context, subject string, data any) error {
	if p == nil {
		return nil
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event for %s: %w", subject, err)
	}
	_, err = p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	return nil
}
