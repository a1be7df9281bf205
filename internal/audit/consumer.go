package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/prismchat/prism/internal/events"
)

// Consumer listens on the quota-exceeded NATS subject and persists entries
// to the database.
type Consumer struct {
	repo        *Repository
	consumerMgr *events.ConsumerManager
}

// NewConsumer creates a new quota audit Consumer.
func NewConsumer(repo *Repository, consumerMgr *events.ConsumerManager) *Consumer {
	return &Consumer{
		repo:        repo,
		consumerMgr: consumerMgr,
	}
}

// Start begins the consume loop. Blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	consumer, err := c.consumerMgr.EnsureConsumer(ctx, events.StreamEvents, "quota-audit-persister", events.SubjectQuotaExceeded)
	if err != nil {
		return err
	}

	slog.Info("audit consumer started", "consumer", "quota-audit-persister")

	for {
		msgs, err := consumer.Fetch(10, jetstream.FetchMaxWait(events.FetchTimeout))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			slog.Debug("audit consumer: fetching events", "error", err)
			continue
		}

		for msg := range msgs.Messages() {
			c.handleEvent(ctx, msg)
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) handleEvent(ctx context.Context, msg jetstream.Msg) {
	var event events.QuotaExceeded
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		slog.Error("audit consumer: unmarshaling event", "error", err)
		_ = msg.Nak()
		return
	}

	entry := convertEventToEntry(event)

	if err := c.repo.Insert(ctx, entry); err != nil {
		slog.Error("audit consumer: persisting audit entry", "error", err, "kind", event.Kind)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()

	slog.Debug("audit consumer: persisted entry",
		"kind", event.Kind,
		"user", event.UserID,
		"limit", event.Limit,
	)
}

func convertEventToEntry(event events.QuotaExceeded) *Entry {
	return &Entry{
		UserID:    event.UserID,
		Kind:      event.Kind,
		Limit:     event.Limit,
		CreatedAt: event.Timestamp,
	}
}
