package service

import (
	"context"
	"fmt"
	"log"

	"editorial_platform/internal/kafka"
	"editorial_platform/internal/models"

	"github.com/jackc/pgx/v5"
)

type OutboxStore interface {
	CreateMessage(ctx context.Context, tx pgx.Tx, msg *models.OutboxMessage) error
}

// Dispatcher кладёт событие решения в outbox внутри транзакции решения.
// Доставку в Kafka делает OutboxSender: решение фиксируется независимо от
// доступности брокера, уведомление догоняет с ретраями.
type Dispatcher struct {
	outboxRepo OutboxStore
	topic      string
	logger     *log.Logger
}

func NewDispatcher(outboxRepo OutboxStore, topic string, logger *log.Logger) *Dispatcher {
	if topic == "" {
		topic = "review_notifications"
	}
	if logger == nil {
		logger = log.Default()
	}

	return &Dispatcher{
		outboxRepo: outboxRepo,
		topic:      topic,
		logger:     logger,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, tx pgx.Tx, ev *models.OutcomeEvent) error {
	payload, err := kafka.EncodeOutcomeEvent(ev)
	if err != nil {
		return fmt.Errorf("encode outcome event: %w", err)
	}

	msg := &models.OutboxMessage{
		Topic:   d.topic,
		Payload: payload,
	}
	if err := d.outboxRepo.CreateMessage(ctx, tx, msg); err != nil {
		return fmt.Errorf("create outbox message: %w", err)
	}

	d.logger.Printf("outcome event queued post_id=%d outcome=%s message_id=%s",
		ev.PostID, ev.Outcome, msg.MessageID)

	return nil
}
