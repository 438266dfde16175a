package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"editorial_platform/internal/metrics"
	"editorial_platform/internal/models"
)

type OutboxSource interface {
	GetPendingMessages(ctx context.Context, limit int) ([]*models.OutboxMessage, error)
	MarkAsSent(ctx context.Context, messageID string) error
	MarkAsFailed(ctx context.Context, messageID string, errorMsg string) error
	CleanupOldMessages(ctx context.Context, retentionDays int) (int, error)
}

type RawProducer interface {
	SendRaw(topic, key string, payload []byte) error
}

// OutboxSender доставляет решения из outbox в Kafka. Публикация с ретраями;
// после maxRetries строка получает статус failed (dead letter), само решение
// при этом уже зафиксировано и не откатывается.
type OutboxSender struct {
	repo          OutboxSource
	producer      RawProducer
	pollInterval  time.Duration
	batchSize     int
	retentionDays int
	maxRetries    int
	logger        *log.Logger

	cleanupEvery time.Duration
}

func NewOutboxSender(
	repo OutboxSource,
	producer RawProducer,
	pollInterval time.Duration,
	batchSize int,
	retentionDays int,
	maxRetries int,
	logger *log.Logger,
) *OutboxSender {
	if maxRetries <= 0 {
		maxRetries = 10
	}
	if logger == nil {
		logger = log.Default()
	}
	if pollInterval <= 0 {
		pollInterval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if retentionDays < 0 {
		retentionDays = 0
	}

	return &OutboxSender{
		repo:          repo,
		producer:      producer,
		pollInterval:  pollInterval,
		batchSize:     batchSize,
		retentionDays: retentionDays,
		maxRetries:    maxRetries,
		logger:        logger,
		// чистку делаем реже, чтобы не дёргать БД постоянно
		cleanupEvery: 1 * time.Hour,
	}
}

// Start запускает фоновую горутину.
func (s *OutboxSender) Start(ctx context.Context) {
	go func() {
		s.logger.Println("outbox sender started")
		defer s.logger.Println("outbox sender stopped")

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		cleanupTicker := time.NewTicker(s.cleanupEvery)
		defer cleanupTicker.Stop()

		s.flushOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.flushOnce(ctx)
			case <-cleanupTicker.C:
				s.cleanupOnce(ctx)
			}
		}
	}()
}

func (s *OutboxSender) flushOnce(ctx context.Context) {
	msgs, err := s.repo.GetPendingMessages(ctx, s.batchSize)
	if err != nil {
		s.logger.Printf("outbox get pending failed: %v", err)
		return
	}
	if len(msgs) == 0 {
		return
	}

	for _, m := range msgs {
		if err := s.sendOne(m); err != nil {
			if err2 := s.repo.MarkAsFailed(ctx, m.MessageID, err.Error()); err2 != nil {
				s.logger.Printf("outbox mark failed error: %v", err2)
			}
			// после этого инкремента retry_count достигает лимита -> final failed
			if m.RetryCount+1 >= s.maxRetries {
				metrics.IncOutboxFailed()
				s.logger.Printf("outbox message dead-lettered message_id=%s: %v", m.MessageID, err)
			}
			continue
		}
		if err := s.repo.MarkAsSent(ctx, m.MessageID); err != nil {
			s.logger.Printf("outbox mark sent failed: %v", err)
		}
	}
}

func (s *OutboxSender) sendOne(m *models.OutboxMessage) error {
	if m == nil {
		return fmt.Errorf("outbox message is nil")
	}
	if m.Topic == "" {
		return fmt.Errorf("outbox topic is empty")
	}
	if len(m.Payload) == 0 {
		return fmt.Errorf("outbox payload is empty")
	}

	// сколько сообщение пролежало в outbox до попытки отправки
	metrics.ObserveOutboxLagSeconds(time.Since(m.CreatedAt).Seconds())

	start := time.Now()

	// Kafka key = post_id, чтобы события одного поста шли по порядку.
	key, err := extractPostID(m.Payload)
	if err != nil {
		metrics.IncKafkaError("producer", "prepare")
		metrics.ObserveOutboxProcessing(time.Since(start))
		return fmt.Errorf("extract post_id: %w", err)
	}

	if err := s.producer.SendRaw(m.Topic, key, m.Payload); err != nil {
		metrics.IncKafkaError("producer", "send")
		metrics.IncOutboxRetry()
		metrics.ObserveOutboxProcessing(time.Since(start))

		return fmt.Errorf("kafka send failed: %w", err)
	}

	metrics.IncKafkaSent()
	metrics.IncOutboxSent()
	metrics.ObserveOutboxProcessing(time.Since(start))

	return nil
}

func (s *OutboxSender) cleanupOnce(ctx context.Context) {
	if s.retentionDays <= 0 {
		return
	}
	n, err := s.repo.CleanupOldMessages(ctx, s.retentionDays)
	if err != nil {
		s.logger.Printf("outbox cleanup failed: %v", err)
		return
	}
	if n > 0 {
		s.logger.Printf("outbox cleanup: deleted %d messages", n)
	}
}

func extractPostID(payload []byte) (string, error) {
	var x struct {
		PostID int64 `json:"post_id"`
	}
	if err := json.Unmarshal(payload, &x); err != nil {
		return "", err
	}
	if x.PostID <= 0 {
		return "", fmt.Errorf("post_id is empty in payload")
	}
	return strconv.FormatInt(x.PostID, 10), nil
}
