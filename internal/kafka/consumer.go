package kafka

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"editorial_platform/internal/metrics"

	"github.com/IBM/sarama"
)

// ErrBadMessage — сообщение нельзя обработать в принципе (битый payload),
// ретраить его бессмысленно: пропускаем и коммитим.
var ErrBadMessage = errors.New("bad message")

type MessageProcessor interface {
	ProcessOutcomeMessage(message []byte) error
}

type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler sarama.ConsumerGroupHandler
	logger  *log.Logger
}

func NewConsumer(
	brokers []string,
	groupID string,
	topic string,
	processor MessageProcessor,
	logger *log.Logger,
) (*Consumer, error) {
	if logger == nil {
		logger = log.Default()
	}

	cfg := sarama.NewConfig()

	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	// Важно: коммит только руками после успешной обработки
	cfg.Consumer.Offsets.AutoCommit.Enable = false

	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{
		sarama.NewBalanceStrategyRange(),
	}
	cfg.Consumer.Group.Session.Timeout = 30 * time.Second
	cfg.Consumer.Group.Heartbeat.Interval = 3 * time.Second

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}

	h := &outcomeGroupHandler{
		processor: processor,
		logger:    logger,
	}

	return &Consumer{
		group:   group,
		topic:   topic,
		handler: h,
		logger:  logger,
	}, nil
}

func (c *Consumer) Start(ctx context.Context) error {
	// Ошибки группы в отдельный поток логов
	go func() {
		for err := range c.group.Errors() {
			c.logger.Printf("consumer group error: %v", err)
			metrics.IncKafkaError("consumer", "group")
		}
	}()

	for {
		err := c.group.Consume(ctx, []string{c.topic}, c.handler)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Printf("consume loop error: %v", err)
			time.Sleep(1 * time.Second)
			continue
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type outcomeGroupHandler struct {
	processor MessageProcessor
	logger    *log.Logger
}

func (h *outcomeGroupHandler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *outcomeGroupHandler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *outcomeGroupHandler) ConsumeClaim(
	session sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for kafkaMsg := range claim.Messages() {
		lag := claim.HighWaterMarkOffset() - kafkaMsg.Offset - 1
		metrics.SetKafkaConsumerLag(kafkaMsg.Topic, kafkaMsg.Partition, lag)

		// retry до успеха (или пока не отменён контекст)
		if err := h.processWithRetry(session.Context(), kafkaMsg); err != nil {
			if errors.Is(err, ErrBadMessage) {
				h.logger.Printf(
					"skip bad kafka message topic=%s partition=%d offset=%d err=%v",
					kafkaMsg.Topic, kafkaMsg.Partition, kafkaMsg.Offset, err,
				)
				metrics.IncKafkaError("consumer", "bad_message")
				session.MarkMessage(kafkaMsg, "")
				session.Commit()
				continue
			}
			// Сообщение НЕ отмечаем и НЕ коммитим -> будет прочитано снова
			metrics.IncKafkaError("consumer", "process")
			return err
		}

		metrics.IncKafkaProcessed()

		// Только после успеха:
		session.MarkMessage(kafkaMsg, "")
		session.Commit()
	}
	return nil
}

func (h *outcomeGroupHandler) processWithRetry(ctx context.Context, m *sarama.ConsumerMessage) error {
	attempt := 0

	for {
		attempt++
		err := h.processor.ProcessOutcomeMessage(m.Value)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrBadMessage) {
			return err
		}

		backoff := retryBackoff(attempt)
		h.logger.Printf(
			"process kafka message failed topic=%s partition=%d offset=%d attempt=%d err=%v; retry in %s",
			m.Topic, m.Partition, m.Offset, attempt, err, backoff,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func retryBackoff(attempt int) time.Duration {
	// линейный backoff 1..30 сек
	d := time.Duration(attempt) * time.Second
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d
}
