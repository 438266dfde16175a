package kafka

import (
	"fmt"
	"strconv"
	"time"

	"editorial_platform/internal/models"

	"github.com/IBM/sarama"
)

type Producer struct {
	topic    string
	producer sarama.SyncProducer
}

func NewSyncProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()

	// SyncProducer обязательно:
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true

	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 500 * time.Millisecond

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create sarama sync producer: %w", err)
	}

	return &Producer{
		topic:    topic,
		producer: prod,
	}, nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}

// SendOutcomeEvent — прямая отправка события, ключ = post_id.
func (p *Producer) SendOutcomeEvent(ev *models.OutcomeEvent) error {
	b, err := EncodeOutcomeEvent(ev)
	if err != nil {
		return err
	}
	return p.SendRaw(p.topic, strconv.FormatInt(ev.PostID, 10), b)
}

func (p *Producer) SendRaw(topic, key string, payload []byte) error {
	if topic == "" {
		return fmt.Errorf("topic is empty")
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: time.Now(),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send kafka message: %w", err)
	}

	return nil
}
