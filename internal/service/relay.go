package service

import (
	"fmt"
	"log"

	"editorial_platform/internal/kafka"
	"editorial_platform/internal/models"
)

type Broadcaster interface {
	Broadcast(ev models.OutcomeEvent)
}

// OutcomeRelay — потребитель durable-канала: событие из Kafka -> broadcast
// живым подписчикам. Broadcast не имеет побочных эффектов при падении
// отправки, так что повторная доставка брокером даёт максимум дубль
// сообщения у клиента, но не ломает состояние реестра.
type OutcomeRelay struct {
	hub    Broadcaster
	logger *log.Logger
}

func NewOutcomeRelay(hub Broadcaster, logger *log.Logger) *OutcomeRelay {
	if logger == nil {
		logger = log.Default()
	}

	return &OutcomeRelay{
		hub:    hub,
		logger: logger,
	}
}

func (r *OutcomeRelay) ProcessOutcomeMessage(message []byte) error {
	ev, err := kafka.DecodeOutcomeEvent(message)
	if err != nil {
		// битый payload ретраить бессмысленно
		return fmt.Errorf("%w: %v", kafka.ErrBadMessage, err)
	}

	r.hub.Broadcast(*ev)
	r.logger.Printf("outcome event relayed post_id=%d outcome=%s", ev.PostID, ev.Outcome)

	return nil
}
