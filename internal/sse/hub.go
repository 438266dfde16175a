package sse

import (
	"log"
	"sync"

	"editorial_platform/internal/metrics"
	"editorial_platform/internal/models"

	"github.com/google/uuid"
)

// Subscriber — одно живое подключение. Канал events никогда не закрывается,
// завершение сигналится только через done: так Broadcast не может написать
// в закрытый канал.
type Subscriber struct {
	ID     string
	events chan models.OutcomeEvent
	done   chan struct{}
	once   sync.Once
}

func (s *Subscriber) Events() <-chan models.OutcomeEvent { return s.events }
func (s *Subscriber) Done() <-chan struct{}              { return s.done }

func (s *Subscriber) signalDone() {
	s.once.Do(func() { close(s.done) })
}

// Hub — реестр живых подписчиков. Все пути завершения (disconnect, idle
// timeout, ошибка отправки, shutdown) проходят через Remove.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]*Subscriber
	buffer int
	logger *log.Logger
}

func NewHub(buffer int, logger *log.Logger) *Hub {
	if buffer <= 0 {
		buffer = 8
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		subs:   make(map[string]*Subscriber),
		buffer: buffer,
		logger: logger,
	}
}

// Register — неблокирующая регистрация, хендл сразу готов к стримингу.
func (h *Hub) Register() *Subscriber {
	sub := &Subscriber{
		ID:     uuid.NewString(),
		events: make(chan models.OutcomeEvent, h.buffer),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	metrics.IncSubscribers()
	h.logger.Printf("subscriber registered id=%s", sub.ID)
	return sub
}

func (h *Hub) Remove(id string) {
	h.mu.Lock()
	sub, ok := h.subs[id]
	if ok {
		delete(h.subs, id)
	}
	h.mu.Unlock()

	if !ok {
		return
	}

	sub.signalDone()
	metrics.DecSubscribers()
	h.logger.Printf("subscriber removed id=%s", id)
}

// Broadcast — по снапшоту, неблокирующая отправка каждому. Переполненный
// буфер считаем мёртвым клиентом и убираем его, остальных это не касается.
func (h *Hub) Broadcast(ev models.OutcomeEvent) {
	h.mu.RLock()
	snapshot := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		snapshot = append(snapshot, s)
	}
	h.mu.RUnlock()

	var evicted []string
	for _, s := range snapshot {
		select {
		case <-s.done:
			// уже завершён параллельным Remove
		case s.events <- ev:
		default:
			evicted = append(evicted, s.ID)
		}
	}

	for _, id := range evicted {
		h.logger.Printf("subscriber send failed, evicting id=%s", id)
		metrics.IncSubscriberEvicted()
		h.Remove(id)
	}

	metrics.IncEventBroadcast()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// CloseAll — на shutdown сервера.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	subs := make([]*Subscriber, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.subs = make(map[string]*Subscriber)
	h.mu.Unlock()

	for _, s := range subs {
		s.signalDone()
		metrics.DecSubscribers()
	}
}
