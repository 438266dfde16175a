package sse

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Handler отдаёт text/event-stream. Канал строго односторонний:
// сервер -> клиент, reconnect — забота клиента.
type Handler struct {
	hub    *Hub
	idle   time.Duration
	logger *log.Logger
}

func NewHandler(hub *Hub, idle time.Duration, logger *log.Logger) *Handler {
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		hub:    hub,
		idle:   idle,
		logger: logger,
	}
}

// GET /reviews/notifications
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := h.hub.Register()
	// disconnect, idle timeout и ошибка записи сходятся в один путь очистки
	defer h.hub.Remove(sub.ID)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	idle := time.NewTimer(h.idle)
	defer idle.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case <-idle.C:
			h.logger.Printf("subscriber idle timeout id=%s", sub.ID)
			return
		case ev := <-sub.Events():
			b, err := json.Marshal(ev)
			if err != nil {
				h.logger.Printf("marshal outcome event: %v", err)
				continue
			}
			if _, err := fmt.Fprintf(w, "event: review-outcome\ndata: %s\n\n", b); err != nil {
				return
			}
			flusher.Flush()

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(h.idle)
		}
	}
}
