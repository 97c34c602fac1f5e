package service

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jengzang/incidentmap/internal/models"
)

// Hub fans frames out to subscribers. A subscriber that falls behind loses
// frames; the generation gap tells it to ask for a snapshot.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]chan models.Frame
	size int
	log  *slog.Logger
}

// NewHub returns a hub whose subscribers buffer size frames
func NewHub(size int, log *slog.Logger) *Hub {
	if size <= 0 {
		size = 16
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subs: make(map[string]chan models.Frame),
		size: size,
		log:  log.With("component", "Hub"),
	}
}

// Subscribe registers a subscriber and returns its id and frame channel
func (h *Hub) Subscribe() (string, <-chan models.Frame) {
	id := uuid.NewString()
	ch := make(chan models.Frame, h.size)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	h.log.Debug("subscriber added", "id", id)
	return id, ch
}

// Unsubscribe removes a subscriber and closes its channel
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	ch, ok := h.subs[id]
	delete(h.subs, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		h.log.Debug("subscriber removed", "id", id)
	}
}

// Publish delivers f to every subscriber without blocking
func (h *Hub) Publish(f models.Frame) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for id, ch := range h.subs {
		select {
		case ch <- f:
		default:
			h.log.Warn("subscriber lagging, frame dropped", "id", id, "generation", f.Generation)
		}
	}
}

// Len returns the number of subscribers
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
