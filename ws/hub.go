package ws

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

const queryTimeout = 10 * time.Second

type Hub struct {
	queries  PodcastQueries
	debounce time.Duration

	mutex   sync.RWMutex
	clients map[*Client]struct{}

	// generation tăng sau mỗi mutation; kết quả đánh số theo generation lúc query bắt đầu
	generation atomic.Uint64
}

func NewHub(queries PodcastQueries, searchDebounce time.Duration) *Hub {
	return &Hub{
		queries:  queries,
		debounce: searchDebounce,
		clients:  make(map[*Client]struct{}),
	}
}

func (h *Hub) register(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, c)
	h.mutex.Unlock()

	c.close()
}

func (h *Hub) snapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	return clients
}

// Refresh re-evaluates every live subscription and pushes the new results.
func (h *Hub) Refresh() {
	clients := h.snapshot()
	log.WithField("clients", len(clients)).Debug("refreshing subscriptions")
	for _, c := range clients {
		c.refreshAll()
	}
}

// NotifyChanged schedules a Refresh without blocking the caller. Refreshes may
// overlap; a result read before a later change never replaces a newer one.
func (h *Hub) NotifyChanged() {
	h.generation.Add(1)
	go h.Refresh()
}

func (h *Hub) evaluate(query string, args QueryArgs) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	return Evaluate(ctx, h.queries, query, args)
}

type Stats struct {
	Clients       int `json:"clients"`
	Subscriptions int `json:"subscriptions"`
}

func (h *Hub) GetStats() Stats {
	clients := h.snapshot()
	stats := Stats{Clients: len(clients)}
	for _, c := range clients {
		stats.Subscriptions += c.subscriptionCount()
	}
	return stats
}
