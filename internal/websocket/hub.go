package websocket

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cafesv/whatsapp-sentiment-back/internal/bus"
	"github.com/cafesv/whatsapp-sentiment-back/internal/domain"
)

// Hub fans dashboard events out to every connected websocket client. Events
// arrive from the bus subscription, so every server process broadcasts the
// same stream regardless of which process produced the event.
type Hub struct {
	subscriber bus.Subscriber
	logger     *slog.Logger

	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

func NewHub(subscriber bus.Subscriber, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subscriber: subscriber,
		logger:     logger,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]struct{}),
	}
}

// Run blocks until ctx is canceled, pumping bus events to all registered
// clients. On shutdown every client connection is closed.
func (h *Hub) Run(ctx context.Context) error {
	events, cancel, err := h.subscriber.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			h.logger.Info("websocket hub stopped")
			return ctx.Err()

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("websocket client connected", "total_clients", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("websocket client disconnected", "total_clients", total)

		case event, ok := <-events:
			if !ok {
				h.closeAll()
				h.logger.Warn("event stream closed, websocket hub stopping")
				return nil
			}
			h.broadcastEvent(event)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcastEvent delivers to every client without blocking: a client whose
// send buffer is full is disconnected rather than stalling the hub.
func (h *Hub) broadcastEvent(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var stalled []*Client
	for client := range h.clients {
		select {
		case client.send <- event:
		default:
			stalled = append(stalled, client)
		}
	}
	for _, client := range stalled {
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn("dropping stalled websocket client")
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}
