package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/togedaeng/go-togedaeng/internal/log"
	"github.com/togedaeng/go-togedaeng/pkg/protocol"
)

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	// Name for logging
	name   string
	logger *slog.Logger

	// Registered clients
	clients map[*Client]struct{}

	// Inbound messages to broadcast
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done     chan struct{}
	doneOnce sync.Once

	// Guards clients for readers outside the run loop
	mu sync.RWMutex

	running atomic.Bool
	sent    atomic.Uint64
	dropped atomic.Uint64
}

// Option configures a Hub
type Option func(*Hub)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// New creates a new Hub
func New(name string, opts ...Option) *Hub {
	h := &Hub{
		name:       name,
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.logger == nil {
		h.logger = log.With("component", "hub", "hub", name)
	}
	return h
}

// Run starts the hub's main loop and blocks until ctx is done. Every client
// is disconnected on return. A hub runs once.
func (h *Hub) Run(ctx context.Context) {
	if !h.running.CompareAndSwap(false, true) {
		return
	}
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.close()
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.Send(message) {
					h.sent.Add(1)
					continue
				}
				// Client's buffer is full, they're too slow
				delete(h.clients, client)
				client.close()
				h.dropped.Add(1)
				h.logger.Warn("dropped slow client")
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		client.close()
	}
	h.mu.Unlock()
	h.running.Store(false)
	h.doneOnce.Do(func() { close(h.done) })
	h.logger.Debug("hub stopped")
}

// Broadcast sends a message to all connected clients
func (h *Hub) Broadcast(msg Message) {
	select {
	case h.broadcast <- msg:
	default:
		// Broadcast channel full - drop message
		h.logger.Warn("broadcast channel full, dropping message")
	}
}

// BroadcastJSON encodes and broadcasts a JSON message
func (h *Hub) BroadcastJSON(v any) error {
	msg, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// BroadcastProtocol encodes and broadcasts a protocol envelope
func (h *Hub) BroadcastProtocol(msg *protocol.Message) error {
	m, err := FromProtocol(msg)
	if err != nil {
		return err
	}
	h.Broadcast(m)
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsRunning returns whether the hub is running
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}

// Name returns the hub name
func (h *Hub) Name() string {
	return h.name
}

// Stats contains hub statistics
type Stats struct {
	Name    string `json:"name"`
	Clients int    `json:"clients"`
	Sent    uint64 `json:"sent"`
	Dropped uint64 `json:"dropped"`
}

// GetStats returns hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		Name:    h.name,
		Clients: h.ClientCount(),
		Sent:    h.sent.Load(),
		Dropped: h.dropped.Load(),
	}
}
