package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/skillgomoku/internal/model"
)

// Hub tracks the websocket clients watching a single game
type Hub struct {
	gameID  model.GameID
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool
	logger  *slog.Logger
}

func newHub(gameID model.GameID, logger *slog.Logger) *Hub {
	return &Hub{
		gameID:  gameID,
		clients: make(map[*Client]struct{}),
		logger:  logger.With(slog.String("game_id", string(gameID))),
	}
}

// add registers a client. It returns false once the hub is closed.
func (h *Hub) add(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.logger.Info("ws client registered",
		slog.String("player", string(c.player)),
		slog.Int("total_clients", len(h.clients)))
	return true
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.logger.Info("ws client unregistered",
		slog.String("player", string(c.player)),
		slog.Int("total_clients", len(h.clients)))
}

// Broadcast queues an encoded message for every client.
// Clients whose buffer is full miss the message.
func (h *Hub) Broadcast(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- message:
		default:
			h.logger.Warn("ws message dropped - client buffer full",
				slog.String("player", string(c.player)))
		}
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// HubManager owns the per-game websocket hubs
type HubManager struct {
	mu     sync.Mutex
	hubs   map[model.GameID]*Hub
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.GameID]*Hub),
		logger: logger.With(slog.String("component", "ws")),
	}
}

// GetOrCreateHub returns the hub for a game, creating one if needed
func (m *HubManager) GetOrCreateHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hub, ok := m.hubs[gameID]; ok {
		return hub
	}
	hub := newHub(gameID, m.logger)
	m.hubs[gameID] = hub
	return hub
}

// GetHub returns the hub for a game, or nil if nobody has connected
func (m *HubManager) GetHub(gameID model.GameID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hubs[gameID]
}

// RemoveHub closes the game's hub and disconnects its clients
func (m *HubManager) RemoveHub(gameID model.GameID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hub, ok := m.hubs[gameID]; ok {
		hub.close()
		delete(m.hubs, gameID)
	}
}

// Close disconnects every client
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.close()
		delete(m.hubs, id)
	}
}
