package ws

import (
	"log/slog"
	"sync"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/protocol"
	"github.com/mcoot/wordgame-go/internal/services/room"
)

// Hub holds the live connection of each seat in one room
type Hub struct {
	code    model.RoomCode
	mu      sync.RWMutex
	clients map[model.PlayerID]room.Conn
	logger  *slog.Logger
}

func newHub(code model.RoomCode, logger *slog.Logger) *Hub {
	return &Hub{
		code:    code,
		clients: make(map[model.PlayerID]room.Conn),
		logger:  logger.With(slog.String("room_code", string(code))),
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type closer interface {
	Close()
}

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

var _ room.Notifier = (*HubManager)(nil)

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With(slog.String("component", "ws-hub")),
	}
}

func (m *HubManager) getOrCreateHub(code model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[code]; ok {
		return hub
	}
	hub := newHub(code, m.logger)
	m.hubs[code] = hub
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(code model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[code]
}

// Attach registers conn as the seat's connection. A replaced connection is closed.
func (m *HubManager) Attach(code model.RoomCode, playerID model.PlayerID, conn room.Conn) {
	hub := m.getOrCreateHub(code)

	hub.mu.Lock()
	previous := hub.clients[playerID]
	hub.clients[playerID] = conn
	count := len(hub.clients)
	hub.mu.Unlock()

	if previous != nil && previous != conn {
		if c, ok := previous.(closer); ok {
			c.Close()
		}
	}
	hub.logger.Info("ws client registered",
		slog.String("player_id", string(playerID)),
		slog.Int("total_clients", count),
	)
}

// Detach unregisters conn if it is still the seat's connection
func (m *HubManager) Detach(code model.RoomCode, playerID model.PlayerID, conn room.Conn) bool {
	hub := m.GetHub(code)
	if hub == nil {
		return false
	}

	hub.mu.Lock()
	current, ok := hub.clients[playerID]
	if !ok || current != conn {
		hub.mu.Unlock()
		return false
	}
	delete(hub.clients, playerID)
	count := len(hub.clients)
	hub.mu.Unlock()

	hub.logger.Info("ws client unregistered",
		slog.String("player_id", string(playerID)),
		slog.Int("total_clients", count),
	)
	return true
}

// Send delivers msg to the seat's connection, dropping it when nobody is attached
func (m *HubManager) Send(code model.RoomCode, playerID model.PlayerID, msg protocol.ServerMessage) {
	hub := m.GetHub(code)
	if hub == nil {
		return
	}
	hub.mu.RLock()
	conn := hub.clients[playerID]
	hub.mu.RUnlock()
	if conn != nil {
		conn.Send(msg)
	}
}

// Close removes a room's hub and closes its connections
func (m *HubManager) Close(code model.RoomCode) {
	m.mu.Lock()
	hub, ok := m.hubs[code]
	delete(m.hubs, code)
	m.mu.Unlock()
	if !ok {
		return
	}

	hub.mu.Lock()
	clients := hub.clients
	hub.clients = make(map[model.PlayerID]room.Conn)
	hub.mu.Unlock()

	for _, conn := range clients {
		if c, ok := conn.(closer); ok {
			c.Close()
		}
	}
	m.logger.Info("ws hub removed",
		slog.String("room_code", string(code)),
		slog.Int("disconnected_clients", len(clients)),
	)
}

// HubCount returns the number of rooms with a hub
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}
