package ws

import (
	"context"
	"encoding/json"
	"sync"

	"messaging_backend/internal/logger"
)

// Event is the frame pushed to clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// WebSocketManager is the process-wide fan-out hub. A user may hold any number of connections.
type WebSocketManager struct {
	clients map[string]map[*Client]struct{}
	stopped bool
	mu      sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Run blocks until ctx is cancelled, then closes every client and refuses new ones.
func (manager *WebSocketManager) Run(ctx context.Context) {
	<-ctx.Done()

	manager.mu.Lock()
	manager.stopped = true
	for userID, conns := range manager.clients {
		for client := range conns {
			close(client.Send)
		}
		delete(manager.clients, userID)
	}
	manager.mu.Unlock()
	logger.Info("ws manager stopped")
}

// Register adds client before returning, so a Notify issued afterwards reaches it.
// It returns false once the manager has stopped.
func (manager *WebSocketManager) Register(client *Client) bool {
	manager.mu.Lock()
	if manager.stopped {
		manager.mu.Unlock()
		return false
	}
	conns, ok := manager.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		manager.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	total := len(conns)
	manager.mu.Unlock()

	logger.Debug("ws client registered", "user_id", client.UserID, "connections", total)
	return true
}

// Unregister removes client and closes its send channel. Safe to call more than once.
func (manager *WebSocketManager) Unregister(client *Client) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.removeLocked(client)
}

func (manager *WebSocketManager) removeLocked(client *Client) {
	conns, ok := manager.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	close(client.Send)
	delete(conns, client)
	if len(conns) == 0 {
		delete(manager.clients, client.UserID)
	}
	logger.Debug("ws client unregistered", "user_id", client.UserID, "connections", len(conns))
}

// Notify pushes {"event", "data"} to every connection of userID.
// It never blocks: a client whose buffer is full is disconnected before Notify returns.
func (manager *WebSocketManager) Notify(userID string, event string, payload interface{}) {
	frame, err := json.Marshal(Event{Event: event, Data: payload})
	if err != nil {
		logger.Error("ws event marshal failed", "event", event, "error", err)
		return
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()

	for client := range manager.clients[userID] {
		select {
		case client.Send <- frame:
		default:
			logger.Warn("ws client dropped: send buffer full", "user_id", userID)
			manager.removeLocked(client)
		}
	}
}

// ConnectionCount returns the number of open connections of userID.
func (manager *WebSocketManager) ConnectionCount(userID string) int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	return len(manager.clients[userID])
}

// GetClientCount returns the number of open connections of all users.
func (manager *WebSocketManager) GetClientCount() int {
	manager.mu.RLock()
	defer manager.mu.RUnlock()
	total := 0
	for _, conns := range manager.clients {
		total += len(conns)
	}
	return total
}

// IsClientConnected reports whether userID has at least one connection.
func (manager *WebSocketManager) IsClientConnected(userID string) bool {
	return manager.ConnectionCount(userID) > 0
}
