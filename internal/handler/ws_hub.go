package handler

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Event types sent over WebSocket.
const (
	EventConnected          = "connected"
	EventProgress           = "progress"
	EventGameResult         = "game_result"
	EventRatings            = "ratings"
	EventTournamentFinished = "tournament_finished"
)

// WSEvent is the envelope for all WebSocket messages.
type WSEvent struct {
	Type         string `json:"type"`
	TournamentID string `json:"tournament_id"`
	Data         any    `json:"data"`
}

// ClientMessage is the envelope for messages sent from the client.
type ClientMessage struct {
	Action       string `json:"action"` // "subscribe" or "unsubscribe"
	TournamentID string `json:"tournament_id"`
}

// WSConn wraps a WebSocket connection with its viewer and subscriptions.
type WSConn struct {
	conn   *websocket.Conn
	viewer string
	send   chan []byte
}

// Hub manages WebSocket connections and tournament subscriptions.
type Hub struct {
	mu          sync.RWMutex
	connections map[*WSConn]bool
	tournaments map[string]map[*WSConn]bool // tournamentID -> set of connections
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		connections: make(map[*WSConn]bool),
		tournaments: make(map[string]map[*WSConn]bool),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[c] = true
}

// Unregister removes a connection from the hub and all its subscriptions.
func (h *Hub) Unregister(c *WSConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.connections[c] {
		return
	}
	delete(h.connections, c)
	for id, conns := range h.tournaments {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.tournaments, id)
		}
	}
	close(c.send)
}

// Subscribe adds a connection to a tournament channel.
func (h *Hub) Subscribe(c *WSConn, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.tournaments[tournamentID] == nil {
		h.tournaments[tournamentID] = make(map[*WSConn]bool)
	}
	h.tournaments[tournamentID][c] = true
}

// Unsubscribe removes a connection from a tournament channel.
func (h *Hub) Unsubscribe(c *WSConn, tournamentID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.tournaments[tournamentID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.tournaments, tournamentID)
		}
	}
}

// BroadcastToTournament sends an event to all connections subscribed to a tournament.
// Slow clients drop messages instead of blocking the caller.
func (h *Hub) BroadcastToTournament(tournamentID string, event WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("tournamentId", tournamentID).Msg("Failed to marshal WebSocket event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.tournaments[tournamentID] {
		select {
		case c.send <- data:
		default:
			log.Warn().Str("viewer", c.viewer).Str("tournamentId", tournamentID).Msg("Dropping WebSocket message, buffer full")
		}
	}
}

// ConnectionCount returns the total number of active connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SubscriberCount returns the number of connections subscribed to a tournament.
func (h *Hub) SubscriberCount(tournamentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tournaments[tournamentID])
}
