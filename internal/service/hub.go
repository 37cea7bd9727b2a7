package service

import (
	"errors"
	"sync"

	"github.com/benbeisheim/chessrules-backend/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
	"golang.org/x/exp/maps"
)

var ErrDuplicateConnection = errors.New("connection already exists")

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type client struct {
	conn Conn
	mu   sync.Mutex // serialises writes
}

func (c *client) send(msg ws.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *client) close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason),
	)
	c.conn.Close()
}

// Hub tracks the websocket observers of every game.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[string]*client // gameID -> clientID -> client
}

func NewHub() *Hub {
	return &Hub{games: make(map[string]map[string]*client)}
}

// Register adds a connection for clientID. A second connection for the same
// client is closed and rejected; the healthy one is kept.
func (h *Hub) Register(gameID, clientID string, conn Conn) error {
	h.mu.Lock()
	clients, ok := h.games[gameID]
	if !ok {
		clients = make(map[string]*client)
		h.games[gameID] = clients
	}
	if _, exists := clients[clientID]; exists {
		h.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrDuplicateConnection.Error()),
		)
		conn.Close()
		return ErrDuplicateConnection
	}
	clients[clientID] = &client{conn: conn}
	h.mu.Unlock()

	log.Infow("connection registered", "game", gameID, "client", clientID)
	return nil
}

// CloseGame sends a close frame to every client of a game, closes their
// connections and forgets the game.
func (h *Hub) CloseGame(gameID, reason string) {
	h.mu.Lock()
	clients := h.games[gameID]
	delete(h.games, gameID)
	h.mu.Unlock()

	for clientID, c := range clients {
		c.close(reason)
		log.Infow("connection closed", "game", gameID, "client", clientID, "reason", reason)
	}
}

func (h *Hub) Unregister(gameID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.games[gameID]
	if !ok {
		return
	}
	delete(clients, clientID)
	if len(clients) == 0 {
		delete(h.games, gameID)
	}
	log.Infow("connection unregistered", "game", gameID, "client", clientID)
}

// Send writes a message to one client of a game.
func (h *Hub) Send(gameID, clientID string, msg ws.Message) error {
	h.mu.RLock()
	c, ok := h.games[gameID][clientID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}
	return c.send(msg)
}

// Broadcast writes msg to every client of the game and drops the ones whose
// write fails.
func (h *Hub) Broadcast(gameID string, msg ws.Message) {
	h.mu.RLock()
	active := maps.Clone(h.games[gameID])
	h.mu.RUnlock()

	for clientID, c := range active {
		if err := c.send(msg); err != nil {
			log.Warnw("dropping connection after failed write", "game", gameID, "client", clientID, "error", err)
			h.Unregister(gameID, clientID)
		}
	}
}

// Count returns the number of clients watching a game.
func (h *Hub) Count(gameID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.games[gameID])
}
