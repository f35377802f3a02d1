package controller

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// wsConn is the write surface of a websocket connection.
type wsConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// wsClient serializes writes to one connection. The underlying websocket
// forbids concurrent writers, and a room broadcast can race the connection's
// own handler goroutine without this lock.
type wsClient struct {
	conn wsConn
	mu   sync.Mutex
}

func newWSClient(conn wsConn) *wsClient {
	return &wsClient{conn: conn}
}

func (c *wsClient) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) Close() error {
	return c.conn.Close()
}

// Hub fans messages out to every client subscribed to a room. Rooms are
// created lazily and removed when their last client leaves.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*wsClient]bool
	log   *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*wsClient]bool),
		log:   logrus.WithField("component", "ws_hub"),
	}
}

func (h *Hub) Join(room string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*wsClient]bool)
	}
	h.rooms[room][client] = true
	h.log.WithFields(logrus.Fields{"room": room, "connections": len(h.rooms[room])}).Debug("connection joined")
}

func (h *Hub) Leave(room string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
}

// Broadcast sends the payload to every client in the room. Clients that fail
// to write are dropped from the room.
func (h *Hub) Broadcast(room string, payload interface{}) {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.rooms[room]))
	for client := range h.rooms[room] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.WriteJSON(payload); err != nil {
			h.log.WithError(err).Warn("dropping dead connection")
			h.Leave(room, client)
			client.Close()
		}
	}
}
