// ws/hub.go
package ws

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gkirkpatrick/magic-notes/domain"
)

// Event types broadcast to subscribers.
const (
	EventNoteCreated = "note_created"
	EventNoteUpdated = "note_updated"
	EventNoteDeleted = "note_deleted"
)

type Message struct {
	Type string       `json:"type"`
	Note *domain.Note `json:"note,omitempty"`
}

// Hub fans out note mutation events to connected websocket clients.
type Hub struct {
	clients    map[string]*websocket.Conn
	broadcast  chan Message
	register   chan client
	unregister chan string
	log        zerolog.Logger
	mu         sync.RWMutex
}

type client struct {
	id   string
	conn *websocket.Conn
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*websocket.Conn),
		broadcast:  make(chan Message, 256),
		register:   make(chan client),
		unregister: make(chan string),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c.conn
			h.mu.Unlock()
			h.log.Debug().Str("client_id", c.id).Msg("client connected")

		case id := <-h.unregister:
			h.mu.Lock()
			if conn, ok := h.clients[id]; ok {
				delete(h.clients, id)
				conn.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			var dead []string
			for id, conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					h.log.Warn().Err(err).Str("client_id", id).Msg("websocket write failed")
					dead = append(dead, id)
				}
			}
			h.mu.RUnlock()
			h.mu.Lock()
			for _, id := range dead {
				if conn, ok := h.clients[id]; ok {
					delete(h.clients, id)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Broadcast(msgType string, note *domain.Note) {
	h.broadcast <- Message{Type: msgType, Note: note}
}

// HandleConnection is the websocket.New handler: it registers the connection
// and blocks reading until the client goes away.
func (h *Hub) HandleConnection(conn *websocket.Conn) {
	id := uuid.NewString()
	h.register <- client{id: id, conn: conn}
	defer func() { h.unregister <- id }()

	for {
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
	}
}
