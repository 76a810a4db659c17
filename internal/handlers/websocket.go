package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartsniper31/network-guardian/internal/events"
)

// EventFrame is the wire format for messages pushed over the WebSocket.
type EventFrame struct {
	Type    string          `json:"type"` // event, heartbeat
	Payload json.RawMessage `json:"payload,omitempty"`
}

const writeTimeout = 10 * time.Second

// WebSocketHub pushes bus events to connected dashboard clients so
// device changes appear without polling.
type WebSocketHub struct {
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	// writeMu serializes broadcasts: the bus may be published from
	// several goroutines and gorilla permits one concurrent writer.
	writeMu sync.Mutex
}

// NewWebSocketHub creates a hub subscribed to every bus event.
func NewWebSocketHub(bus *events.Bus) *WebSocketHub {
	h := &WebSocketHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
	bus.Subscribe(h.broadcast)
	return h
}

// HandleConnection is the HTTP handler that upgrades to WebSocket.
func (h *WebSocketHub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws: upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()
	log.Printf("ws: client connected (%d active)", n)

	// Reader loop: clients only listen, but reading drains control
	// frames and detects disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// broadcast fans an event out to every connected client. A client that
// cannot keep up is dropped rather than blocking the bus.
func (h *WebSocketHub) broadcast(e events.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("ws: marshal event: %v", err)
		return
	}
	frame := EventFrame{Type: "event", Payload: payload}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.conns))
	for c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			h.drop(conn)
		}
	}
}

// drop removes and closes a connection.
func (h *WebSocketHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()

	conn.Close()
	log.Printf("ws: client disconnected (%d active)", n)
}
