package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"slices"
	"sync"

	"order-ledger/internal/core"

	"github.com/gorilla/websocket"
)

// OrderEvent is the message pushed to every feed client after a write.
type OrderEvent struct {
	Type  string         `json:"type"`
	Order core.OrderView `json:"order"`
}

// eventClient is one connected websocket.
type eventClient struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active feed clients and broadcasts order updates to them.
// It satisfies app.Publisher.
type Hub struct {
	clients    map[*eventClient]bool
	broadcast  chan []byte
	register   chan *eventClient
	unregister chan *eventClient
	done       chan struct{}
	mu         sync.Mutex
	upgrader   websocket.Upgrader
}

// NewHub creates a hub. Websocket upgrades are accepted from the server's own
// origin and from the comma-separated allowedOrigins.
func NewHub(allowedOrigins string) *Hub {
	origins := splitAndTrim(allowedOrigins)
	h := &Hub{
		clients:    make(map[*eventClient]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *eventClient),
		unregister: make(chan *eventClient),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if slices.Contains(origins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && u.Host == r.Host
		},
	}
	return h
}

// Run owns the client set until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow client
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount reports the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// PublishOrder queues an order.updated event. It never blocks the writer:
// when the queue is full or the hub has stopped the event is dropped, and
// clients recover by refetching the order.
func (h *Hub) PublishOrder(v core.OrderView) {
	msg, err := json.Marshal(OrderEvent{Type: "order.updated", Order: v})
	if err != nil {
		log.Printf("events: failed to encode order %s: %v", v.ID, err)
		return
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	default:
		log.Printf("events: queue full, dropped update for order %s", v.ID)
	}
}

// events handles GET /api/events.
func (h *Handler) events(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(w, r, "event feed disabled", "NOT_FOUND", http.StatusNotFound)
		return
	}
	h.hub.serve(w, r)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("events: upgrade failed: %v", err)
		return
	}
	c := &eventClient{hub: h, conn: conn, send: make(chan []byte, 256)}
	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// writePump forwards queued events to the connection, one message per event.
func (c *eventClient) writePump() {
	defer func() {
		_ = c.conn.Close()
	}()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// readPump discards client messages and unregisters the client when the connection drops.
func (c *eventClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("events: %v", err)
			}
			return
		}
	}
}
