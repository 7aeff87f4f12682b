package notify

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Event types broadcast to a family's connected clients.
const (
	EventCompletionCreated  = "completion_created"
	EventCompletionApproved = "completion_approved"
	EventCompletionCanceled = "completion_canceled"
	EventProductSold        = "product_sold"
)

// Event is a family-scoped notification.
type Event struct {
	Type     string      `json:"type"`
	FamilyID uint        `json:"-"`
	Payload  interface{} `json:"payload"`
}

// Hub maintains the set of active clients and broadcasts family events
type Hub struct {
	mu sync.Mutex

	// Registered clients keyed by the family they subscribed to
	connections map[*websocket.Conn]uint

	// Events to be broadcast to the matching family's clients
	events chan Event

	// Upgrader for HTTP connections to WebSocket
	upgrader websocket.Upgrader
}

// NewHub creates a new hub for managing WebSocket connections
func NewHub() *Hub {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return &Hub{
		connections: make(map[*websocket.Conn]uint),
		events:      make(chan Event, 64),
		upgrader:    upgrader,
	}
}

// Run starts listening for events to broadcast
func (h *Hub) Run() {
	for event := range h.events {
		h.mu.Lock()
		for client, familyID := range h.connections {
			if familyID != event.FamilyID {
				continue
			}
			if err := client.WriteJSON(event); err != nil {
				log.Printf("Error sending event to client: %v", err)
				client.Close()
				delete(h.connections, client)
			}
		}
		h.mu.Unlock()
	}
}

// HandleWebSocket upgrades an HTTP connection and subscribes it to the
// given family's event feed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request, familyID uint) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Error upgrading to WebSocket: %v", err)
		return
	}

	h.mu.Lock()
	h.connections[ws] = familyID
	h.mu.Unlock()

	// Read messages from the client (to keep the connection alive)
	go func() {
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				h.mu.Lock()
				delete(h.connections, ws)
				h.mu.Unlock()
				break
			}
		}
	}()
}

// Publish queues an event for broadcast. Publishing never blocks the caller;
// a nil hub is a no-op so services can run without one in tests.
func (h *Hub) Publish(event Event) {
	if h == nil {
		return
	}
	select {
	case h.events <- event:
	default:
	}
}
