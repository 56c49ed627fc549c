// Package broadcast fans mutation events out to the live connections
// subscribed to each wishlist room.
package broadcast

import (
	"log"
	"sync"
)

// Conn is the surface the hub needs from a live connection. The websocket
// handler supplies real connections; tests supply fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the frame delivered to subscribers.
type Event struct {
	Type       string      `json:"type"`
	WishlistID uint        `json:"wishlistId,omitempty"`
	Payload    interface{} `json:"payload,omitempty"`
}

// sendBuffer bounds each connection's outbound queue. A subscriber that
// falls this far behind is dropped rather than allowed to stall publishers.
const sendBuffer = 256

type subscriber struct {
	userID uint // 0 when the connection never authenticated
	rooms  map[uint]bool
	ch     chan Event
}

// Hub owns the wishlist-id to connection-set mapping. One instance is
// constructed at startup and handed to everything that publishes or
// subscribes; there is no package-level state.
//
// Delivery is fire-and-forget: publishing only enqueues onto each
// subscriber's buffered queue, and a per-connection goroutine drains it, so
// a slow subscriber never delays the mutation that triggered the event.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[Conn]bool
	conns map[Conn]*subscriber
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[Conn]bool),
		conns: make(map[Conn]*subscriber),
	}
}

// Register adds a connection to the hub and starts its write loop. It must
// be called before Join.
func (h *Hub) Register(conn Conn, userID uint) {
	sub := &subscriber{
		userID: userID,
		rooms:  make(map[uint]bool),
		ch:     make(chan Event, sendBuffer),
	}

	h.mu.Lock()
	h.conns[conn] = sub
	h.mu.Unlock()

	go h.writeLoop(conn, sub.ch)
}

// writeLoop drains one connection's outbound queue in enqueue order, which
// preserves per-room delivery order. It exits when the subscriber is
// removed from the hub and its queue is closed.
func (h *Hub) writeLoop(conn Conn, ch chan Event) {
	for event := range ch {
		if err := conn.WriteJSON(event); err != nil {
			log.Printf("Failed to deliver %s event, dropping connection: %v", event.Type, err)
			h.Unregister(conn)
			conn.Close()
			return
		}
	}
}

// Unregister removes the connection from every room it joined. Called when
// the underlying connection closes; no explicit leave is required.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(conn)
}

func (h *Hub) removeLocked(conn Conn) {
	sub, exists := h.conns[conn]

	if !exists {
		return
	}

	for wishlistID := range sub.rooms {
		h.leaveLocked(conn, wishlistID)
	}

	delete(h.conns, conn)

	// Ends the write loop. Enqueues hold at least a read lock, so nothing
	// can be sending on the queue here.
	close(sub.ch)
}

func (h *Hub) leaveLocked(conn Conn, wishlistID uint) {
	if clients, exists := h.rooms[wishlistID]; exists {
		delete(clients, conn)

		if len(clients) == 0 {
			delete(h.rooms, wishlistID)
		}
	}

	if sub, exists := h.conns[conn]; exists {
		delete(sub.rooms, wishlistID)
	}
}

// Join subscribes a registered connection to a wishlist room. A connection
// may be in any number of rooms at once.
func (h *Hub) Join(conn Conn, wishlistID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub, exists := h.conns[conn]

	if !exists {
		return
	}

	if h.rooms[wishlistID] == nil {
		h.rooms[wishlistID] = make(map[Conn]bool)
	}

	h.rooms[wishlistID][conn] = true
	sub.rooms[wishlistID] = true
}

// Leave removes the connection from one room.
func (h *Hub) Leave(conn Conn, wishlistID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.leaveLocked(conn, wishlistID)
}

// Kick drops every connection belonging to userID out of the wishlist's
// room. Used when a collaborator is removed so they stop receiving events.
func (h *Hub) Kick(wishlistID uint, userID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.rooms[wishlistID] {
		if sub, exists := h.conns[conn]; exists && sub.userID == userID {
			h.leaveLocked(conn, wishlistID)
		}
	}
}

// Publish enqueues an event for every connection currently in the
// wishlist's room and returns without waiting on delivery.
func (h *Hub) Publish(wishlistID uint, eventName string, payload interface{}) {
	event := Event{Type: eventName, WishlistID: wishlistID, Payload: payload}

	h.mu.RLock()
	var stalled []Conn
	for conn := range h.rooms[wishlistID] {
		if !h.enqueueLocked(conn, event) {
			stalled = append(stalled, conn)
		}
	}
	h.mu.RUnlock()

	h.drop(stalled, event.Type)
}

// PublishGlobal enqueues an event for every registered connection, for
// events with no single-room audience such as wishlist creation.
func (h *Hub) PublishGlobal(eventName string, payload interface{}) {
	event := Event{Type: eventName, Payload: payload}

	h.mu.RLock()
	var stalled []Conn
	for conn := range h.conns {
		if !h.enqueueLocked(conn, event) {
			stalled = append(stalled, conn)
		}
	}
	h.mu.RUnlock()

	h.drop(stalled, event.Type)
}

// enqueueLocked reports whether the event fit in the subscriber's queue.
// Callers hold at least a read lock, which excludes the queue being closed
// underneath the send.
func (h *Hub) enqueueLocked(conn Conn, event Event) bool {
	sub, exists := h.conns[conn]

	if !exists {
		return true
	}

	select {
	case sub.ch <- event:
		return true
	default:
		return false
	}
}

// drop disconnects subscribers whose outbound queue overflowed.
func (h *Hub) drop(conns []Conn, eventType string) {
	for _, conn := range conns {
		log.Printf("Subscriber too slow for %s event, dropping connection", eventType)
		h.Unregister(conn)
		conn.Close()
	}
}
