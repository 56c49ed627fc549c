package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yashs79/wishlist-app/internal/access"
	"github.com/yashs79/wishlist-app/internal/auth"
	"github.com/yashs79/wishlist-app/internal/broadcast"
	"github.com/yashs79/wishlist-app/internal/middleware"
	"github.com/yashs79/wishlist-app/internal/types"
	"gorm.io/gorm"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// clientMessage is what clients send over the socket: room management only,
// all mutations go over HTTP.
type clientMessage struct {
	Type       string `json:"type"`
	WishlistID uint   `json:"wishlistId"`
}

// wsConn adapts a gorilla connection to broadcast.Conn. The mutex
// serializes writes between the hub, the ping ticker and the read loop.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

type WebSocketHandler struct {
	hub *broadcast.Hub
}

func NewWebSocketHandler(hub *broadcast.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) Handle(ctx *gin.Context) {
	// Connection-level auth: same bearer credential as the HTTP surface. A
	// missing credential still gets a connection (public rooms stay
	// joinable); an invalid one is refused outright.
	var userID uint

	if tokenString := middleware.ExtractToken(ctx.Request); tokenString != "" {
		id, err := auth.UserIDFromToken(tokenString)

		if err != nil {
			respondError(ctx, http.StatusUnauthorized, CodeUnauthenticated, "Invalid or expired token")
			return
		}

		userID = id
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range types.AllowedOrigins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := &wsConn{conn: conn}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Printf("Failed to set initial read deadline: %v", err)
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			log.Printf("Failed to set read deadline in pong handler: %v", err)
		}
		return nil
	})

	h.hub.Register(client, userID)

	// Subscriptions die with the connection.
	defer func() {
		h.hub.Unregister(client)
		conn.Close()
	}()

	if err := client.WriteJSON(broadcast.Event{Type: "connected"}); err != nil {
		log.Printf("Failed to send welcome message: %v", err)
		return
	}

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := client.ping(); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}

		var msg clientMessage

		if err := json.Unmarshal(message, &msg); err != nil {
			h.sendError(client, "Malformed message")
			continue
		}

		switch msg.Type {
		case "join-wishlist":
			h.join(client, userID, msg.WishlistID)
		case "leave-wishlist":
			h.hub.Leave(client, msg.WishlistID)
		default:
			h.sendError(client, "Unknown message type")
		}
	}
}

// join re-validates room access against current membership before
// subscribing, so a revoked collaborator cannot slip back in.
func (h *WebSocketHandler) join(client *wsConn, userID uint, wishlistID uint) {
	wishlist, err := loadWishlist(wishlistID)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.sendError(client, "Wishlist not found")
		} else {
			log.Printf("Failed to load wishlist %d for subscription: %v", wishlistID, err)
			h.sendError(client, "Failed to join wishlist")
		}
		return
	}

	if !access.CanRead(wishlist, userID) {
		h.sendError(client, "Access denied")
		return
	}

	h.hub.Join(client, wishlistID)
}

func (h *WebSocketHandler) sendError(client *wsConn, message string) {
	if err := client.WriteJSON(broadcast.Event{Type: "error", Payload: gin.H{"message": message}}); err != nil {
		log.Printf("Failed to send error frame: %v", err)
	}
}
