package ws

import (
	"log"
	"net/http"
	"sync"

	"tableside/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// NotifyHub fans lifecycle events out to connected staff clients. It
// implements services.Publisher; delivery is best-effort and a dead client
// never blocks a transition.
type NotifyHub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan services.Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	mu         sync.Mutex
}

func NewNotifyHub() *NotifyHub {
	return &NotifyHub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan services.Event, 64),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
	}
}

// Run owns the client set; call it once in a goroutine.
func (h *NotifyHub) Run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if h.clients[conn] {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case e := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients {
				if err := conn.WriteJSON(e); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish queues the event for broadcast. A full queue drops the event
// rather than stalling the caller.
func (h *NotifyHub) Publish(e services.Event) error {
	select {
	case h.broadcast <- e:
	default:
		log.Println("notify hub: broadcast queue full, event dropped")
	}
	return nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true }, // dev only
}

// Handle upgrades an authenticated staff connection and parks it until the
// client goes away.
func (h *NotifyHub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Println("ws upgrade failed:", err)
		return
	}
	h.register <- conn

	go func() {
		defer func() { h.unregister <- conn }()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
