package server

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeTimeout = 10 * time.Second
	sendBuffer   = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// message is pushed to live previews for every applied edit.
type message struct {
	Seq    int    `json:"seq"`
	Ops    int    `json:"ops"`
	Script string `json:"script"`
}

// hub keeps track of the connected live previews.
type hub struct {
	mu      sync.Mutex
	clients map[*client]bool
	metrics *metrics
}

type client struct {
	conn *websocket.Conn
	send chan message
}

func newHub(m *metrics) *hub {
	return &hub{
		clients: make(map[*client]bool),
		metrics: m,
	}
}

// ServeHTTP upgrades the connection and keeps it registered until the preview goes away.
func (h *hub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan message, sendBuffer)}
	h.add(c)
	go c.write()

	// Previews never send anything, reading only detects closed connections.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (c *client) write() {
	defer c.conn.Close()
	for m := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteJSON(m); err != nil {
			log.Printf("failed to push edit %d: %v", m.Seq, err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeTimeout))
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	h.metrics.clients.Set(float64(len(h.clients)))
}

// removeLocked unregisters c. h.mu must be held.
func (h *hub) removeLocked(c *client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.metrics.clients.Set(float64(len(h.clients)))
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// broadcast sends m to all previews. Previews that can't keep up are disconnected.
func (h *hub) broadcast(m message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- m:
		default:
			log.Printf("Dropping slow preview %v", c.conn.RemoteAddr())
			h.removeLocked(c)
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// close disconnects all previews.
func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}
