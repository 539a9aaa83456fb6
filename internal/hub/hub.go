// Package hub fans scan results out to websocket consumers. Slow or dead
// clients are dropped; a broadcast never blocks the detectors.
package hub

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"triarb/internal/detector"
	"triarb/internal/infra/metrics"
)

const (
	writeWait      = 5 * time.Second
	sendBuffer     = 8
	maxMessageSize = 512 // clients only send pings and close frames
)

type client struct {
	conn *websocket.Conn
	send chan detector.Result
}

// Hub implements detector.Sink. One Publish delivers the result to every
// connected client.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

func New(logger zerolog.Logger) *Hub {
	return &Hub{
		log: logger.With().Str("component", "hub").Logger(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Same-host dashboards only; the admin gate fronts this handler.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: map[*client]struct{}{},
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug().Err(err).Msg("upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan detector.Result, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Set(float64(n))
	h.log.Debug().Str("remote", conn.RemoteAddr().String()).Int("clients", n).Msg("client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Publish queues the result to every client. A client with a full send
// buffer is dropped rather than allowed to stall the tick.
func (h *Hub) Publish(res detector.Result) {
	h.mu.Lock()
	var dead []*client
	for c := range h.clients {
		select {
		case c.send <- res:
		default:
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		delete(h.clients, c)
		close(c.send)
		metrics.WSBroadcastDropsTotal.Inc()
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Set(float64(n))
}

// Clients reports the current fan-out size.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()
	for res := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(res); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "slow consumer"),
		time.Now().Add(writeWait))
}

// readLoop drains control frames and detects disconnects.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSClients.Set(float64(n))
	_ = c.conn.Close()
}
