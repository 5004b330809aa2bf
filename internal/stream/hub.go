// Package stream pushes simulation snapshots to websocket clients.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/gravsim/internal/dynamo"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
)

type BodyFrame struct {
	Name string  `json:"name"`
	Mass float64 `json:"mass"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	VX   float64 `json:"vx"`
	VY   float64 `json:"vy"`
	AX   float64 `json:"ax"`
	AY   float64 `json:"ay"`
}

// Frame is the JSON message sent for every broadcast snapshot.
type Frame struct {
	Step   int         `json:"step"`
	Time   float64     `json:"time"`
	Bodies []BodyFrame `json:"bodies"`
}

func NewFrame(s dynamo.Snapshot) Frame {
	f := Frame{Step: s.Step, Time: s.Time, Bodies: make([]BodyFrame, len(s.Bodies))}
	for i, b := range s.Bodies {
		f.Bodies[i] = BodyFrame{Name: b.Name, Mass: b.Mass, X: b.Pos.X, Y: b.Pos.Y, VX: b.Vel.X, VY: b.Vel.Y, AX: b.Acc.X, AY: b.Acc.Y}
	}
	return f
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub fans snapshots out to every connected client. It implements
// dynamo.Observer so it can be attached to a running simulation. Clients
// that fall behind lose frames rather than stall the sender.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	logger   *log.Logger
	upgrader websocket.Upgrader
	closed   bool

	Every int
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		Every: 1,
	}
}

func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
			return
		}

		c := &client{conn: conn, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
		if !h.register(c) {
			conn.Close()
			return
		}
		h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", h.Clients())

		go h.writePump(c)
		h.readPump(c)
	})
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump only services control frames; clients never send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		h.logger.Info("client disconnected", "clients", h.Clients())
	}()

	c.conn.SetReadLimit(1 << 10)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		close(c.done)
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) OnStep(s dynamo.Snapshot) {
	if h.Every > 1 && s.Step%h.Every != 0 {
		return
	}
	h.Send(NewFrame(s))
}

// Send encodes v once and queues it for every client.
func (h *Hub) Send(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("encode frame", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("dropping frame for slow client")
		}
	}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WaitForClients blocks until at least n clients are connected.
func (h *Hub) WaitForClients(ctx context.Context, n int) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for h.Clients() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close disconnects every client and refuses new ones. Frames already
// queued are still written before each connection closes.
func (h *Hub) Close() {
	h.closeAll()
}

// Shutdown closes the hub and waits until every client has been sent its
// queued frames and a close message, or ctx is done.
func (h *Hub) Shutdown(ctx context.Context) error {
	for _, done := range h.closeAll() {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (h *Hub) closeAll() []chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	dones := make([]chan struct{}, 0, len(h.clients))
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		dones = append(dones, c.done)
	}
	return dones
}
