// Package feed streams controller snapshots to display clients over
// websockets. The feed is read-only: anything a client sends is discarded.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/anggasct/junction"
	"github.com/anggasct/junction/pkg/logging"
)

// Event types carried in an Envelope
const (
	EventSnapshot = "snapshot"
)

// DefaultInterval is how often snapshots are pushed to clients
const DefaultInterval = 100 * time.Millisecond

const (
	sendBuffer   = 128
	writeTimeout = 5 * time.Second
)

// Envelope is the frame written to every client
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SnapshotSource is the read side of a controller
type SnapshotSource interface {
	Snapshot() junction.Snapshot
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub polls a SnapshotSource and fans each frame out to connected clients
type Hub struct {
	source   SnapshotSource
	interval time.Duration
	logger   logr.Logger
	upgrader websocket.Upgrader

	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	done       chan struct{}
	running    atomic.Bool
	count      atomic.Int64
}

// Option configures a Hub
type Option func(*Hub)

// WithInterval sets the polling cadence
func WithInterval(interval time.Duration) Option {
	return func(h *Hub) {
		if interval > 0 {
			h.interval = interval
		}
	}
}

// WithLogger sets the hub logger
func WithLogger(logger logr.Logger) Option {
	return func(h *Hub) {
		h.logger = logger
	}
}

// NewHub creates a hub reading from source
func NewHub(source SnapshotSource, options ...Option) *Hub {
	h := &Hub{
		source:     source,
		interval:   DefaultInterval,
		logger:     logr.Discard(),
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:    map[*client]bool{},
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
	for _, option := range options {
		option(h)
	}
	h.logger = h.logger.WithName("feed")
	return h
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Running reports whether Run has been started
func (h *Hub) Running() bool {
	return h.running.Load()
}

// Run serves the hub until ctx is cancelled. Every connected client is
// closed on return. A hub runs once.
func (h *Hub) Run(ctx context.Context) error {
	if !h.running.CompareAndSwap(false, true) {
		return errors.New("feed hub already started")
	}
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return ctx.Err()
		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.logger.V(logging.VERBOSE).Info("Client connected", "client", c.id, "clients", len(h.clients))
		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.V(logging.VERBOSE).Info("Client disconnected", "client", c.id, "clients", len(h.clients))
			}
		case <-ticker.C:
			if len(h.clients) == 0 {
				continue
			}
			frame, err := h.frame()
			if err != nil {
				h.logger.Error(err, "Failed to encode snapshot")
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					h.logger.Info("Dropping slow client", "client", c.id)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

func (h *Hub) frame() ([]byte, error) {
	payload, err := json.Marshal(h.source.Snapshot())
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: EventSnapshot, Payload: payload})
}

// ServeHTTP upgrades the request to a websocket and subscribes it. The
// current snapshot is sent right away so displays never start blank.
// Requests are refused with 503 until Run has been started.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.running.Load() {
		http.Error(w, "feed is not running", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.V(logging.DEBUG).Info("Upgrade failed", "error", err.Error())
		return
	}

	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, sendBuffer)}
	if frame, err := h.frame(); err == nil {
		c.send <- frame
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writer()
	go c.reader(h)
}

func (c *client) reader(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
