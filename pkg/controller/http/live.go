package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/phenodash/pkg/service/metrics"
)

// LiveEvent is a message pushed to dashboard pages
type LiveEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// LiveEventDatasetChanged tells pages to re-render against the new dataset
const LiveEventDatasetChanged = "dataset_changed"

const (
	liveWriteTimeout = 5 * time.Second
	liveSendBuffer   = 4
)

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// LiveHub keeps the open dashboard pages and notifies them of dataset changes
type LiveHub struct {
	upgrader websocket.Upgrader
	metrics  *metrics.Metrics

	mu      sync.Mutex
	clients map[*liveClient]struct{}
	closed  bool
}

// NewLiveHub creates a new live reload hub
func NewLiveHub(m *metrics.Metrics) *LiveHub {
	return &LiveHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		metrics: m,
		clients: make(map[*liveClient]struct{}),
	}
}

// NotifyDatasetChanged broadcasts a dataset change to every page
func (h *LiveHub) NotifyDatasetChanged() {
	h.Broadcast(LiveEvent{Type: LiveEventDatasetChanged, Timestamp: time.Now().Unix()})
}

// Broadcast sends ev to every client. Slow clients miss messages rather
// than blocking the sender.
func (h *LiveHub) Broadcast(ev LiveEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Clients returns the number of connected pages
func (h *LiveHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and keeps the connection until the page goes away
func (h *LiveHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.From(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("Websocket upgrade failed", "error", err)
		return
	}

	client := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}
	if !h.register(client) {
		conn.Close()
		return
	}
	defer h.unregister(client)

	go h.writeLoop(r.Context(), client)

	// Pages never send anything; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *LiveHub) writeLoop(ctx context.Context, c *liveClient) {
	for data := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			ctxlog.From(ctx).Debug("Websocket write failed", "error", err)
			return
		}
	}
}

func (h *LiveHub) register(c *liveClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.SetClients(len(h.clients))
	return true
}

func (h *LiveHub) unregister(c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	c.conn.Close()
	h.metrics.SetClients(len(h.clients))
}

// Close disconnects every page
func (h *LiveHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
		c.conn.Close()
	}
	h.metrics.SetClients(0)
}
