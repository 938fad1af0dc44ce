// Package broadcast streams each analysis cycle's picks to WebSocket clients.
package broadcast

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/smart-picks/internal/metrics"
	"github.com/yourusername/smart-picks/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 16
)

// PicksMessage is the payload pushed to clients after every cycle
type PicksMessage struct {
	Type        string               `json:"type"`
	Market      models.Market        `json:"market"`
	CycleID     uuid.UUID            `json:"cycle_id"`
	PublishedAt time.Time            `json:"published_at"`
	Picks       []*models.PickRecord `json:"picks"`
}

type client struct {
	conn   *websocket.Conn
	send   chan []byte
	market models.Market // empty subscribes to every market
}

// Hub fans pick updates out to connected WebSocket clients
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Entry

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates an empty hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger.WithField("component", "broadcast"),
		clients: make(map[*client]struct{}),
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket. An optional ?market= query
// restricts the stream to one market.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var market models.Market
	if q := r.URL.Query().Get("market"); q != "" {
		m, err := models.ParseMarket(q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		market = m
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBufferSize), market: market}
	if !h.register(c) {
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// PublishPicks sends a cycle's picks to every subscribed client. Slow clients
// whose buffers are full are dropped.
func (h *Hub) PublishPicks(market models.Market, cycleID uuid.UUID, picks []*models.PickRecord) {
	if picks == nil {
		picks = []*models.PickRecord{}
	}
	payload, err := json.Marshal(PicksMessage{
		Type:        "picks",
		Market:      market,
		CycleID:     cycleID,
		PublishedAt: time.Now().UTC(),
		Picks:       picks,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode picks message")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if c.market != "" && c.market != market {
			continue
		}
		select {
		case c.send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WithField("remote", c.conn.RemoteAddr().String()).Warn("Dropping slow client")
		h.unregister(c)
	}
}

// Close disconnects every client and rejects new ones
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	clients := h.clients
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for c := range clients {
		close(c.send)
	}
	metrics.UpdateWebSocketClients(0)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateWebSocketClients(len(h.clients))
	h.logger.WithFields(logrus.Fields{
		"remote": c.conn.RemoteAddr().String(),
		"market": c.market,
	}).Debug("Client connected")
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	metrics.UpdateWebSocketClients(len(h.clients))
}

// readPump discards client messages and keeps the read deadline fresh from pongs.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.WithError(err).Debug("Client read error")
			}
			return
		}
	}
}

// writePump is the only goroutine writing to the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
