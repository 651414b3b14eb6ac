// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/movement_detection/internal/motion"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// StreamController starts a session when the stream gets its first listener
// and stops it when the last one leaves.
type StreamController interface {
	AttachStream(motion.StreamSink) error
	DetachStream()
}

// StreamHub fans the status stream out to websocket clients.
type StreamHub struct {
	ctrl   StreamController
	logger *slog.Logger

	// attachMu serialises attach/detach decisions; it is never held while mu
	// is wanted by the detector.
	attachMu sync.Mutex
	mu       sync.Mutex
	clients  map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewStreamHub creates a hub driving ctrl.
func NewStreamHub(ctrl StreamController, logger *slog.Logger) *StreamHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamHub{ctrl: ctrl, logger: logger, clients: make(map[*streamClient]struct{})}
}

// ServeHTTP upgrades the connection and streams records until the client
// goes away.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("stream: websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	c := &streamClient{conn: conn, send: make(chan []byte, 64)}
	h.add(c)
	defer h.remove(c)

	go c.writeLoop()

	// Clients do not send anything; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("stream: websocket error", "err", err)
			}
			return
		}
	}
}

func (c *streamClient) writeLoop() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (h *StreamHub) add(c *streamClient) {
	h.attachMu.Lock()
	defer h.attachMu.Unlock()

	h.mu.Lock()
	h.clients[c] = struct{}{}
	first := len(h.clients) == 1
	h.mu.Unlock()

	if first {
		if err := h.ctrl.AttachStream(h); err != nil {
			h.logger.Error("stream: start detection failed", "err", err)
		}
	}
}

func (h *StreamHub) remove(c *streamClient) {
	h.attachMu.Lock()
	defer h.attachMu.Unlock()

	h.mu.Lock()
	delete(h.clients, c)
	close(c.send)
	last := len(h.clients) == 0
	h.mu.Unlock()

	if last {
		h.ctrl.DetachStream()
	}
}

// Clients returns the number of connected clients.
func (h *StreamHub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// SendStatus queues st for every client. Slow clients drop records.
func (h *StreamHub) SendStatus(st motion.MotionStatus) {
	h.broadcast(st)
}

// SendError queues an error record for every client.
func (h *StreamHub) SendError(err error) {
	h.broadcast(errorRecord{Error: err.Error()})
}

func (h *StreamHub) broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("stream: marshal error", "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Debug("stream: client too slow, record dropped")
		}
	}
}
