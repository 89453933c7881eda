package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxInboundMessageSize = 512
	closeGracePeriod      = time.Second
)

// HubConfig controls per-session buffering and keepalive.
type HubConfig struct {
	// SendBuffer is the number of frames queued per session before new
	// frames are dropped for that session.
	SendBuffer   int
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Hub tracks live websocket sessions per user and fans messages out to them.
type Hub struct {
	cfg      HubConfig
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*session]struct{}
	closed   bool
}

var _ Notifier = (*Hub)(nil)

type session struct {
	ownerID uuid.UUID
	conn    *websocket.Conn
	send    chan []byte
}

// NewHub creates a Hub. Zero values in cfg fall back to small defaults.
func NewHub(cfg HubConfig, logger *slog.Logger) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 16
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		cfg: cfg,
		log: logger.With("component", "realtime_hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[uuid.UUID]map[*session]struct{}),
	}
}

// SendNotification implements Notifier.
func (h *Hub) SendNotification(ctx context.Context, ownerID uuid.UUID, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(Frame{
		Type:    MessageTypeNotification,
		Message: message,
		SentAt:  time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification frame: %w", err)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrHubClosed
	}

	dropped := 0
	for s := range h.sessions[ownerID] {
		select {
		case s.send <- payload:
		default:
			dropped++
		}
	}

	if dropped > 0 {
		return fmt.Errorf("%w: %d of %d sessions for user %s",
			ErrSessionBackpressure, dropped, len(h.sessions[ownerID]), ownerID)
	}
	return nil
}

// Sessions returns the number of live sessions for ownerID.
func (h *Hub) Sessions(ownerID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[ownerID])
}

// ServeWS upgrades the request to a websocket session for ownerID and blocks
// until the client disconnects or the hub is closed. On upgrade failure the
// upgrader has already written an HTTP error response.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	s := &session{
		ownerID: ownerID,
		conn:    conn,
		send:    make(chan []byte, h.cfg.SendBuffer),
	}
	if !h.register(s) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(closeGracePeriod))
		_ = conn.Close()
		return ErrHubClosed
	}

	log := h.log.With(slog.String("owner_id", ownerID.String()))
	log.Debug("websocket session opened")

	go h.writePump(s)
	h.readPump(s)

	log.Debug("websocket session closed")
	return nil
}

// Close disconnects every session and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	for ownerID, set := range h.sessions {
		for s := range set {
			close(s.send)
		}
		delete(h.sessions, ownerID)
	}
}

func (h *Hub) register(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	set, ok := h.sessions[s.ownerID]
	if !ok {
		set = make(map[*session]struct{})
		h.sessions[s.ownerID] = set
	}
	set[s] = struct{}{}
	return true
}

func (h *Hub) unregister(s *session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[s.ownerID]
	if !ok {
		return
	}
	if _, ok := set[s]; !ok {
		return
	}
	delete(set, s)
	close(s.send)
	if len(set) == 0 {
		delete(h.sessions, s.ownerID)
	}
}

// readPump discards inbound frames and keeps the read deadline moving on
// pongs. It returns when the connection fails or is closed.
func (h *Hub) readPump(s *session) {
	defer func() {
		h.unregister(s)
		_ = s.conn.Close()
	}()

	pongWait := h.cfg.PingInterval * 2
	s.conn.SetReadLimit(maxInboundMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("websocket read failed",
					slog.String("owner_id", s.ownerID.String()),
					slog.String("error", err.Error()))
			}
			return
		}
	}
}

// writePump owns all writes to the connection.
func (h *Hub) writePump(s *session) {
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
