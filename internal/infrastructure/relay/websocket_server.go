package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"nowplaying/internal/core/domain"
	"nowplaying/internal/core/ports"
	"nowplaying/pkg/validation"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	// the relay listens for a local chat front end, not browsers
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Config tunes relay connections.
type Config struct {
	PingInterval      time.Duration
	PongTimeout       time.Duration
	WriteTimeout      time.Duration
	MessagesPerSecond float64
	Burst             int
	MaxMessageBytes   int64
}

// WebSocketServer accepts chat front end connections, turns their inbound
// messages into status requests and writes deliveries back on the same socket.
type WebSocketServer struct {
	submitter ports.RequestSubmitter
	metrics   ports.MetricsCollector
	cfg       Config
	now       func() time.Time

	connections map[string]*connection
	mu          sync.RWMutex

	logger *zap.SugaredLogger
}

func NewWebSocketServer(submitter ports.RequestSubmitter, metrics ports.MetricsCollector, cfg Config, logger *zap.SugaredLogger) *WebSocketServer {
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if cfg.PongTimeout <= 0 {
		cfg.PongTimeout = 60 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.MessagesPerSecond <= 0 {
		cfg.MessagesPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	return &WebSocketServer{
		submitter:   submitter,
		metrics:     metrics,
		cfg:         cfg,
		now:         time.Now,
		connections: make(map[string]*connection),
		logger:      logger,
	}
}

// connection is one front end socket. It is the Deliverer for every request
// that arrived on it.
type connection struct {
	id           string
	conn         *websocket.Conn
	writeTimeout time.Duration

	writeMu sync.Mutex
	closed  bool
}

var _ ports.Deliverer = (*connection)(nil)

func (c *connection) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.closed {
		return domain.ErrRelayClosed
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *connection) Deliver(ctx context.Context, recipient domain.RecipientID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.writeJSON(DeliverFrame{
		Type:        FrameDeliver,
		RecipientID: string(recipient),
		Text:        text,
		ParseMode:   parseModeHTML,
	})
	if err != nil && !errors.Is(err, domain.ErrRelayClosed) {
		return fmt.Errorf("writing deliver frame: %w", err)
	}
	return err
}

type inbound struct {
	frame InboundFrame
	err   error
}

func (c *connection) markClosed() {
	c.writeMu.Lock()
	c.closed = true
	c.writeMu.Unlock()
}

func (s *WebSocketServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("websocket upgrade failed", "error", err)
		return
	}
	defer ws.Close()

	c := &connection{
		id:           uuid.NewString(),
		conn:         ws,
		writeTimeout: s.cfg.WriteTimeout,
	}

	s.mu.Lock()
	s.connections[c.id] = c
	s.mu.Unlock()
	s.metrics.RelayConnected()

	s.logger.Infow("relay connected", "connection_id", c.id, "remote_addr", r.RemoteAddr)

	if s.cfg.MaxMessageBytes > 0 {
		ws.SetReadLimit(s.cfg.MaxMessageBytes)
	}
	ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))
		return nil
	})

	pingTicker := time.NewTicker(s.cfg.PingInterval)
	defer pingTicker.Stop()

	limiter := rate.NewLimiter(rate.Limit(s.cfg.MessagesPerSecond), s.cfg.Burst)

	frameChan := make(chan inbound, 10)
	errorChan := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				errorChan <- err
				return
			}
			ws.SetReadDeadline(time.Now().Add(s.cfg.PongTimeout))

			var in inbound
			if err := json.Unmarshal(data, &in.frame); err != nil {
				in.err = fmt.Errorf("malformed frame: %w", err)
			}
			select {
			case frameChan <- in:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case in := <-frameChan:
			if in.err != nil {
				s.sendError(c, in.err.Error(), "")
				continue
			}
			if !limiter.Allow() {
				s.sendError(c, "rate limit exceeded", in.frame.RecipientID)
				continue
			}
			if err := s.handleFrame(c, in.frame); err != nil {
				s.logger.Infow("rejected relay frame", "connection_id", c.id, "error", err)
				s.sendError(c, err.Error(), in.frame.RecipientID)
			}

		case <-pingTicker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.cfg.WriteTimeout)); err != nil {
				s.logger.Infow("error sending ping", "connection_id", c.id, "error", err)
				goto cleanup
			}

		case err := <-errorChan:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Infow("error reading relay frame", "connection_id", c.id, "error", err)
			}
			goto cleanup
		}
	}

cleanup:
	c.markClosed()
	s.mu.Lock()
	delete(s.connections, c.id)
	s.mu.Unlock()
	s.metrics.RelayDisconnected()

	s.logger.Infow("relay disconnected", "connection_id", c.id)
}

func (s *WebSocketServer) handleFrame(c *connection, frame InboundFrame) error {
	if err := validation.ValidateFrameType(frame.Type, FrameStatusRequest); err != nil {
		return err
	}
	if err := validation.ValidateRecipientID(frame.RecipientID); err != nil {
		return err
	}

	req := domain.StatusRequest{
		RequestID:   uuid.NewString(),
		RecipientID: domain.RecipientID(frame.RecipientID),
		RequestedAt: s.now(),
	}
	if frame.RequestedAt != nil && !frame.RequestedAt.IsZero() {
		req.RequestedAt = *frame.RequestedAt
	}

	switch err := s.submitter.Submit(req, c); {
	case errors.Is(err, domain.ErrQueueFull):
		return fmt.Errorf("server busy, try again later")
	case err != nil:
		return err
	}

	s.logger.Debugw("status request queued",
		"connection_id", c.id,
		"request_id", req.RequestID,
		"recipient_id", req.RecipientID,
	)
	return nil
}

func (s *WebSocketServer) sendError(c *connection, message, recipientID string) {
	err := c.writeJSON(ErrorFrame{
		Type:        FrameError,
		Message:     message,
		RecipientID: recipientID,
	})
	if err != nil {
		s.logger.Debugw("failed to send error frame", "connection_id", c.id, "error", err)
	}
}

// ConnectionCount returns the number of open front end connections.
func (s *WebSocketServer) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// Close sends a close frame to every connection. Handlers finish their own cleanup.
func (s *WebSocketServer) Close() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deadline := time.Now().Add(s.cfg.WriteTimeout)
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for _, c := range s.connections {
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, deadline)
	}
}
