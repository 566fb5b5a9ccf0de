package websocket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"startupdash/internal/infrastructure"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	sendBuffer = 16
)

// Options tunes the connection handling. Zero fields take defaults.
type Options struct {
	ReadBufferSize  int
	WriteBufferSize int

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period. Must be less than PongWait
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Origins accepted besides the serving host; "*" accepts any
	AllowedOrigins []string
}

func (o Options) withDefaults() Options {
	if o.ReadBufferSize <= 0 {
		o.ReadBufferSize = 1024
	}
	if o.WriteBufferSize <= 0 {
		o.WriteBufferSize = 1024
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = 4096
	}
	return o
}

// errUnknownType answers frames that are neither filters nor heartbeats
var errUnknownType = errors.New("unknown message type")

// Session is one live dashboard connection. Filter frames are answered in
// the order they arrive, one dashboard per frame.
type Session struct {
	hub      *Hub
	conn     Connection
	builder  DashboardBuilder
	validate *validator.Validate
	opts     Options

	// Outbound frames, drained by WritePump
	send chan []byte

	// Closed by Close to stop WritePump
	quit      chan struct{}
	closeOnce sync.Once

	// Closed when WritePump returns
	done chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	id          string
	remoteAddr  string
	connectedAt time.Time
	seq         int64

	logger *slog.Logger
}

// NewSession creates a session over conn. ctx carries the trace id of the
// upgrade request and is cancelled when the session ends.
func NewSession(ctx context.Context, hub *Hub, conn Connection, builder DashboardBuilder, opts Options, logger *slog.Logger) *Session {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	id := uuid.New().String()
	ctx, cancel := context.WithCancel(ctx)

	return &Session{
		hub:         hub,
		conn:        conn,
		builder:     builder,
		validate:    validator.New(),
		opts:        opts.withDefaults(),
		send:        make(chan []byte, sendBuffer),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		id:          id,
		remoteAddr:  conn.RemoteAddr(),
		connectedAt: time.Now(),
		logger: logger.With(
			slog.String("component", "websocket.session"),
			slog.String("session_id", id),
		),
	}
}

// ID returns the session id
func (s *Session) ID() string { return s.id }

// Close asks the session to send a close frame and stop
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
}

// ReadPump reads filter frames until the peer goes away and answers each
// with a dashboard or an error frame.
func (s *Session) ReadPump() {
	defer func() {
		s.logger.InfoContext(s.ctx, "Session closed",
			slog.Duration("duration", time.Since(s.connectedAt)),
			slog.Int64("frames", s.seq))
		s.hub.Unregister(s)
		s.Close()
		s.cancel()
		s.conn.Close()
	}()

	s.conn.SetReadLimit(s.opts.MaxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.opts.PongWait))
	})

	s.reply(newMessage(TypeConnection, 0, map[string]interface{}{
		"session_id": s.id,
		"controls":   s.builder.Controls(s.ctx),
	}))

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.WarnContext(s.ctx, "Unexpected WebSocket close error",
					slog.String("error", err.Error()))
			}
			return
		}

		// Every inbound frame takes a sequence number, answered or not
		s.seq++
		message = bytes.TrimSpace(message)
		if len(message) == 0 {
			continue
		}
		if !s.handle(message) {
			return
		}
	}
}

// handle answers frame s.seq. It reports false once the writer has gone.
func (s *Session) handle(message []byte) bool {
	req := FilterRequest{FilterParams: s.builder.DefaultParams()}
	if err := json.Unmarshal(message, &req); err != nil {
		return s.reply(errorMessage(s.seq, fmt.Errorf("invalid message: %w", err)))
	}

	switch req.Type {
	case TypeHeartbeat:
		s.logger.DebugContext(s.ctx, "Heartbeat received")
		return true
	case "", TypeFilter:
	default:
		return s.reply(errorMessage(s.seq, fmt.Errorf("%w: %q", errUnknownType, req.Type)))
	}

	if err := s.validate.Struct(req.FilterParams); err != nil {
		return s.reply(errorMessage(s.seq, fmt.Errorf("invalid filter: %w", err)))
	}

	d, err := s.builder.Dashboard(s.ctx, req.FilterParams)
	if err != nil {
		infrastructure.WithError(s.logger, err).WarnContext(s.ctx, "Dashboard rerun failed",
			slog.Int64("seq", s.seq))
		return s.reply(errorMessage(s.seq, err))
	}

	s.logger.DebugContext(s.ctx, "Dashboard rerun",
		slog.Int64("seq", s.seq),
		slog.Int("count", d.Count))
	return s.reply(newMessage(TypeDashboard, s.seq, d))
}

// reply queues a frame, blocking while the buffer is full. It reports
// false once the writer has gone.
func (s *Session) reply(m Message) bool {
	m.TraceID = infrastructure.GetTraceID(s.ctx)
	data, err := encode(m)
	if err != nil {
		s.logger.ErrorContext(s.ctx, "Error marshaling message",
			slog.String("type", m.Type),
			slog.String("error", err.Error()))
		data, _ = encode(errorMessage(m.Seq, err))
	}

	select {
	case s.send <- data:
		return true
	case <-s.done:
		return false
	}
}

// WritePump writes queued frames and keeps the connection alive with pings
func (s *Session) WritePump() {
	ticker := time.NewTicker(s.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		close(s.done)
		s.conn.Close()
	}()

	for {
		select {
		case message := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.DebugContext(s.ctx, "Error writing message to WebSocket",
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.logger.DebugContext(s.ctx, "Failed to send ping message",
					slog.String("error", err.Error()))
				return
			}

		case <-s.quit:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
