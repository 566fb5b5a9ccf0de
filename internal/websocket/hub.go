package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"startupdash/internal/infrastructure"
)

// Hub tracks the live sessions and closes them on shutdown
type Hub struct {
	// Registered sessions
	sessions map[*Session]struct{}

	// Register requests from new sessions
	register chan *Session

	// Unregister requests from finished sessions
	unregister chan *Session

	mu sync.RWMutex

	metrics *infrastructure.BusinessMetrics
	logger  *slog.Logger

	totalSessions int64

	quit     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a new Hub. Metrics may be nil.
func NewHub(metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	return &Hub{
		sessions:   make(map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session),
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Run is the hub's main loop. It returns when ctx is done or Stop is
// called, closing every session still registered.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.Stop()
			h.closeAll()
			return

		case <-h.quit:
			h.closeAll()
			return

		case s := <-h.register:
			h.mu.Lock()
			h.sessions[s] = struct{}{}
			h.totalSessions++
			count := len(h.sessions)
			h.mu.Unlock()

			h.addLive(s.ctx, 1)
			h.logger.InfoContext(s.ctx, "Session registered",
				slog.String("session_id", s.id),
				slog.String("remote_addr", s.remoteAddr),
				slog.Int("total_sessions", count))

		case s := <-h.unregister:
			h.mu.Lock()
			_, ok := h.sessions[s]
			delete(h.sessions, s)
			count := len(h.sessions)
			h.mu.Unlock()

			if ok {
				h.addLive(s.ctx, -1)
				h.logger.InfoContext(s.ctx, "Session unregistered",
					slog.String("session_id", s.id),
					slog.Int("total_sessions", count),
					slog.Duration("duration", time.Since(s.connectedAt)))
			}
		}
	}
}

// Register adds a session. After Stop the session is closed instead.
func (h *Hub) Register(s *Session) {
	select {
	case h.register <- s:
	case <-h.quit:
		s.Close()
	}
}

// Unregister removes a session
func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.quit:
	}
}

// SessionCount returns the number of live sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// TotalSessions returns the number of sessions registered since start
func (h *Hub) TotalSessions() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalSessions
}

// Stop stops the hub. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.quit)
	})
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for s := range h.sessions {
		sessions = append(sessions, s)
		delete(h.sessions, s)
	}
	h.mu.Unlock()

	for _, s := range sessions {
		h.addLive(s.ctx, -1)
		s.Close()
	}
	h.logger.Info("Hub shutting down", slog.Int("closed_sessions", len(sessions)))
}

func (h *Hub) addLive(ctx context.Context, n int64) {
	if h.metrics != nil {
		h.metrics.LiveSessions.Add(ctx, n)
	}
}
