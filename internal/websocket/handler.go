package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"startupdash/internal/infrastructure"
)

// Handler upgrades /ws requests into live dashboard sessions
type Handler struct {
	hub      *Hub
	builder  DashboardBuilder
	opts     Options
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates the upgrade handler. Same-host origins are always
// accepted.
func NewHandler(hub *Hub, builder DashboardBuilder, opts Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Handler{
		hub:     hub,
		builder: builder,
		opts:    opts.withDefaults(),
		logger:  logger.With(slog.String("component", "websocket.handler")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  h.opts.ReadBufferSize,
		WriteBufferSize: h.opts.WriteBufferSize,
		CheckOrigin:     h.checkOrigin,
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "WebSocket upgrade error",
				slog.Int("status", status),
				slog.String("reason", reason.Error()),
				slog.String("origin", r.Header.Get("Origin")))
			http.Error(w, http.StatusText(status), status)
		},
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	if id := r.Header.Get("X-Request-ID"); id != "" {
		ctx = infrastructure.WithTraceID(ctx, id)
	}
	ctx = infrastructure.EnsureTraceID(ctx)

	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrader.Error already answered
		return
	}

	s := NewSession(ctx, h.hub, wrap(c), h.builder, h.opts, h.logger)
	h.hub.Register(s)

	h.logger.InfoContext(ctx, "WebSocket client connected",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("session_id", s.ID()))

	go h.pump(ctx, "write", s.WritePump)
	go h.pump(ctx, "read", s.ReadPump)
}

func (h *Handler) pump(ctx context.Context, name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.ErrorContext(ctx, "WebSocket pump panic",
				slog.String("pump", name),
				slog.Any("panic", rec))
		}
	}()
	fn()
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}

	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	h.logger.WarnContext(r.Context(), "WebSocket origin not allowed",
		slog.String("origin", origin),
		slog.Any("allowed_origins", h.opts.AllowedOrigins))
	return false
}
