package websocket

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	"startupdash/pkg/contracts/domain"
)

// Connection is the subset of a websocket connection a session uses.
// Tests substitute a mock.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(string) error)
	RemoteAddr() string
}

// DashboardBuilder reruns the dashboard for a session
type DashboardBuilder interface {
	Controls(ctx context.Context) domain.Controls
	DefaultParams() domain.FilterParams
	Dashboard(ctx context.Context, params domain.FilterParams) (domain.Dashboard, error)
}

// conn adapts *websocket.Conn to Connection
type conn struct {
	*websocket.Conn
}

func wrap(c *websocket.Conn) Connection {
	return conn{Conn: c}
}

func (c conn) RemoteAddr() string {
	if addr := c.Conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}
