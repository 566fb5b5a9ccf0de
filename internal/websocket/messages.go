package websocket

import (
	"encoding/json"
	"time"

	"startupdash/pkg/contracts/domain"
)

// Message types
const (
	TypeConnection = "connection"
	TypeFilter     = "filter"
	TypeDashboard  = "dashboard"
	TypeError      = "error"
	TypeHeartbeat  = "heartbeat"
)

// Message is a server to client frame
type Message struct {
	Type      string      `json:"type"`
	Seq       int64       `json:"seq,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp string      `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

// FilterRequest is a client frame asking for a rerun. Omitted fields keep
// the dashboard defaults.
type FilterRequest struct {
	Type string `json:"type,omitempty"`
	domain.FilterParams
}

func newMessage(msgType string, seq int64, data interface{}) Message {
	return Message{
		Type:      msgType,
		Seq:       seq,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

func errorMessage(seq int64, err error) Message {
	m := newMessage(TypeError, seq, nil)
	m.Error = err.Error()
	return m
}

func encode(m Message) ([]byte, error) {
	return json.Marshal(m)
}
