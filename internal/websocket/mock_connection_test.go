package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"

	"startupdash/pkg/contracts/domain"
)

// mockConnection feeds queued frames to ReadMessage and records writes
type mockConnection struct {
	mu      sync.Mutex
	reads   chan []byte
	written chan []byte
	closed  bool
	frames  []int
}

func newMockConnection() *mockConnection {
	return &mockConnection{
		reads:   make(chan []byte, 16),
		written: make(chan []byte, 16),
	}
}

func (m *mockConnection) WriteMessage(messageType int, data []byte) error {
	m.mu.Lock()
	if m.closed && messageType != websocket.CloseMessage {
		m.mu.Unlock()
		return errors.New("connection closed")
	}
	m.frames = append(m.frames, messageType)
	m.mu.Unlock()

	if messageType == websocket.TextMessage {
		m.written <- data
	}
	return nil
}

func (m *mockConnection) ReadMessage() (int, []byte, error) {
	data, ok := <-m.reads
	if !ok {
		return 0, nil, &websocket.CloseError{Code: websocket.CloseNormalClosure}
	}
	return websocket.TextMessage, data, nil
}

func (m *mockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConnection) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConnection) sentFrames() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int(nil), m.frames...)
}

func (m *mockConnection) SetReadDeadline(time.Time) error  { return nil }
func (m *mockConnection) SetWriteDeadline(time.Time) error { return nil }
func (m *mockConnection) SetReadLimit(int64)               {}
func (m *mockConnection) SetPongHandler(func(string) error) {}
func (m *mockConnection) RemoteAddr() string               { return "127.0.0.1:5555" }

// MockDashboardBuilder is a mock for DashboardBuilder
type MockDashboardBuilder struct {
	mock.Mock
}

func (m *MockDashboardBuilder) Controls(ctx context.Context) domain.Controls {
	return m.Called(ctx).Get(0).(domain.Controls)
}

func (m *MockDashboardBuilder) DefaultParams() domain.FilterParams {
	return m.Called().Get(0).(domain.FilterParams)
}

func (m *MockDashboardBuilder) Dashboard(ctx context.Context, params domain.FilterParams) (domain.Dashboard, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(domain.Dashboard), args.Error(1)
}

var defaultParams = domain.FilterParams{YearMin: 2000, YearMax: 2024}

func newMockBuilder() *MockDashboardBuilder {
	b := &MockDashboardBuilder{}
	b.On("Controls", mock.Anything).Return(domain.Controls{
		YearBounds:    domain.YearRange{Min: 1990, Max: 2014},
		DefaultYears:  domain.YearRange{Min: 2000, Max: 2014},
		SectorOptions: []string{"Software", "E-Commerce"},
		TargetCountry: "IND",
	}).Maybe()
	b.On("DefaultParams").Return(defaultParams).Maybe()
	return b
}
