package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"startupdash/internal/shared/testutil"
)

// MockSessionCounter is a mock for SessionCounter
type MockSessionCounter struct {
	mock.Mock
}

func (m *MockSessionCounter) SessionCount() int {
	return m.Called().Int(0)
}

// MockArtifactCounter is a mock for ArtifactCounter
type MockArtifactCounter struct {
	mock.Mock
}

func (m *MockArtifactCounter) PendingArtifacts() int {
	return m.Called().Int(0)
}

func TestHealthService(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	ctx := context.Background()

	t.Run("ready with dataset", func(t *testing.T) {
		sessions := &MockSessionCounter{}
		sessions.On("SessionCount").Return(2)
		artifacts := &MockArtifactCounter{}
		artifacts.On("PendingArtifacts").Return(3)

		hs := NewHealthService("1.2.3", "2026-10-01", sampleDataset(t), sessions, artifacts, logger)

		assert.Equal(t, "ok", hs.HealthCheck(ctx).Status)

		ready := hs.ReadinessCheck(ctx)
		assert.Equal(t, "ready", ready.Status)
		ws, ok := ready.Services["websocket"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "2 live sessions", ws.Message)
		exports, ok := ready.Services["exports"].(ServiceHealth)
		require.True(t, ok)
		assert.Equal(t, "3 pending artifacts", exports.Message)
		sessions.AssertExpectations(t)
		artifacts.AssertExpectations(t)

		live := hs.LivenessCheck(ctx)
		assert.Equal(t, "alive", live.Status)
		assert.Contains(t, live.Runtime, "goroutines")

		v := hs.Version()
		assert.Equal(t, "1.2.3", v["version"])
		assert.Equal(t, "2026-10-01", v["build_time"])
	})

	t.Run("not ready without dataset", func(t *testing.T) {
		hs := NewHealthService("1.2.3", "", nil, nil, nil, logger)

		ready := hs.ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", ready.Status)
		assert.NotContains(t, hs.Version(), "build_time")
	})
}
