package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startupdash/internal/config"
	apierrors "startupdash/internal/errors"
	"startupdash/internal/shared/testutil"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Dataset.Path = testutil.WriteInvestmentsFile(t, testutil.SampleRows()...)
	cfg.Dataset.Encoding = "UTF-8"
	cfg.Observability.TraceExporter = "none"
	cfg.Observability.MetricExporter = "none"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T) (*Application, *httptest.Server) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, testConfig(t), logger)
	require.NoError(t, err)
	go a.WebSocketHub.Run(ctx)

	srv := httptest.NewServer(a.Router)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return a, srv
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestNew_MissingDataset(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := testConfig(t)
	cfg.Dataset.Path = filepath.Join(t.TempDir(), "missing.csv")

	_, err := New(context.Background(), cfg, logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load dataset")
}

func TestApplication_Routes(t *testing.T) {
	a, srv := newTestApp(t)
	assert.Equal(t, 8, a.Dataset.Full.Len())

	tests := []struct {
		name       string
		path       string
		wantStatus int
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "health",
			path:       "/api/health",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
			},
		},
		{
			name:       "ready",
			path:       "/api/health/ready",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ready", body["status"])
				services := body["services"].(map[string]interface{})
				assert.Equal(t, "0 pending artifacts", services["exports"].(map[string]interface{})["message"])
			},
		},
		{
			name:       "controls",
			path:       "/api/dashboard/controls",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				data := body["data"].(map[string]interface{})
				assert.Equal(t, map[string]interface{}{"min": float64(2007), "max": float64(2012)}, data["year_bounds"])
			},
		},
		{
			name:       "dashboard with defaults",
			path:       "/api/dashboard",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.EqualValues(t, 5, body["count"])
			},
		},
		{
			name:       "single view",
			path:       "/api/dashboard/views/top-countries?year_min=2007&year_max=2007",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Len(t, body["data"], 3)
			},
		},
		{
			name:       "unknown view",
			path:       "/api/dashboard/views/pie",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeViewNotFound, body["type"])
			},
		},
		{
			name:       "unknown route",
			path:       "/api/nothing",
			wantStatus: http.StatusNotFound,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeNotFound, body["type"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getJSON(t, srv.URL+tt.path)
			assert.Equal(t, tt.wantStatus, status)
			tt.check(t, body)
		})
	}
}

func TestApplication_Downloads(t *testing.T) {
	_, srv := newTestApp(t)

	resp, err := http.Get(srv.URL + "/api/dashboard/export.csv?year_min=2007&year_max=2008")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="filtered_indian_startups.csv"`, resp.Header.Get("Content-Disposition"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	assert.Len(t, lines, 3)

	chart, err := http.Get(srv.URL + "/api/dashboard/charts/founding-trend.png")
	require.NoError(t, err)
	defer chart.Body.Close()
	assert.Equal(t, "image/png", chart.Header.Get("Content-Type"))
}

func TestApplication_Frontend(t *testing.T) {
	_, srv := newTestApp(t)

	for _, path := range []string{"/", "/assets/app.js", "/assets/style.css"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestApplication_LiveSession(t *testing.T) {
	a, srv := newTestApp(t)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))

	var hello map[string]interface{}
	require.NoError(t, c.ReadJSON(&hello))
	assert.Equal(t, "connection", hello["type"])

	require.NoError(t, c.WriteJSON(map[string]interface{}{"year_min": 2010, "year_max": 2010}))

	var reply map[string]interface{}
	require.NoError(t, c.ReadJSON(&reply))
	assert.Equal(t, "dashboard", reply["type"])
	assert.EqualValues(t, 2, reply["data"].(map[string]interface{})["count"])

	assert.Eventually(t, func() bool { return a.WebSocketHub.SessionCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestApplication_StartStop(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	a, err := New(context.Background(), testConfig(t), logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, a.Start(ctx, cancel))
	require.NoError(t, a.Stop(ctx))
}
