package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/monitor"
)

func newTestManager(t *testing.T) (*Manager, string, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	provider := gpu.NewMockProvider(1, 42, "", nil)
	m := NewManager(provider, monitor.NewHostMonitor(), 100*time.Millisecond)
	m.Start()

	router := gin.New()
	router.GET("/ws", m.HandleConnection)
	srv := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	cleanup := func() {
		m.Stop()
		srv.Close()
	}
	return m, url, cleanup
}

func TestManagerSendsTelemetryFrames(t *testing.T) {
	_, url, cleanup := newTestManager(t)
	defer cleanup()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The first frame arrives immediately on connect
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventTypeTelemetry, event.Type)
	assert.NotZero(t, event.Timestamp)

	frame, ok := event.Data.(map[string]interface{})
	require.True(t, ok)

	status := frame["status"].(map[string]interface{})
	assert.Equal(t, "Mock", status["backend_active"])
	assert.Equal(t, float64(1), status["device_count"])

	gpus := frame["gpus"].([]interface{})
	assert.Len(t, gpus, 1)
	assert.Contains(t, frame, "host")

	// A periodic frame follows within the broadcast interval
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err = conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, EventTypeTelemetry, event.Type)
}

func TestManagerClientCount(t *testing.T) {
	m, url, cleanup := newTestManager(t)
	defer cleanup()

	assert.Equal(t, 0, m.ClientCount())

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return m.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool {
		return m.ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManagerStopClosesClients(t *testing.T) {
	m, url, cleanup := newTestManager(t)
	defer cleanup()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Eventually(t, func() bool {
		return m.ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	m.Stop()
	assert.Equal(t, 0, m.ClientCount())
}
