package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/logger"
	"github.com/gpuwatch-project/gpuwatch/internal/monitor"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// upgrader handles upgrading HTTP to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connection represents a connected WebSocket client
type Connection struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

// Manager manages WebSocket connections and broadcasts telemetry frames
// at a fixed interval
type Manager struct {
	provider gpu.Provider
	hostMon  *monitor.HostMonitor
	interval time.Duration

	connections map[string]*Connection
	counter     int

	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new WebSocket manager
func NewManager(provider gpu.Provider, hostMon *monitor.HostMonitor, interval time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		provider:    provider,
		hostMon:     hostMon,
		interval:    interval,
		connections: make(map[string]*Connection),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the broadcast loops
func (m *Manager) Start() {
	m.wg.Add(2)
	go m.telemetryLoop()
	go m.heartbeatLoop()

	logger.Info("WebSocket manager started")
}

// Stop closes all connections and stops the broadcast loops
func (m *Manager) Stop() {
	m.cancel()

	m.mu.Lock()
	for _, conn := range m.connections {
		close(conn.send)
	}
	m.connections = make(map[string]*Connection)
	m.mu.Unlock()

	m.wg.Wait()
	logger.Info("WebSocket manager stopped")
}

// ClientCount returns the number of connected clients
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// telemetryLoop broadcasts a telemetry frame every interval
func (m *Manager) telemetryLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if m.ClientCount() == 0 {
				continue
			}
			m.broadcast(NewEvent(EventTypeTelemetry, m.frame()))
		}
	}
}

// heartbeatLoop sends periodic heartbeat events
func (m *Manager) heartbeatLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.broadcast(NewEvent(EventTypeHeartbeat, nil))
		}
	}
}

// frame assembles a fresh telemetry frame
func (m *Manager) frame() TelemetryFrame {
	devices, partial := m.provider.ListDevices()
	return TelemetryFrame{
		Status:  m.provider.Status(),
		GPUs:    devices,
		Partial: partial,
		Host:    m.hostMon.Snapshot(),
	}
}

// broadcast sends an event to all connected clients. Clients with a full
// send buffer are dropped.
func (m *Manager) broadcast(event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.WithError(err).Error("failed to marshal websocket event")
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, conn := range m.connections {
		select {
		case conn.send <- data:
		default:
			close(conn.send)
			delete(m.connections, id)
			logger.WithField("client", id).Warn("dropping slow websocket client")
		}
	}
}

// HandleConnection upgrades an HTTP request and serves the client until
// it disconnects
func (m *Manager) HandleConnection(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	m.mu.Lock()
	m.counter++
	conn := &Connection{
		ID:   fmt.Sprintf("client-%d", m.counter),
		conn: ws,
		send: make(chan []byte, sendBufferSize),
	}
	m.connections[conn.ID] = conn
	m.mu.Unlock()

	logger.WithField("client", conn.ID).Info("websocket client connected")

	// Send an immediate frame so clients don't wait a full interval.
	// The lock guards against Stop closing the channel concurrently.
	if data, err := json.Marshal(NewEvent(EventTypeTelemetry, m.frame())); err == nil {
		m.mu.Lock()
		if _, ok := m.connections[conn.ID]; ok {
			select {
			case conn.send <- data:
			default:
			}
		}
		m.mu.Unlock()
	}

	go conn.writePump()
	conn.readPump(m)
}

// unregister removes a connection after its read pump exits
func (m *Manager) unregister(conn *Connection) {
	m.mu.Lock()
	if _, ok := m.connections[conn.ID]; ok {
		delete(m.connections, conn.ID)
		close(conn.send)
	}
	m.mu.Unlock()

	logger.WithField("client", conn.ID).Info("websocket client disconnected")
}

// writePump pumps events from the send channel to the connection
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards inbound messages and unregisters on disconnect
func (c *Connection) readPump(m *Manager) {
	defer func() {
		m.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
