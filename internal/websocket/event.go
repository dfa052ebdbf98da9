// Package websocket provides WebSocket support for live telemetry streaming
package websocket

import (
	"time"

	"github.com/gpuwatch-project/gpuwatch/internal/gpu"
	"github.com/gpuwatch-project/gpuwatch/internal/monitor"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	EventTypeHeartbeat EventType = "heartbeat"
	EventTypeTelemetry EventType = "telemetry"
)

// Event represents a WebSocket event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp int64       `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

// TelemetryFrame is the payload broadcast on every telemetry tick
type TelemetryFrame struct {
	Status  gpu.ServiceStatus `json:"status"`
	GPUs    []gpu.Device      `json:"gpus"`
	Partial bool              `json:"partial,omitempty"`
	Host    monitor.HostInfo  `json:"host"`
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}
}
