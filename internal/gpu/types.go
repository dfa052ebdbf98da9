package gpu

// MemoryInfo contains GPU memory counters in bytes.
// Invariant: Used + Free == Total.
type MemoryInfo struct {
	Total uint64 `json:"total"`
	Free  uint64 `json:"free"`
	Used  uint64 `json:"used"`
}

// UtilizationInfo contains GPU utilization percentages in [0,100]
type UtilizationInfo struct {
	GPU    uint32 `json:"gpu"`
	Memory uint32 `json:"memory"`
}

// Device is a point-in-time snapshot of a single GPU.
// Snapshots are recomputed on every read and never cached.
type Device struct {
	ID               int             `json:"id"`
	Name             string          `json:"name"`
	UUID             string          `json:"uuid"`
	Memory           MemoryInfo      `json:"memory"`
	Utilization      UtilizationInfo `json:"utilization"`
	PowerUsage       float64         `json:"power_usage"` // watts
	PowerLimit       float64         `json:"power_limit"` // watts
	Temperature      int             `json:"temperature"` // celsius
	FanSpeed         int             `json:"fan_speed"`   // percent, 0 when passively cooled
	PerformanceState string          `json:"performance_state"`
	ComputeMode      string          `json:"compute_mode"`
	PersistenceMode  bool            `json:"persistence_mode"`
}

// BackendKind identifies which backend serves device data
type BackendKind string

const (
	BackendHardware BackendKind = "Hardware"
	BackendMock     BackendKind = "Mock"
)

// ServiceStatus reports which backend is active and how many devices
// are visible. InitError is set only when hardware initialization failed
// and the service fell back to the mock backend.
type ServiceStatus struct {
	BackendActive BackendKind `json:"backend_active"`
	DeviceCount   int         `json:"device_count"`
	InitError     string      `json:"init_error,omitempty"`
}

// DeviceList is the payload for a full device listing. Partial is set
// when at least one visible device was omitted because its query failed.
type DeviceList struct {
	Count   int      `json:"count"`
	GPUs    []Device `json:"gpus"`
	Partial bool     `json:"partial,omitempty"`
}
