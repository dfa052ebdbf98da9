// Package gpu provides the device-data abstraction layer for gpuwatch.
// A single Provider interface is implemented by a hardware (NVML) backend
// and a deterministic mock backend; the selector picks one at bootstrap
// and the choice is fixed for process lifetime.
package gpu

// Provider is the uniform read interface over GPU device data.
// Implementations hold no mutable shared state after construction, so
// concurrent reads require no locking.
type Provider interface {
	// ListDevices returns one snapshot per currently visible device,
	// ordered by ascending id. Devices whose query fails are omitted;
	// the second return value reports whether any were omitted.
	ListDevices() ([]Device, bool)

	// GetDevice returns a full snapshot of one device.
	// Fails with ErrNotFound for ids outside [0, device count).
	GetDevice(id int) (Device, error)

	// GetMemory returns memory counters for one device.
	// Fails with ErrNotFound for bad ids and ErrQueryFailed when the
	// underlying read errors.
	GetMemory(id int) (MemoryInfo, error)

	// GetUtilization returns utilization rates for one device, with
	// the same failure modes as GetMemory.
	GetUtilization(id int) (UtilizationInfo, error)

	// Status never fails and always returns a value, even when the
	// backend is degraded.
	Status() ServiceStatus
}

// Logger is the logging interface used by backends. It avoids a direct
// dependency on internal/logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// noopLogger is a no-op implementation of Logger.
type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Warnf(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}
