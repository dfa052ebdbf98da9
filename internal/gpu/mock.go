package gpu

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// mockProvider implements Provider with simulated devices. Static device
// identities are derived from the configured seed at construction, so the
// same config always yields the same names and UUIDs. Dynamic readings
// are pure functions of the wall clock, bounded to plausible operating
// ranges, so concurrent reads need no locking and tests can assert ranges.
type mockProvider struct {
	log       Logger
	seed      int64
	initError string
	devices   []mockDevice
}

// mockDevice holds the fixed identity of one simulated device
type mockDevice struct {
	name        string
	uuid        string
	memoryTotal uint64
	powerLimit  float64
}

const mockMemoryTotal = 16 * 1024 * 1024 * 1024 // 16 GiB

// NewMockProvider creates a provider with count simulated devices.
// initError carries the reason hardware initialization failed; it is
// propagated by the selector, not generated here.
func NewMockProvider(count int, seed int64, initError string, log Logger) Provider {
	if log == nil {
		log = noopLogger{}
	}
	if count < 1 {
		count = 1
	}

	devices := make([]mockDevice, count)
	for i := range devices {
		id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("gpuwatch-mock-%d-%d", seed, i)))
		devices[i] = mockDevice{
			name:        fmt.Sprintf("GPUWatch Simulated GPU %d", i),
			uuid:        "GPU-" + id.String(),
			memoryTotal: mockMemoryTotal,
			powerLimit:  250.0,
		}
	}

	return &mockProvider{
		log:       log,
		seed:      seed,
		initError: initError,
		devices:   devices,
	}
}

// tick folds the current time, seed, and device id into a non-negative
// value that drives all simulated readings
func (p *mockProvider) tick(id int) int64 {
	t := time.Now().Unix() + p.seed + int64(id)*37
	if t < 0 {
		t = -t
	}
	return t
}

// snapshot computes a fresh reading for one device. Caller has already
// bound-checked id.
func (p *mockProvider) snapshot(id int) Device {
	d := p.devices[id]
	t := p.tick(id)

	usedPercent := 30 + t%40 // 30..69
	used := d.memoryTotal / 100 * uint64(usedPercent)
	gpuUtil := uint32((t * 13) % 101) // 0..100

	perfState := "P8"
	switch {
	case gpuUtil > 75:
		perfState = "P0"
	case gpuUtil > 30:
		perfState = "P2"
	}

	return Device{
		ID:   id,
		Name: d.name,
		UUID: d.uuid,
		Memory: MemoryInfo{
			Total: d.memoryTotal,
			Free:  d.memoryTotal - used,
			Used:  used,
		},
		Utilization: UtilizationInfo{
			GPU:    gpuUtil,
			Memory: uint32(usedPercent),
		},
		PowerUsage:       60 + float64((t*7)%180), // 60..239, below the 250 W limit
		PowerLimit:       d.powerLimit,
		Temperature:      35 + int((t*3)%45), // 35..79
		FanSpeed:         20 + int((t*5)%60), // 20..79
		PerformanceState: perfState,
		ComputeMode:      "Default",
		PersistenceMode:  false,
	}
}

func (p *mockProvider) ListDevices() ([]Device, bool) {
	devices := make([]Device, len(p.devices))
	for id := range p.devices {
		devices[id] = p.snapshot(id)
	}
	return devices, false
}

func (p *mockProvider) GetDevice(id int) (Device, error) {
	if id < 0 || id >= len(p.devices) {
		return Device{}, &NotFoundError{DeviceID: id}
	}
	return p.snapshot(id), nil
}

func (p *mockProvider) GetMemory(id int) (MemoryInfo, error) {
	dev, err := p.GetDevice(id)
	if err != nil {
		return MemoryInfo{}, err
	}
	return dev.Memory, nil
}

func (p *mockProvider) GetUtilization(id int) (UtilizationInfo, error) {
	dev, err := p.GetDevice(id)
	if err != nil {
		return UtilizationInfo{}, err
	}
	return dev.Utilization, nil
}

func (p *mockProvider) Status() ServiceStatus {
	return ServiceStatus{
		BackendActive: BackendMock,
		DeviceCount:   len(p.devices),
		InitError:     p.initError,
	}
}
