package gpu

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// hardwareProvider implements Provider by querying the NVIDIA Management
// Library. NVML is initialized exactly once at construction; all methods
// are read-only afterwards.
type hardwareProvider struct {
	log   Logger
	count int
}

// newHardwareProvider initializes NVML and enumerates the visible devices.
// The returned shutdown func releases the library handle; it is safe to
// call through the selector even when construction failed.
func newHardwareProvider(log Logger) (Provider, func(), error) {
	// nvml.ErrorString is a native call; when Init fails the library was
	// never loaded and calling into it would crash, so only the local
	// errorString is safe here.
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return nil, nil, &InitError{Cause: errorString(ret)}
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		nvml.Shutdown()
		return nil, nil, &InitError{Cause: fmt.Sprintf("device count query: %s", nvml.ErrorString(ret))}
	}
	if count == 0 {
		nvml.Shutdown()
		return nil, nil, &InitError{Cause: "no visible devices"}
	}

	log.Infof("NVML initialized, %d device(s) visible", count)

	p := &hardwareProvider{log: log, count: count}
	shutdown := func() {
		if ret := nvml.Shutdown(); ret != nvml.SUCCESS {
			log.Warnf("NVML shutdown: %s", nvml.ErrorString(ret))
		}
	}
	return p, shutdown, nil
}

// handle resolves a device handle for the given id. The bound check runs
// before any native call so a bad id never reaches NVML.
func (p *hardwareProvider) handle(id int) (nvml.Device, error) {
	if id < 0 || id >= p.count {
		return nvml.Device{}, &NotFoundError{DeviceID: id}
	}
	device, ret := nvml.DeviceGetHandleByIndex(id)
	if ret != nvml.SUCCESS {
		return nvml.Device{}, mapReturn("handle lookup", id, ret)
	}
	return device, nil
}

func (p *hardwareProvider) ListDevices() ([]Device, bool) {
	devices := make([]Device, 0, p.count)
	partial := false
	for id := 0; id < p.count; id++ {
		dev, err := p.GetDevice(id)
		if err != nil {
			partial = true
			continue
		}
		devices = append(devices, dev)
	}
	return devices, partial
}

func (p *hardwareProvider) GetDevice(id int) (Device, error) {
	device, err := p.handle(id)
	if err != nil {
		return Device{}, err
	}

	memory, ret := device.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return Device{}, mapReturn("memory query", id, ret)
	}
	utilization, ret := device.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return Device{}, mapReturn("utilization query", id, ret)
	}

	dev := Device{
		ID: id,
		Memory: MemoryInfo{
			Total: memory.Total,
			Free:  memory.Free,
			Used:  memory.Used,
		},
		Utilization: UtilizationInfo{
			GPU:    utilization.Gpu,
			Memory: utilization.Memory,
		},
		PerformanceState: "Unknown",
		ComputeMode:      "Unknown",
	}

	// Identity and sensor fields degrade individually: a board without a
	// fan or an older driver must not fail the whole snapshot.
	if name, ret := device.GetName(); ret == nvml.SUCCESS {
		dev.Name = name
	} else {
		dev.Name = "Unknown"
		p.log.Debugf("gpu %d: name query: %s", id, nvml.ErrorString(ret))
	}
	if uuid, ret := device.GetUUID(); ret == nvml.SUCCESS {
		dev.UUID = uuid
	} else {
		dev.UUID = "Unknown"
		p.log.Debugf("gpu %d: uuid query: %s", id, nvml.ErrorString(ret))
	}
	if power, ret := device.GetPowerUsage(); ret == nvml.SUCCESS {
		dev.PowerUsage = float64(power) / 1000.0 // mW to W
	}
	if limit, ret := device.GetPowerManagementLimit(); ret == nvml.SUCCESS {
		dev.PowerLimit = float64(limit) / 1000.0
	}
	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		dev.Temperature = int(temp)
	}
	if fan, ret := device.GetFanSpeed(); ret == nvml.SUCCESS {
		dev.FanSpeed = int(fan)
	}
	if state, ret := device.GetPerformanceState(); ret == nvml.SUCCESS {
		dev.PerformanceState = perfStateString(state)
	}
	if mode, ret := device.GetComputeMode(); ret == nvml.SUCCESS {
		dev.ComputeMode = computeModeString(mode)
	}
	if mode, ret := device.GetPersistenceMode(); ret == nvml.SUCCESS {
		dev.PersistenceMode = mode == nvml.FEATURE_ENABLED
	}

	return dev, nil
}

func (p *hardwareProvider) GetMemory(id int) (MemoryInfo, error) {
	device, err := p.handle(id)
	if err != nil {
		return MemoryInfo{}, err
	}
	memory, ret := device.GetMemoryInfo()
	if ret != nvml.SUCCESS {
		return MemoryInfo{}, mapReturn("memory query", id, ret)
	}
	return MemoryInfo{
		Total: memory.Total,
		Free:  memory.Free,
		Used:  memory.Used,
	}, nil
}

func (p *hardwareProvider) GetUtilization(id int) (UtilizationInfo, error) {
	device, err := p.handle(id)
	if err != nil {
		return UtilizationInfo{}, err
	}
	utilization, ret := device.GetUtilizationRates()
	if ret != nvml.SUCCESS {
		return UtilizationInfo{}, mapReturn("utilization query", id, ret)
	}
	return UtilizationInfo{
		GPU:    utilization.Gpu,
		Memory: utilization.Memory,
	}, nil
}

func (p *hardwareProvider) Status() ServiceStatus {
	return ServiceStatus{
		BackendActive: BackendHardware,
		DeviceCount:   p.count,
	}
}

// mapReturn translates an NVML return code into the provider error
// taxonomy. NVML "not found" codes map to NotFound; everything else is
// a QueryError carrying the native error string.
func mapReturn(op string, id int, ret nvml.Return) error {
	switch ret {
	case nvml.SUCCESS:
		return nil
	case nvml.ERROR_NOT_FOUND, nvml.ERROR_INVALID_ARGUMENT:
		return &NotFoundError{DeviceID: id}
	default:
		return &QueryError{Op: op, DeviceID: id, Cause: errorString(ret)}
	}
}

// errorString renders an NVML return code without calling into the
// native library. nvml.ErrorString goes through a function pointer that
// is only valid after a successful nvml.Init, so every path that can run
// before or without initialization must use this instead.
func errorString(ret nvml.Return) string {
	switch ret {
	case nvml.SUCCESS:
		return "success"
	case nvml.ERROR_UNINITIALIZED:
		return "library not initialized"
	case nvml.ERROR_INVALID_ARGUMENT:
		return "invalid argument"
	case nvml.ERROR_NOT_SUPPORTED:
		return "not supported"
	case nvml.ERROR_NO_PERMISSION:
		return "insufficient permissions"
	case nvml.ERROR_ALREADY_INITIALIZED:
		return "already initialized"
	case nvml.ERROR_NOT_FOUND:
		return "not found"
	case nvml.ERROR_INSUFFICIENT_SIZE:
		return "insufficient buffer size"
	case nvml.ERROR_INSUFFICIENT_POWER:
		return "insufficient external power"
	case nvml.ERROR_DRIVER_NOT_LOADED:
		return "driver not loaded"
	case nvml.ERROR_TIMEOUT:
		return "timeout"
	case nvml.ERROR_IRQ_ISSUE:
		return "interrupt request issue"
	case nvml.ERROR_LIBRARY_NOT_FOUND:
		return "library not found"
	case nvml.ERROR_FUNCTION_NOT_FOUND:
		return "function not found"
	case nvml.ERROR_CORRUPTED_INFOROM:
		return "corrupted infoROM"
	case nvml.ERROR_GPU_IS_LOST:
		return "gpu is lost"
	case nvml.ERROR_RESET_REQUIRED:
		return "gpu requires reset"
	case nvml.ERROR_OPERATING_SYSTEM:
		return "operating system error"
	case nvml.ERROR_LIB_RM_VERSION_MISMATCH:
		return "driver/library version mismatch"
	case nvml.ERROR_IN_USE:
		return "gpu in use"
	case nvml.ERROR_MEMORY:
		return "insufficient memory"
	case nvml.ERROR_NO_DATA:
		return "no data"
	case nvml.ERROR_VGPU_ECC_NOT_SUPPORTED:
		return "ecc not supported on vgpu"
	case nvml.ERROR_INSUFFICIENT_RESOURCES:
		return "insufficient resources"
	default:
		return fmt.Sprintf("unknown error (code %d)", int32(ret))
	}
}

// perfStateString maps an NVML performance state code to its "P<n>"
// string form. Unrecognized codes map to "Unknown" rather than failing.
func perfStateString(state nvml.Pstates) string {
	if state >= nvml.PSTATE_0 && state <= nvml.PSTATE_15 {
		return fmt.Sprintf("P%d", int(state))
	}
	return "Unknown"
}

// computeModeString maps an NVML compute mode code to its display name
func computeModeString(mode nvml.ComputeMode) string {
	switch mode {
	case nvml.COMPUTEMODE_DEFAULT:
		return "Default"
	case nvml.COMPUTEMODE_EXCLUSIVE_THREAD:
		return "Exclusive Thread"
	case nvml.COMPUTEMODE_PROHIBITED:
		return "Prohibited"
	case nvml.COMPUTEMODE_EXCLUSIVE_PROCESS:
		return "Exclusive Process"
	default:
		return "Unknown"
	}
}
