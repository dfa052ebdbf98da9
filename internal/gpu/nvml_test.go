package gpu

import (
	"testing"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"github.com/stretchr/testify/assert"
)

func TestPerfStateString(t *testing.T) {
	tests := []struct {
		name     string
		state    nvml.Pstates
		expected string
	}{
		{"P0", nvml.PSTATE_0, "P0"},
		{"P2", nvml.PSTATE_2, "P2"},
		{"P8", nvml.PSTATE_8, "P8"},
		{"P12", nvml.PSTATE_12, "P12"},
		{"P15", nvml.PSTATE_15, "P15"},
		{"unknown state", nvml.PSTATE_UNKNOWN, "Unknown"},
		{"negative code", nvml.Pstates(-1), "Unknown"},
		{"out of range code", nvml.Pstates(64), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, perfStateString(tt.state))
		})
	}
}

func TestComputeModeString(t *testing.T) {
	tests := []struct {
		name     string
		mode     nvml.ComputeMode
		expected string
	}{
		{"default", nvml.COMPUTEMODE_DEFAULT, "Default"},
		{"exclusive thread", nvml.COMPUTEMODE_EXCLUSIVE_THREAD, "Exclusive Thread"},
		{"prohibited", nvml.COMPUTEMODE_PROHIBITED, "Prohibited"},
		{"exclusive process", nvml.COMPUTEMODE_EXCLUSIVE_PROCESS, "Exclusive Process"},
		{"unrecognized code", nvml.ComputeMode(42), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, computeModeString(tt.mode))
		})
	}
}

func TestMapReturn(t *testing.T) {
	assert.NoError(t, mapReturn("memory query", 0, nvml.SUCCESS))

	err := mapReturn("handle lookup", 3, nvml.ERROR_NOT_FOUND)
	assert.ErrorIs(t, err, ErrNotFound)

	err = mapReturn("handle lookup", 3, nvml.ERROR_INVALID_ARGUMENT)
	assert.ErrorIs(t, err, ErrNotFound)

	err = mapReturn("utilization query", 1, nvml.ERROR_UNKNOWN)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "utilization query")
	assert.Contains(t, err.Error(), "gpu 1")

	err = mapReturn("memory query", 0, nvml.ERROR_GPU_IS_LOST)
	assert.ErrorIs(t, err, ErrQueryFailed)
	assert.Contains(t, err.Error(), "gpu is lost")
}

// errorString must never reach the native library: it is the only safe
// rendering for codes produced before nvml.Init succeeds, such as a
// missing libnvidia-ml on a machine without the driver.
func TestErrorStringWithoutNativeLibrary(t *testing.T) {
	tests := []struct {
		name     string
		ret      nvml.Return
		expected string
	}{
		{"library not found", nvml.ERROR_LIBRARY_NOT_FOUND, "library not found"},
		{"driver not loaded", nvml.ERROR_DRIVER_NOT_LOADED, "driver not loaded"},
		{"uninitialized", nvml.ERROR_UNINITIALIZED, "library not initialized"},
		{"gpu lost", nvml.ERROR_GPU_IS_LOST, "gpu is lost"},
		{"success", nvml.SUCCESS, "success"},
		{"unrecognized code", nvml.Return(12345), "unknown error (code 12345)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorString(tt.ret))
		})
	}
}

// Bound checks run before any native call, so an out-of-range id must
// surface as NotFound even when NVML was never initialized.
func TestHardwareProviderBoundCheckBeforeNativeCall(t *testing.T) {
	p := &hardwareProvider{log: noopLogger{}, count: 2}

	for _, id := range []int{-1, 2, 10} {
		_, err := p.GetDevice(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetDevice(%d)", id)

		_, err = p.GetMemory(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetMemory(%d)", id)

		_, err = p.GetUtilization(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetUtilization(%d)", id)
	}
}

func TestHardwareProviderStatus(t *testing.T) {
	p := &hardwareProvider{log: noopLogger{}, count: 4}

	status := p.Status()
	assert.Equal(t, BackendHardware, status.BackendActive)
	assert.Equal(t, 4, status.DeviceCount)
	assert.Empty(t, status.InitError)
}
