package gpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProviderStatus(t *testing.T) {
	p := NewMockProvider(1, 42, "NVML library not found", nil)

	status := p.Status()
	assert.Equal(t, BackendMock, status.BackendActive)
	assert.Equal(t, 1, status.DeviceCount)
	assert.Equal(t, "NVML library not found", status.InitError)

	// Repeated calls report the same backend
	assert.Equal(t, status.BackendActive, p.Status().BackendActive)
}

func TestMockProviderListMatchesStatusCount(t *testing.T) {
	for _, count := range []int{1, 2, 4} {
		p := NewMockProvider(count, 42, "", nil)

		devices, partial := p.ListDevices()
		assert.Len(t, devices, count)
		assert.False(t, partial)
		assert.Equal(t, count, p.Status().DeviceCount)

		// Ordered by ascending id
		for i, dev := range devices {
			assert.Equal(t, i, dev.ID)
		}
	}
}

func TestMockProviderInvariants(t *testing.T) {
	p := NewMockProvider(3, 7, "", nil)

	devices, _ := p.ListDevices()
	require.Len(t, devices, 3)

	for _, dev := range devices {
		assert.Equal(t, dev.Memory.Total, dev.Memory.Used+dev.Memory.Free,
			"used + free must equal total for gpu %d", dev.ID)
		assert.LessOrEqual(t, dev.Utilization.GPU, uint32(100))
		assert.LessOrEqual(t, dev.Utilization.Memory, uint32(100))
		assert.GreaterOrEqual(t, dev.PowerUsage, 0.0)
		assert.LessOrEqual(t, dev.PowerUsage, dev.PowerLimit)
		assert.GreaterOrEqual(t, dev.FanSpeed, 0)
		assert.LessOrEqual(t, dev.FanSpeed, 100)
		assert.True(t, strings.HasPrefix(dev.PerformanceState, "P"))
		assert.True(t, strings.HasPrefix(dev.UUID, "GPU-"))
		assert.NotEmpty(t, dev.Name)
	}
}

func TestMockProviderNotFound(t *testing.T) {
	p := NewMockProvider(2, 42, "", nil)

	for _, id := range []int{-1, 2, 5, 1000} {
		_, err := p.GetDevice(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetDevice(%d)", id)

		_, err = p.GetMemory(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetMemory(%d)", id)

		_, err = p.GetUtilization(id)
		assert.ErrorIs(t, err, ErrNotFound, "GetUtilization(%d)", id)
	}

	var notFound *NotFoundError
	_, err := p.GetDevice(5)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, 5, notFound.DeviceID)
}

func TestMockProviderPerDeviceReads(t *testing.T) {
	p := NewMockProvider(1, 42, "", nil)

	mem, err := p.GetMemory(0)
	require.NoError(t, err)
	assert.Equal(t, mem.Total, mem.Used+mem.Free)
	assert.Equal(t, uint64(mockMemoryTotal), mem.Total)

	util, err := p.GetUtilization(0)
	require.NoError(t, err)
	assert.LessOrEqual(t, util.GPU, uint32(100))
	assert.LessOrEqual(t, util.Memory, uint32(100))
}

func TestMockProviderSeedDeterminesIdentity(t *testing.T) {
	a, err := NewMockProvider(2, 42, "", nil).GetDevice(0)
	require.NoError(t, err)
	b, err := NewMockProvider(2, 42, "", nil).GetDevice(0)
	require.NoError(t, err)

	// Same seed, same static identity
	assert.Equal(t, a.UUID, b.UUID)
	assert.Equal(t, a.Name, b.Name)

	c, err := NewMockProvider(2, 99, "", nil).GetDevice(0)
	require.NoError(t, err)
	assert.NotEqual(t, a.UUID, c.UUID)
}

func TestMockProviderMinimumDeviceCount(t *testing.T) {
	p := NewMockProvider(0, 42, "", nil)
	assert.Equal(t, 1, p.Status().DeviceCount)
}
