package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostMonitorSnapshot(t *testing.T) {
	m := NewHostMonitor()

	info := m.Snapshot()

	assert.NotEmpty(t, info.IP)
	assert.NotEmpty(t, info.Hostname)
	assert.GreaterOrEqual(t, info.CPUPercent, 0.0)
	assert.LessOrEqual(t, info.CPUPercent, 100.0)

	require.Greater(t, info.Memory.Total, uint64(0))
	assert.LessOrEqual(t, info.Memory.Used, info.Memory.Total)
	assert.GreaterOrEqual(t, info.Memory.UsedPercent, 0.0)
	assert.LessOrEqual(t, info.Memory.UsedPercent, 100.0)
}

func TestHostMonitorIPResolvedOnce(t *testing.T) {
	m := NewHostMonitor()

	first := m.Snapshot()
	second := m.Snapshot()
	assert.Equal(t, first.IP, second.IP)
}
