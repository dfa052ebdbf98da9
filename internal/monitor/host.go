// Package monitor provides host-level telemetry sampling for gpuwatch.
// Like device snapshots, host readings are recomputed on every call and
// never cached; there is no historical storage.
package monitor

import (
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/gpuwatch-project/gpuwatch/internal/logger"
	"github.com/gpuwatch-project/gpuwatch/internal/netutil"
)

// HostMemory contains host memory counters in bytes
type HostMemory struct {
	Total       uint64  `json:"total"`
	Used        uint64  `json:"used"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// HostInfo is a point-in-time snapshot of the host running the service
type HostInfo struct {
	Hostname      string     `json:"hostname"`
	OS            string     `json:"os"`
	Platform      string     `json:"platform"`
	UptimeSeconds uint64     `json:"uptime_seconds"`
	IP            string     `json:"ip"`
	CPUPercent    float64    `json:"cpu_percent"`
	Memory        HostMemory `json:"memory"`
}

// HostMonitor samples host telemetry. The local IP is resolved once at
// construction; everything else is read fresh per snapshot.
type HostMonitor struct {
	ipOnce sync.Once
	ip     string
}

// NewHostMonitor creates a host monitor
func NewHostMonitor() *HostMonitor {
	return &HostMonitor{}
}

// Snapshot returns current host telemetry. Individual readings degrade
// to zero values when a sampler fails; the snapshot itself never fails.
func (m *HostMonitor) Snapshot() HostInfo {
	m.ipOnce.Do(func() {
		m.ip = netutil.GetBestLocalIP()
	})

	info := HostInfo{IP: m.ip}

	if hi, err := host.Info(); err == nil {
		info.Hostname = hi.Hostname
		info.OS = hi.OS
		info.Platform = hi.Platform
		info.UptimeSeconds = hi.Uptime
	} else {
		logger.WithError(err).Debug("host info unavailable")
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		info.CPUPercent = percents[0]
	} else if err != nil {
		logger.WithError(err).Debug("cpu sampling unavailable")
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.Memory = HostMemory{
			Total:       vm.Total,
			Used:        vm.Used,
			Free:        vm.Available,
			UsedPercent: vm.UsedPercent,
		}
	} else {
		logger.WithError(err).Debug("memory sampling unavailable")
	}

	return info
}
