// Package systemtest provides an in-memory system.Provider for tests.
package systemtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ngenohkevin/hivedeck-sysstat/internal/system"
)

// Provider is a system.Provider and system.Identity serving fixed values.
// A non-nil error field makes the matching query fail with it.
type Provider struct {
	UptimeValue time.Duration
	UptimeErr   error

	Load    system.LoadAverage
	LoadErr error

	Interfaces    []system.Interface
	InterfacesErr error

	// Counters is keyed by interface name; a missing name fails the lookup
	Counters        map[string]system.NetworkStats
	NetworkStatsErr error

	Temp    float32
	TempErr error

	MemoryTotals system.MemoryTotals
	MemoryErr    error

	Filesystems []system.Filesystem
	MountsErr   error

	CPU        system.CPULoad
	CPUErr     error
	CPUDoneErr error

	Host    string
	HostErr error

	cpuSamples atomic.Int64
}

// New returns a Provider describing a small healthy host
func New() *Provider {
	return &Provider{
		UptimeValue: 3661 * time.Second,
		Load:        system.LoadAverage{One: 0.5, Five: 0.25, Fifteen: 0.125},
		Interfaces: []system.Interface{
			{Name: "eth0", Addrs: []string{"192.168.1.1/24", "fe80::1/64"}},
			{Name: "lo", Addrs: []string{"127.0.0.1/8"}},
		},
		Counters: map[string]system.NetworkStats{
			"eth0": {RxBytes: 1000, TxBytes: 2000, RxPackets: 10, TxPackets: 20, RxErrors: 1, TxErrors: 2},
			"lo":   {RxBytes: 50, TxBytes: 50, RxPackets: 5, TxPackets: 5},
		},
		Temp:         42.5,
		MemoryTotals: system.MemoryTotals{Total: 8 << 30, Free: 2 << 30},
		Filesystems: []system.Filesystem{
			{MountedFrom: "/dev/sda1", Type: "ext4", MountedOn: "/", Free: 100, Avail: 90, Total: 200, NameMax: 255, Files: 10, FilesTotal: 100, FilesAvail: 90},
			{MountedFrom: "tmpfs", Type: "tmpfs", MountedOn: "/run", Free: 10, Avail: 10, Total: 10, NameMax: 255, Files: 1, FilesTotal: 5, FilesAvail: 4},
		},
		CPU:  system.CPULoad{User: 0.25, Nice: 0, System: 0.125, Interrupt: 0.0625, Idle: 0.5625},
		Host: "test-host",
	}
}

// Stats returns a system.Stats over p
func (p *Provider) Stats() *system.Stats {
	return system.NewWithProvider(p, p)
}

// CPUSamples reports how many CPU measurements were finalized
func (p *Provider) CPUSamples() int64 {
	return p.cpuSamples.Load()
}

func (p *Provider) Uptime(ctx context.Context) (time.Duration, error) {
	return p.UptimeValue, p.UptimeErr
}

func (p *Provider) LoadAverage(ctx context.Context) (system.LoadAverage, error) {
	return p.Load, p.LoadErr
}

func (p *Provider) Networks(ctx context.Context) ([]system.Interface, error) {
	if p.InterfacesErr != nil {
		return nil, p.InterfacesErr
	}
	return p.Interfaces, nil
}

func (p *Provider) NetworkStats(ctx context.Context, name string) (system.NetworkStats, error) {
	if p.NetworkStatsErr != nil {
		return system.NetworkStats{}, p.NetworkStatsErr
	}
	stats, ok := p.Counters[name]
	if !ok {
		return system.NetworkStats{}, fmt.Errorf("network interface %q not found", name)
	}
	return stats, nil
}

func (p *Provider) CPUTemp(ctx context.Context) (float32, error) {
	return p.Temp, p.TempErr
}

func (p *Provider) Memory(ctx context.Context) (system.MemoryTotals, error) {
	return p.MemoryTotals, p.MemoryErr
}

func (p *Provider) Mounts(ctx context.Context) ([]system.Filesystem, error) {
	if p.MountsErr != nil {
		return nil, p.MountsErr
	}
	return p.Filesystems, nil
}

func (p *Provider) CPULoadAggregate(ctx context.Context) (system.CPUMeasurement, error) {
	if p.CPUErr != nil {
		return nil, p.CPUErr
	}
	return measurement{p: p}, nil
}

func (p *Provider) Hostname() (string, error) {
	return p.Host, p.HostErr
}

type measurement struct {
	p *Provider
}

func (m measurement) Done(ctx context.Context) (system.CPULoad, error) {
	if m.p.CPUDoneErr != nil {
		return system.CPULoad{}, m.p.CPUDoneErr
	}
	m.p.cpuSamples.Add(1)
	return m.p.CPU, nil
}
