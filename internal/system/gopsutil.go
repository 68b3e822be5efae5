package system

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/sensors"
)

// gopsutilProvider reads host statistics through gopsutil
type gopsutilProvider struct{}

// NewProvider returns a Provider backed by gopsutil
func NewProvider() Provider {
	return &gopsutilProvider{}
}

func (p *gopsutilProvider) Uptime(ctx context.Context) (time.Duration, error) {
	seconds, err := host.UptimeWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get uptime: %w", err)
	}
	return time.Duration(seconds) * time.Second, nil
}

func (p *gopsutilProvider) LoadAverage(ctx context.Context) (LoadAverage, error) {
	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return LoadAverage{}, fmt.Errorf("failed to get load average: %w", err)
	}
	return LoadAverage{
		One:     float32(avg.Load1),
		Five:    float32(avg.Load5),
		Fifteen: float32(avg.Load15),
	}, nil
}

func (p *gopsutilProvider) Networks(ctx context.Context) ([]Interface, error) {
	ifaces, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	result := make([]Interface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			addrs = append(addrs, addr.Addr)
		}
		result = append(result, Interface{Name: iface.Name, Addrs: addrs})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})

	return result, nil
}

func (p *gopsutilProvider) NetworkStats(ctx context.Context, name string) (NetworkStats, error) {
	counters, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return NetworkStats{}, fmt.Errorf("failed to get network io counters: %w", err)
	}

	for _, counter := range counters {
		if counter.Name != name {
			continue
		}
		return NetworkStats{
			Name:      name,
			RxBytes:   counter.BytesRecv,
			TxBytes:   counter.BytesSent,
			RxPackets: counter.PacketsRecv,
			TxPackets: counter.PacketsSent,
			RxErrors:  counter.Errin,
			TxErrors:  counter.Errout,
		}, nil
	}

	return NetworkStats{}, fmt.Errorf("network interface %q not found", name)
}

func (p *gopsutilProvider) CPUTemp(ctx context.Context) (float32, error) {
	temps, err := sensors.SensorsTemperatures()
	// gopsutil reports unreadable sensors as warnings next to partial results
	if len(temps) == 0 {
		if err != nil {
			return 0, fmt.Errorf("failed to read temperature sensors: %w", err)
		}
		return 0, fmt.Errorf("no temperature sensors found")
	}

	readings := make([]TemperatureReading, 0, len(temps))
	for _, t := range temps {
		readings = append(readings, TemperatureReading{SensorKey: t.SensorKey, Celsius: t.Temperature})
	}

	reading, ok := pickCPUTemperature(readings)
	if !ok {
		return 0, fmt.Errorf("no cpu temperature sensor found")
	}
	return float32(reading.Celsius), nil
}

func (p *gopsutilProvider) Memory(ctx context.Context) (MemoryTotals, error) {
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return MemoryTotals{}, fmt.Errorf("failed to get virtual memory: %w", err)
	}
	return MemoryTotals{Total: vmem.Total, Free: vmem.Free}, nil
}

func (p *gopsutilProvider) Mounts(ctx context.Context) ([]Filesystem, error) {
	partitions, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to get disk partitions: %w", err)
	}

	result := make([]Filesystem, 0, len(partitions))
	for _, part := range partitions {
		usage, err := disk.UsageWithContext(ctx, part.Mountpoint)
		if err != nil {
			continue
		}

		// gopsutil's Free is the space available to unprivileged users
		result = append(result, Filesystem{
			MountedFrom: part.Device,
			Type:        part.Fstype,
			MountedOn:   part.Mountpoint,
			Free:        saturatingSub(usage.Total, usage.Used),
			Avail:       usage.Free,
			Total:       usage.Total,
			NameMax:     nameMax(part.Mountpoint),
			Files:       usage.InodesUsed,
			FilesTotal:  usage.InodesTotal,
			FilesAvail:  usage.InodesFree,
		})
	}

	return result, nil
}

func (p *gopsutilProvider) CPULoadAggregate(ctx context.Context) (CPUMeasurement, error) {
	start, err := aggregateCPUTimes(ctx)
	if err != nil {
		return nil, err
	}
	return &cpuMeasurement{start: start}, nil
}

type cpuMeasurement struct {
	start cpu.TimesStat
}

func (m *cpuMeasurement) Done(ctx context.Context) (CPULoad, error) {
	end, err := aggregateCPUTimes(ctx)
	if err != nil {
		return CPULoad{}, err
	}
	return cpuLoadBetween(m.start, end), nil
}

func aggregateCPUTimes(ctx context.Context) (cpu.TimesStat, error) {
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return cpu.TimesStat{}, fmt.Errorf("failed to get cpu times: %w", err)
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, fmt.Errorf("failed to get cpu times: no data")
	}
	return times[0], nil
}

// cpuLoadBetween converts two cumulative CPU time readings into fractions of
// the elapsed CPU time. Interrupt folds in softirq, idle folds in iowait.
func cpuLoadBetween(start, end cpu.TimesStat) CPULoad {
	user := nonNegative(end.User - start.User)
	nice := nonNegative(end.Nice - start.Nice)
	system := nonNegative(end.System - start.System)
	interrupt := nonNegative(end.Irq-start.Irq) + nonNegative(end.Softirq-start.Softirq)
	idle := nonNegative(end.Idle-start.Idle) + nonNegative(end.Iowait-start.Iowait)
	steal := nonNegative(end.Steal - start.Steal)

	total := user + nice + system + interrupt + idle + steal
	if total == 0 {
		return CPULoad{}
	}

	return CPULoad{
		User:      float32(user / total),
		Nice:      float32(nice / total),
		System:    float32(system / total),
		Interrupt: float32(interrupt / total),
		Idle:      float32(idle / total),
	}
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// TemperatureReading is one sensor value in degrees Celsius
type TemperatureReading struct {
	SensorKey string
	Celsius   float64
}

var cpuSensorPrefixes = []string{
	"coretemp_package",
	"k10temp_tctl",
	"k10temp_tdie",
	"cpu_thermal",
	"cpu-thermal",
	"coretemp",
	"k10temp",
	"zenpower",
	"acpitz",
	"x86_pkg_temp",
	"thermal_zone0",
}

// pickCPUTemperature selects the reading most likely to be the CPU package
// temperature. Earlier prefixes win; without any match the first non-zero
// reading is used.
func pickCPUTemperature(readings []TemperatureReading) (TemperatureReading, bool) {
	for _, prefix := range cpuSensorPrefixes {
		for _, r := range readings {
			if strings.HasPrefix(strings.ToLower(r.SensorKey), prefix) && r.Celsius > 0 {
				return r, true
			}
		}
	}
	for _, r := range readings {
		if r.Celsius > 0 {
			return r, true
		}
	}
	return TemperatureReading{}, false
}
