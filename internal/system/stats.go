package system

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"
)

// CPUSampleWindow is how long CPUAverage measures before finalizing
const CPUSampleWindow = time.Second

// Stats normalizes provider queries into records and typed errors. A Stats
// value wraps one provider handle and is meant to live for a single request.
type Stats struct {
	provider Provider
	identity Identity
}

// New creates a Stats over a fresh gopsutil provider and the OS identity
func New() *Stats {
	return NewWithProvider(NewProvider(), NewIdentity())
}

// NewWithProvider creates a Stats over the given sources
func NewWithProvider(provider Provider, identity Identity) *Stats {
	return &Stats{
		provider: provider,
		identity: identity,
	}
}

// Uptime returns the time since boot
func (s *Stats) Uptime(ctx context.Context) (time.Duration, error) {
	uptime, err := s.provider.Uptime(ctx)
	if err != nil {
		return 0, NotFound(err)
	}
	return uptime, nil
}

// LoadAverage returns the 1, 5 and 15 minute load averages
func (s *Stats) LoadAverage(ctx context.Context) (LoadAverage, error) {
	avg, err := s.provider.LoadAverage(ctx)
	if err != nil {
		return LoadAverage{}, NotFound(err)
	}
	return avg, nil
}

// Networks lists the interfaces and their addresses
func (s *Stats) Networks(ctx context.Context) (NetworkResult, error) {
	ifaces, err := s.provider.Networks(ctx)
	if err != nil {
		return NetworkResult{}, NotFound(err)
	}

	networks := make([]NetworkDetails, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]NetworkAddr, 0, len(iface.Addrs))
		for _, addr := range iface.Addrs {
			addrs = append(addrs, NetworkAddr{Addr: ParseIPAddr(addr)})
		}
		networks = append(networks, NetworkDetails{
			Name:  iface.Name,
			Addrs: addrs,
		})
	}

	return NetworkResult{Networks: networks}, nil
}

// NetworkStats returns the counters of the named interface
func (s *Stats) NetworkStats(ctx context.Context, name string) (NetworkStats, error) {
	stats, err := s.provider.NetworkStats(ctx, name)
	if err != nil {
		return NetworkStats{}, NotFound(err)
	}
	stats.Name = name
	return stats, nil
}

// NetworksStats returns the counters of every interface. One failing
// interface fails the whole call.
func (s *Stats) NetworksStats(ctx context.Context) ([]NetworkStats, error) {
	ifaces, err := s.provider.Networks(ctx)
	if err != nil {
		return nil, NotFound(err)
	}

	result := make([]NetworkStats, 0, len(ifaces))
	for _, iface := range ifaces {
		stats, err := s.NetworkStats(ctx, iface.Name)
		if err != nil {
			return nil, err
		}
		result = append(result, stats)
	}

	return result, nil
}

// CPUTemp returns the CPU temperature in degrees Celsius
func (s *Stats) CPUTemp(ctx context.Context) (float32, error) {
	temp, err := s.provider.CPUTemp(ctx)
	if err != nil {
		return 0, BadRequest(err)
	}
	return temp, nil
}

// Memory returns total, free and used physical memory
func (s *Stats) Memory(ctx context.Context) (Memory, error) {
	totals, err := s.provider.Memory(ctx)
	if err != nil {
		return Memory{}, BadRequest(err)
	}
	return Memory{
		Total: totals.Total,
		Free:  totals.Free,
		Used:  saturatingSub(totals.Total, totals.Free),
	}, nil
}

// Drives returns one record per mounted filesystem in provider order
func (s *Stats) Drives(ctx context.Context) ([]Filesystem, error) {
	mounts, err := s.provider.Mounts(ctx)
	if err != nil {
		return nil, BadRequest(err)
	}
	if mounts == nil {
		mounts = []Filesystem{}
	}
	return mounts, nil
}

var errInvalidHostname = errors.New("Unable to get hostname")

// Hostname returns the machine hostname, which must be valid UTF-8
func (s *Stats) Hostname(ctx context.Context) (string, error) {
	name, err := s.identity.Hostname()
	if err != nil {
		return "", BadRequest(err)
	}
	if !utf8.ValidString(name) {
		return "", BadRequest(errInvalidHostname)
	}
	return name, nil
}

// CPUAverage samples CPU load for CPUSampleWindow and returns the averaged
// fractions. It blocks the calling goroutine for the whole window and does
// not observe ctx cancellation while sleeping.
func (s *Stats) CPUAverage(ctx context.Context) (CPULoad, error) {
	measurement, err := s.provider.CPULoadAggregate(ctx)
	if err != nil {
		return CPULoad{}, IOError(err)
	}

	time.Sleep(CPUSampleWindow)

	load, err := measurement.Done(ctx)
	if err != nil {
		return CPULoad{}, IOError(err)
	}
	return load, nil
}

func saturatingSub(a, b uint64) uint64 {
	if b > a {
		return 0
	}
	return a - b
}
