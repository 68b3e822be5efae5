package system

import (
	"context"
	"time"
)

// Provider is the OS statistics source behind Stats. Implementations may
// return any error type; Stats flattens it to a message.
type Provider interface {
	Uptime(ctx context.Context) (time.Duration, error)
	LoadAverage(ctx context.Context) (LoadAverage, error)
	// Networks lists interfaces with their raw addresses, e.g. "10.0.0.2/24"
	Networks(ctx context.Context) ([]Interface, error)
	NetworkStats(ctx context.Context, name string) (NetworkStats, error)
	CPUTemp(ctx context.Context) (float32, error)
	Memory(ctx context.Context) (MemoryTotals, error)
	Mounts(ctx context.Context) ([]Filesystem, error)
	// CPULoadAggregate starts a measurement that is finalized by Done
	CPULoadAggregate(ctx context.Context) (CPUMeasurement, error)
}

// Identity is the OS identity source
type Identity interface {
	Hostname() (string, error)
}

// CPUMeasurement is an in-flight CPU load sample
type CPUMeasurement interface {
	Done(ctx context.Context) (CPULoad, error)
}

// Interface is a network interface as reported by the provider
type Interface struct {
	Name  string
	Addrs []string
}

// MemoryTotals is the raw memory reading
type MemoryTotals struct {
	Total uint64
	Free  uint64
}
