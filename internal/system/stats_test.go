package system_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngenohkevin/hivedeck-sysstat/internal/system"
	"github.com/ngenohkevin/hivedeck-sysstat/internal/system/systemtest"
)

func TestStats_Uptime(t *testing.T) {
	p := systemtest.New()

	uptime, err := p.Stats().Uptime(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3661*time.Second, uptime)
	assert.Equal(t, "01:01:01", system.FormatUptime(uptime))
}

func TestStats_UptimeError(t *testing.T) {
	p := systemtest.New()
	p.UptimeErr = errors.New("uptime not supported")

	_, err := p.Stats().Uptime(context.Background())
	require.Error(t, err)
	assert.Equal(t, system.KindNotFound, system.KindOf(err))
	assert.Equal(t, "uptime not supported", err.Error())
}

func TestStats_LoadAverage(t *testing.T) {
	p := systemtest.New()

	avg, err := p.Stats().LoadAverage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, system.LoadAverage{One: 0.5, Five: 0.25, Fifteen: 0.125}, avg)

	p.LoadErr = errors.New("no loadavg")
	_, err = p.Stats().LoadAverage(context.Background())
	assert.Equal(t, system.KindNotFound, system.KindOf(err))
}

func TestStats_Networks(t *testing.T) {
	p := systemtest.New()
	p.Interfaces = []system.Interface{
		{Name: "eth0", Addrs: []string{"192.168.1.1/24", "fe80::1/64", "", "bogus"}},
	}

	result, err := p.Stats().Networks(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Networks, 1)

	net := result.Networks[0]
	assert.Equal(t, "eth0", net.Name)
	require.Len(t, net.Addrs, 4)
	assert.Equal(t, system.V4Addr([4]byte{192, 168, 1, 1}), net.Addrs[0].Addr)
	assert.Equal(t, system.IPAddrV6, net.Addrs[1].Addr.Kind)
	assert.Equal(t, system.EmptyAddr(), net.Addrs[2].Addr)
	assert.Equal(t, system.UnsupportedAddr(), net.Addrs[3].Addr)
}

func TestStats_NetworksError(t *testing.T) {
	p := systemtest.New()
	p.InterfacesErr = errors.New("netlink failure")

	_, err := p.Stats().Networks(context.Background())
	assert.Equal(t, system.KindNotFound, system.KindOf(err))
}

func TestStats_NetworkStats(t *testing.T) {
	p := systemtest.New()

	stats, err := p.Stats().NetworkStats(context.Background(), "eth0")
	require.NoError(t, err)
	assert.Equal(t, "eth0", stats.Name)
	assert.Equal(t, uint64(1000), stats.RxBytes)
	assert.Equal(t, uint64(2000), stats.TxBytes)

	_, err = p.Stats().NetworkStats(context.Background(), "wlan9")
	require.Error(t, err)
	assert.Equal(t, system.KindNotFound, system.KindOf(err))
}

func TestStats_NetworksStats(t *testing.T) {
	p := systemtest.New()

	all, err := p.Stats().NetworksStats(context.Background())
	require.NoError(t, err)
	require.Len(t, all, len(p.Interfaces))
	assert.Equal(t, "eth0", all[0].Name)
	assert.Equal(t, "lo", all[1].Name)
}

func TestStats_NetworksStatsNoPartialResult(t *testing.T) {
	p := systemtest.New()
	delete(p.Counters, "lo")

	all, err := p.Stats().NetworksStats(context.Background())
	require.Error(t, err)
	assert.Nil(t, all)
	assert.Equal(t, system.KindNotFound, system.KindOf(err))
}

func TestStats_CPUTemp(t *testing.T) {
	p := systemtest.New()

	temp, err := p.Stats().CPUTemp(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float32(42.5), temp)

	p.TempErr = errors.New("no sensor")
	_, err = p.Stats().CPUTemp(context.Background())
	assert.Equal(t, system.KindBadRequest, system.KindOf(err))
}

func TestStats_Memory(t *testing.T) {
	tests := []struct {
		name  string
		total uint64
		free  uint64
		used  uint64
	}{
		{"typical", 8 << 30, 2 << 30, 6 << 30},
		{"all free", 1024, 1024, 0},
		{"none free", 1024, 0, 1024},
		{"free exceeds total", 1024, 4096, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := systemtest.New()
			p.MemoryTotals = system.MemoryTotals{Total: tt.total, Free: tt.free}

			m, err := p.Stats().Memory(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.total, m.Total)
			assert.Equal(t, tt.free, m.Free)
			assert.Equal(t, tt.used, m.Used)
		})
	}
}

func TestStats_MemoryError(t *testing.T) {
	p := systemtest.New()
	p.MemoryErr = errors.New("meminfo unreadable")

	_, err := p.Stats().Memory(context.Background())
	assert.Equal(t, system.KindBadRequest, system.KindOf(err))
}

func TestStats_Drives(t *testing.T) {
	p := systemtest.New()

	drives, err := p.Stats().Drives(context.Background())
	require.NoError(t, err)
	require.Len(t, drives, 2)
	assert.Equal(t, "/", drives[0].MountedOn)
	assert.Equal(t, "/run", drives[1].MountedOn)

	p.Filesystems = nil
	drives, err = p.Stats().Drives(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, drives)
	assert.Empty(t, drives)

	p.MountsErr = errors.New("mtab missing")
	_, err = p.Stats().Drives(context.Background())
	assert.Equal(t, system.KindBadRequest, system.KindOf(err))
}

func TestStats_Hostname(t *testing.T) {
	p := systemtest.New()

	name, err := p.Stats().Hostname(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-host", name)

	p.Host = "bad\xffname"
	_, err = p.Stats().Hostname(context.Background())
	require.Error(t, err)
	assert.Equal(t, system.KindBadRequest, system.KindOf(err))
	assert.Equal(t, "Unable to get hostname", err.Error())

	p.HostErr = errors.New("uname failed")
	_, err = p.Stats().Hostname(context.Background())
	assert.Equal(t, "uname failed", err.Error())
}

func TestStats_CPUAverage(t *testing.T) {
	p := systemtest.New()

	start := time.Now()
	load, err := p.Stats().CPUAverage(context.Background())
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, system.CPUSampleWindow)
	assert.Equal(t, p.CPU, load)
	assert.Equal(t, int64(1), p.CPUSamples())
}

func TestStats_CPUAverageError(t *testing.T) {
	p := systemtest.New()
	p.CPUErr = errors.New("stat unreadable")

	_, err := p.Stats().CPUAverage(context.Background())
	require.Error(t, err)
	assert.Equal(t, system.KindIO, system.KindOf(err))
	assert.Equal(t, int64(0), p.CPUSamples())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, system.ErrorKind(0), system.KindOf(errors.New("plain")))
	assert.Equal(t, system.KindNotFound, system.KindOf(system.NotFound(errors.New("x"))))
	assert.Equal(t, "bad_request", system.KindBadRequest.String())
}
