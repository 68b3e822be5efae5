package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/ngenohkevin/hivedeck-sysstat/internal/system"
)

// StatsFactory builds the facade for one request
type StatsFactory func() *system.Stats

// Handlers holds all HTTP handlers
type Handlers struct {
	newStats StatsFactory
	now      func() time.Time
}

// NewHandlers creates a new handlers instance. A nil factory uses the
// gopsutil-backed facade.
func NewHandlers(newStats StatsFactory) *Handlers {
	if newStats == nil {
		newStats = system.New
	}
	return &Handlers{
		newStats: newStats,
		now:      time.Now,
	}
}

// Index handles GET /
func (h *Handlers) Index(c *gin.Context) {
	c.String(http.StatusOK, "Hello, world!")
}

// Uptime handles GET /system/uptime
func (h *Handlers) Uptime(c *gin.Context) {
	uptime, err := h.newStats().Uptime(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, system.FormatUptime(uptime))
}

// LoadAverage handles GET /system/load_average
func (h *Handlers) LoadAverage(c *gin.Context) {
	avg, err := h.newStats().LoadAverage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, avg)
}

// Networks handles GET /system/networks
func (h *Handlers) Networks(c *gin.Context) {
	networks, err := h.newStats().Networks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, networks)
}

// NetStats handles GET /system/net_stats. With ?name= it returns that
// interface's counters, otherwise the counters of every interface.
func (h *Handlers) NetStats(c *gin.Context) {
	stats := h.newStats()

	if name, ok := c.GetQuery("name"); ok {
		one, err := stats.NetworkStats(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, one)
		return
	}

	all, err := stats.NetworksStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, all)
}

// CPUTemp handles GET /system/cpu_temp
func (h *Handlers) CPUTemp(c *gin.Context) {
	temp, err := h.newStats().CPUTemp(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, temp)
}

// Memory handles GET /system/memory
func (h *Handlers) Memory(c *gin.Context) {
	memory, err := h.newStats().Memory(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, memory)
}

// DiskInfo handles GET /system/disk_info
func (h *Handlers) DiskInfo(c *gin.Context) {
	drives, err := h.newStats().Drives(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, drives)
}

// Hostname handles GET /system/hostname
func (h *Handlers) Hostname(c *gin.Context) {
	name, err := h.newStats().Hostname(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, name)
}

// CPUAverage handles GET /system/cpu_average. The response is written after
// the one second sampling window.
func (h *Handlers) CPUAverage(c *gin.Context) {
	load, err := h.newStats().CPUAverage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, load)
}

// HealthCheck handles GET /system/health. It always succeeds; uptime and
// hostname are left out when they cannot be read.
func (h *Handlers) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()
	stats := h.newStats()

	resp := system.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: h.timestamp(),
	}

	if uptime, err := stats.Uptime(ctx); err == nil {
		formatted := system.FormatUptime(uptime)
		resp.Uptime = &formatted
	}
	if name, err := stats.Hostname(ctx); err == nil {
		resp.Hostname = &name
	}

	c.JSON(http.StatusOK, resp)
}

// SystemAll handles GET /system/all
func (h *Handlers) SystemAll(c *gin.Context) {
	ctx := c.Request.Context()
	stats := h.newStats()

	timestamp := h.timestamp()

	hostname, err := stats.Hostname(ctx)
	if err != nil {
		respondRequiredError(c, "hostname", err)
		return
	}

	uptime, err := stats.Uptime(ctx)
	if err != nil {
		respondRequiredError(c, "uptime", err)
		return
	}

	resp := system.SystemAllResponse{
		Timestamp: timestamp,
		Hostname:  hostname,
		Uptime:    system.FormatUptime(uptime),
	}
	collectOptional(ctx, stats, &resp)

	c.JSON(http.StatusOK, resp)
}

// collectOptional fills the optional fields of resp concurrently. Each
// goroutine writes a distinct field and failures leave the field nil.
func collectOptional(ctx context.Context, stats *system.Stats, resp *system.SystemAllResponse) {
	var g errgroup.Group

	g.Go(func() error {
		if temp, err := stats.CPUTemp(ctx); err == nil {
			resp.CPUTemp = &temp
		}
		return nil
	})
	g.Go(func() error {
		if avg, err := stats.LoadAverage(ctx); err == nil {
			resp.LoadAverage = &avg
		}
		return nil
	})
	g.Go(func() error {
		if networks, err := stats.Networks(ctx); err == nil {
			resp.Networks = &networks
		}
		return nil
	})
	g.Go(func() error {
		if netStats, err := stats.NetworksStats(ctx); err == nil {
			resp.NetStats = &netStats
		}
		return nil
	})

	_ = g.Wait()
}

func (h *Handlers) timestamp() string {
	return h.now().UTC().Format(time.RFC3339Nano)
}

// NotFound handles unknown routes
func (h *Handlers) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, "no route for "+c.Request.Method+" "+c.Request.URL.Path)
}

// statusFor maps a facade error to its HTTP status
func statusFor(err error) int {
	switch system.KindOf(err) {
	case system.KindNotFound:
		return http.StatusNotFound
	case system.KindBadRequest:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError writes the error message as a JSON string body
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(statusFor(err), err.Error())
}

// respondRequiredError aborts /system/all when a required field is missing
func respondRequiredError(c *gin.Context, field string, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, "Failed to get "+field+": "+err.Error())
}
