package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ngenohkevin/hivedeck-sysstat/config"
	"github.com/ngenohkevin/hivedeck-sysstat/internal/systemd"
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	logger     *slog.Logger
	router     *gin.Engine
	handlers   *Handlers
	limiter    *RateLimiter
	httpServer *http.Server
}

// New creates a new server instance. A nil factory serves live host
// statistics.
func New(cfg *config.Config, logger *slog.Logger, newStats StatsFactory) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		router:   gin.New(),
		handlers: NewHandlers(newStats),
	}
	if cfg.RateLimitRPS > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimitRPS)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(RequestIDMiddleware())
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(CORSMiddleware(s.cfg.CORSOrigins()))

	if s.limiter != nil {
		s.router.Use(RateLimitMiddleware(s.limiter))
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handlers.Index)

	sys := s.router.Group("/system")
	{
		sys.GET("/uptime", s.handlers.Uptime)
		sys.GET("/load_average", s.handlers.LoadAverage)
		sys.GET("/networks", s.handlers.Networks)
		sys.GET("/net_stats", s.handlers.NetStats)
		sys.GET("/cpu_temp", s.handlers.CPUTemp)
		sys.GET("/memory", s.handlers.Memory)
		sys.GET("/disk_info", s.handlers.DiskInfo)
		sys.GET("/hostname", s.handlers.Hostname)
		sys.GET("/cpu_average", s.handlers.CPUAverage)
		sys.GET("/health", s.handlers.HealthCheck)
		sys.GET("/all", s.handlers.SystemAll)
	}

	s.router.NoRoute(s.handlers.NotFound)
}

// Run starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return s.Serve(ctx)
}

// Serve listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr(), err)
	}

	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(ln)
	}()

	s.logger.Info("sysstat agent listening", "addr", ln.Addr().String(), "debug", s.cfg.Debug)
	if sent, err := systemd.NotifyReady(); err != nil {
		s.logger.Warn("systemd readiness notification failed", "error", err)
	} else if sent {
		s.logger.Debug("systemd notified of readiness")
	}

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	if _, err := systemd.NotifyStopping(); err != nil {
		s.logger.Warn("systemd stopping notification failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Router returns the Gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
