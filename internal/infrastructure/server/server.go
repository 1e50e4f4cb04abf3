package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/deskforge/deskos/internal/api/http"
	"github.com/deskforge/deskos/internal/api/middleware"
	"github.com/deskforge/deskos/internal/domain/registry"
	"github.com/deskforge/deskos/internal/domain/runtime"
	"github.com/deskforge/deskos/internal/domain/session"
	"github.com/deskforge/deskos/internal/domain/window"
	"github.com/deskforge/deskos/internal/events"
	"github.com/deskforge/deskos/internal/infrastructure/config"
	"github.com/deskforge/deskos/internal/infrastructure/logging"
	"github.com/deskforge/deskos/internal/infrastructure/monitoring"
	"github.com/deskforge/deskos/internal/providers/storage"
	"github.com/deskforge/deskos/internal/shared/types"
	"github.com/deskforge/deskos/internal/ws"
)

// Server wires the desktop core behind an HTTP/WebSocket surface.
type Server struct {
	router   *gin.Engine
	http     *http.Server
	wm       *window.Manager
	runtime  *runtime.Runtime
	registry *registry.Registry
	sessions *session.Manager
	bus      *events.Bus
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a server instance.
func NewServer(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing deskos core",
		zap.String("port", cfg.Server.Port),
		zap.Int("viewport_width", cfg.Desktop.ViewportWidth),
		zap.Int("viewport_height", cfg.Desktop.ViewportHeight),
	)

	metrics := monitoring.NewMetrics()
	bus := events.New()
	reg := registry.New()

	wm := window.NewManager(cfg.Desktop, reg, bus, logger).WithMetrics(metrics)
	rt := runtime.NewRuntime(wm, bus, logger).
		WithMetrics(metrics).
		WithMountDelay(time.Duration(cfg.Desktop.MountDelayMS) * time.Millisecond)

	store, err := storage.New(cfg.Storage.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	sessions := session.NewManager(rt, wm, store, logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}
	router.Use(monitoring.Middleware(metrics))

	s := &Server{
		router:   router,
		wm:       wm,
		runtime:  rt,
		registry: reg,
		sessions: sessions,
		bus:      bus,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	handlers := apihttp.NewHandlers(s.wm, s.runtime, s.registry, s.sessions)
	wsHandler := ws.NewHandler(s.wm, s.runtime, s.bus, s.logger, s.metrics)

	s.router.GET("/", handlers.Root)
	s.router.GET("/health", handlers.Health)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.router.GET("/apps", handlers.ListApps)
	s.router.POST("/apps/:id/launch", handlers.LaunchApp)

	s.router.GET("/windows", handlers.ListWindows)
	s.router.GET("/taskbar", handlers.Taskbar)
	s.router.POST("/windows/:id/focus", handlers.WindowOp((*window.Manager).Focus))
	s.router.POST("/windows/:id/minimize", handlers.WindowOp((*window.Manager).Minimize))
	s.router.POST("/windows/:id/restore", handlers.WindowOp((*window.Manager).Restore))
	s.router.POST("/windows/:id/maximize", handlers.WindowOp((*window.Manager).Maximize))
	s.router.POST("/windows/:id/close", handlers.WindowOp((*window.Manager).Close))

	s.router.GET("/sessions", handlers.ListSessions)
	s.router.POST("/sessions", handlers.SaveSession)
	s.router.POST("/sessions/:id/restore", handlers.RestoreSession)
	s.router.DELETE("/sessions/:id", handlers.DeleteSession)

	s.router.GET("/ws", wsHandler.HandleConnection)
}

// RegisterApp adds an application to the runtime catalogue.
func (s *Server) RegisterApp(desc types.Descriptor, app runtime.App) error {
	return s.runtime.Register(desc, app)
}

// Runtime exposes the application runtime for embedding callers.
func (s *Server) Runtime() *runtime.Runtime { return s.runtime }

// Windows exposes the window manager for embedding callers.
func (s *Server) Windows() *window.Manager { return s.wm }

// Run starts serving and blocks until the server stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%s", s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{Addr: addr, Handler: s.router}

	s.logger.Info("deskos core listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts the server down gracefully.
func (s *Server) Close() error {
	if s.http == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}
