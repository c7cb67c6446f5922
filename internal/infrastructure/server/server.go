package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentOS/pipecore/internal/api/http"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/api/middleware"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/registry"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/task"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/domain/typeexpr"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/pipecore/internal/infrastructure/monitoring"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	tasks   *task.Manager
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// Option configures a Server
type Option func(*options)

type options struct {
	logger   *logging.Logger
	registry *prometheus.Registry
}

// WithLogger replaces the logger built from the config
func WithLogger(logger *logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPrometheusRegistry registers metrics on reg instead of a fresh registry
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Initialize logger
	logger := o.logger
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{
			Level:       cfg.Logging.Level,
			Development: cfg.Logging.Development,
			OutputPaths: []string{"stdout"},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	logger.Info("Initializing pipecore server",
		zap.String("port", cfg.Server.Port),
		zap.String("version", cfg.Version),
		zap.Int("pipe_capacity", cfg.Pipe.Capacity),
	)

	// Initialize metrics first (needed by other components)
	promReg := o.registry
	if promReg == nil {
		promReg = prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := monitoring.NewMetrics(promReg)

	// Type catalog
	catalog := typeexpr.NewCatalog()
	if cfg.Types.CatalogGlob != "" {
		loaded, err := typeexpr.LoadCatalog(cfg.Types.CatalogGlob)
		if err != nil {
			return nil, fmt.Errorf("failed to load type catalog: %w", err)
		}
		catalog = loaded
		logger.Info("Type catalog loaded",
			zap.String("pattern", cfg.Types.CatalogGlob),
			zap.Int("types", len(catalog.Names())),
		)
	}
	validator := typeexpr.NewValidator(catalog, cfg.Types.CacheSize)

	// Task runtime
	env := task.NewEnvironment(cfg.Version)
	tasks := task.NewManager(env, logger,
		registry.WithValidator(validator),
		registry.WithCapacity(cfg.Pipe.Capacity),
	).WithMetrics(metrics)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.AccessLog(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	// Register routes
	handlers := apihttp.NewHandlers(tasks, metrics, logger)
	handlers.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	var handler http.Handler = router
	if cfg.Server.Compression {
		handler = gzhttp.GzipHandler(router)
	}

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		tasks:   tasks,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Tasks returns the task manager behind the API
func (s *Server) Tasks() *task.Manager {
	return s.tasks
}

// Run starts the HTTP server and blocks until it stops. A clean Shutdown
// returns nil.
func (s *Server) Run() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and then
// finalizes every remaining task.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")

	err := s.http.Shutdown(ctx)
	if err != nil {
		s.logger.Error("HTTP shutdown incomplete", zap.Error(err))
	}

	if n := s.tasks.Shutdown(); n > 0 {
		s.logger.Info("Finalized remaining tasks", zap.Int("tasks", n))
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	if err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}
