package container

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/worker"
	apihttp "github.com/xskcdf/Aquiis-sub005/internal/interfaces/http"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
)

// Container manages all application dependencies and lifecycle.
// Components start in dependency order and are torn down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger
	clock  port.Clock

	// Infrastructure
	db       *gorm.DB
	store    *gormstore.Store
	registry *prometheus.Registry

	// Application
	services *ServiceBundle
	server   *apihttp.Server

	// Workers
	workers *worker.WorkerManager

	// Lifecycle
	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	ready  atomic.Bool
	closed atomic.Bool
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// Option customizes a Container.
type Option func(*Container)

// WithClock overrides the wall clock used by the services.
func WithClock(clock port.Clock) Option {
	return func(c *Container) { c.clock = clock }
}

// NewContainer creates a new container from configuration.
// It does not initialize components - call Start() to initialize.
func NewContainer(cfg *Config, logger *zap.Logger, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	c := &Container{
		config: cfg,
		logger: logger,
		clock:  port.SystemClock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start initializes all components:
// 1. Database and store
// 2. Metrics and application services
// 3. HTTP server (built, not listening)
// 4. Workers
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.logger.Info("Starting container initialization")

	db, err := ProvideDatabase(&c.config.Database, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.db = db
	c.store = gormstore.NewStore(db, c.logger)
	c.logger.Info("Database initialized")

	registry, metrics := ProvideMetrics(&c.config.Metrics)
	c.registry = registry

	services, err := ProvideServices(&ServiceDeps{
		Store:    c.store,
		Metrics:  metrics,
		Clock:    c.clock,
		Workflow: &c.config.Workflow,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	c.services = services
	c.logger.Info("Application services initialized")

	c.server = ProvideHTTPServer(c.config.Server, c.services, c.registry, c.logger)

	workers, err := ProvideWorkers(&c.config.Workflow, c.services.Maintenance, c.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize workers: %w", err)
	}
	c.workers = workers
	if err := c.workers.StartAll(c.ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	c.logger.Info("Workers started", zap.Int("count", c.workers.GetWorkerCount()))

	c.ready.Store(true)
	c.logger.Info("Container started successfully")
	return nil
}

// Close gracefully shuts down all components in reverse order.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}

	c.logger.Info("Closing container")

	var errs []error

	if c.cancel != nil {
		c.cancel()
	}

	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			c.logger.Error("Failed to stop workers", zap.Error(err))
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}

	if c.server != nil {
		if err := c.server.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop http server: %w", err))
		}
	}

	if c.db != nil {
		if err := database.Close(c.db, c.logger); err != nil {
			c.logger.Error("Failed to close database", zap.Error(err))
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	c.closed.Store(true)
	c.ready.Store(false)

	if len(errs) > 0 {
		c.logger.Error("Container closed with errors", zap.Int("error_count", len(errs)))
		return fmt.Errorf("container closed with %d errors", len(errs))
	}

	c.logger.Info("Container closed successfully")
	return nil
}

// Ready returns true when all components are initialized.
func (c *Container) Ready() bool {
	return c.ready.Load()
}

// Health returns health status of all components.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Overall:    true,
		Components: make(map[string]ComponentHealth),
	}

	fail := func(name, msg string) {
		status.Components[name] = ComponentHealth{Healthy: false, Message: msg}
		status.Overall = false
	}

	if c.db == nil {
		fail("database", "not initialized")
	} else if sqlDB, err := c.db.DB(); err != nil {
		fail("database", err.Error())
	} else if err := sqlDB.PingContext(ctx); err != nil {
		fail("database", fmt.Sprintf("ping failed: %v", err))
	} else {
		status.Components["database"] = ComponentHealth{Healthy: true}
	}

	switch {
	case c.workers == nil:
		fail("workers", "not initialized")
	case c.workers.GetWorkerCount() > 0 && !c.workers.IsRunning():
		fail("workers", "stopped")
	default:
		status.Components["workers"] = ComponentHealth{
			Healthy: true,
			Message: fmt.Sprintf("worker count: %d", c.workers.GetWorkerCount()),
		}
	}

	if c.services == nil {
		fail("services", "not initialized")
	} else {
		status.Components["services"] = ComponentHealth{Healthy: true}
	}

	return status
}

// Store returns the transaction manager.
func (c *Container) Store() *gormstore.Store {
	return c.store
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// HTTPServer returns the API server.
func (c *Container) HTTPServer() *apihttp.Server {
	return c.server
}

// Workers returns the worker manager.
func (c *Container) Workers() *worker.WorkerManager {
	return c.workers
}

// Registry returns the Prometheus registry, nil when metrics are disabled.
func (c *Container) Registry() *prometheus.Registry {
	return c.registry
}

// Logger returns the container's logger.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Config returns the container's configuration.
func (c *Container) Config() *Config {
	return c.config
}
