package container

import (
	"fmt"
	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xskcdf/Aquiis-sub005/internal/application/executor"
	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/export"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/worker"
	apihttp "github.com/xskcdf/Aquiis-sub005/internal/interfaces/http"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
	"github.com/xskcdf/Aquiis-sub005/pkg/utils"
)

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Directory    service.DirectoryService
	Applications service.ApplicationService
	LeaseOffers  service.LeaseOfferService
	Tours        service.TourService
	Deposits     service.DepositService
	Maintenance  service.MaintenanceService
}

// HTTP returns the subset served over the API.
func (b *ServiceBundle) HTTP() apihttp.Services {
	return apihttp.Services{
		Directory:    b.Directory,
		Applications: b.Applications,
		LeaseOffers:  b.LeaseOffers,
		Tours:        b.Tours,
		Deposits:     b.Deposits,
	}
}

// ServiceDeps contains dependencies for creating services.
type ServiceDeps struct {
	Store    *gormstore.Store
	Metrics  *executor.Metrics
	Clock    port.Clock
	Workflow *WorkflowConfig
	Logger   *zap.Logger
}

// ProvideDatabase opens the configured database and applies pending migrations.
func ProvideDatabase(cfg *database.Config, logger *zap.Logger) (*gorm.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.Open(*cfg, logger)
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrator(db, logger).RunMigrations(gormstore.Migrations()); err != nil {
		_ = database.Close(db, logger)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// ProvideMetrics creates the registry and the workflow collectors registered on it.
// When disabled the collectors still count but nothing is exported.
func ProvideMetrics(cfg *MetricsConfig) (*prometheus.Registry, *executor.Metrics) {
	if cfg == nil || !cfg.Enabled {
		return nil, executor.NewMetrics(nil)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, executor.NewMetrics(reg)
}

// ProvideServices creates all application services.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil || deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = port.SystemClock
	}
	users := port.ContextUserContext{}

	shared := service.Deps{
		TxManager: deps.Store,
		Executor:  executor.New(deps.Store, deps.Logger, deps.Metrics),
		Audit:     executor.NewAuditLogger(deps.Store, users, clock, deps.Metrics),
		Users:     users,
		Clock:     clock,
		Logger:    utils.NewKeyValueLogger(deps.Logger),
	}

	opts := service.MaintenanceOptions{}
	if deps.Workflow != nil {
		opts.BatchSize = deps.Workflow.BatchSize
		opts.AuditTransitions = deps.Workflow.AuditBackgroundTransitions
	}

	return &ServiceBundle{
		Directory:    service.NewDirectoryService(shared),
		Applications: service.NewApplicationService(shared),
		LeaseOffers:  service.NewLeaseOfferService(shared),
		Tours:        service.NewTourService(shared),
		Deposits:     service.NewDepositService(shared, export.NewDividendReportWriter(deps.Logger)),
		Maintenance:  service.NewMaintenanceService(shared, opts),
	}, nil
}

// ProvideWorkers creates the worker manager and registers the enabled workers.
func ProvideWorkers(cfg *WorkflowConfig, maintenance service.MaintenanceService, logger *zap.Logger) (*worker.WorkerManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("workflow config is required")
	}

	manager := worker.NewWorkerManager(logger)
	if cfg.SweepEnabled {
		manager.Register(worker.NewExpirySweeper(cfg.Sweeper, maintenance, logger))
	}
	return manager, nil
}

// ProvideHTTPServer creates the API server. A nil registry serves no metrics.
func ProvideHTTPServer(cfg apihttp.ServerConfig, services *ServiceBundle, reg *prometheus.Registry, logger *zap.Logger) *apihttp.Server {
	var metrics nethttp.Handler
	if reg != nil {
		metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	}
	return apihttp.NewServer(cfg, services.HTTP(), metrics, utils.NewKeyValueLogger(logger))
}
