// Package container wires the workflow services, their storage and background workers,
// and owns their startup and shutdown order.
package container

import (
	"fmt"

	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/worker"
	apihttp "github.com/xskcdf/Aquiis-sub005/internal/interfaces/http"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
)

// Config holds all configuration for the Container.
type Config struct {
	Database database.Config
	Server   apihttp.ServerConfig
	Workflow WorkflowConfig
	Metrics  MetricsConfig
}

// WorkflowConfig holds background maintenance settings.
type WorkflowConfig struct {
	// SweepEnabled starts the expiry sweeper with the container
	SweepEnabled bool

	Sweeper worker.ExpirySweeperConfig

	// BatchSize bounds the rows changed per sweep transaction
	BatchSize int

	// AuditBackgroundTransitions records system-driven transitions in the audit log
	AuditBackgroundTransitions bool
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns a configuration for a local sqlite database.
func DefaultConfig() *Config {
	return &Config{
		Database: database.Config{
			Driver:       database.DriverSQLite,
			Path:         "data/aquiis.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			LogLevel:     "warn",
		},
		Server: apihttp.DefaultServerConfig(),
		Workflow: WorkflowConfig{
			SweepEnabled: true,
			Sweeper:      worker.DefaultExpirySweeperConfig(),
		},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Validate checks the settings the container cannot start without.
func (c *Config) Validate() error {
	if c.Database.Driver != database.DriverSQLite && c.Database.Driver != database.DriverPostgres && c.Database.Driver != "" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" && c.Database.Path == "" {
		return fmt.Errorf("database path or dsn is required")
	}
	if c.Workflow.SweepEnabled && c.Workflow.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}
