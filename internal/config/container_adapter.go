package config

import (
	"github.com/xskcdf/Aquiis-sub005/internal/container"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/worker"
	apihttp "github.com/xskcdf/Aquiis-sub005/internal/interfaces/http"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
)

// ToContainerConfig converts the file-based configuration loaded by viper
// into the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: database.Config{
			Driver:          c.Database.Driver,
			DSN:             c.Database.DSN,
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
			LogLevel:        c.Database.LogLevel,
			SlowThreshold:   c.Database.SlowThreshold,
		},
		Server: apihttp.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
			MetricsPath:  c.Metrics.Path,
		},
		Workflow: container.WorkflowConfig{
			SweepEnabled: c.Workflow.SweepEnabled,
			Sweeper: worker.ExpirySweeperConfig{
				Interval: c.Workflow.SweepInterval,
				Timeout:  c.Workflow.SweepTimeout,
			},
			BatchSize:                  c.Workflow.SweepBatchSize,
			AuditBackgroundTransitions: c.Workflow.AuditBackgroundTransitions,
		},
		Metrics: container.MetricsConfig{
			Enabled: c.Metrics.Enabled,
		},
	}
}
