package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "data/aquiis.db", cfg.Database.Path)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, 15*time.Minute, cfg.Workflow.SweepInterval)
	assert.Equal(t, 100, cfg.Workflow.SweepBatchSize)
	assert.False(t, cfg.Workflow.AuditBackgroundTransitions)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  path: /tmp/test.db
workflow:
  sweep_interval: 1m
  audit_background_transitions: true
logger:
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "/tmp/test.db", cfg.Database.Path)
	assert.Equal(t, time.Minute, cfg.Workflow.SweepInterval)
	assert.True(t, cfg.Workflow.AuditBackgroundTransitions)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("AQUIIS_SERVER_PORT", "9191")
	t.Setenv("AQUIIS_WORKFLOW_SWEEP_BATCH_SIZE", "25")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Workflow.SweepBatchSize)
}

func TestLoad_DatabaseURL(t *testing.T) {
	t.Setenv("AQUIIS_DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://aquiis@localhost/aquiis")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://aquiis@localhost/aquiis", cfg.Database.DSN)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AQUIIS_SERVER_PORT=7070\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("AQUIIS_SERVER_PORT")
	})

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Driver: "sqlite", Path: "data/aquiis.db"},
			Logger:   LoggerConfig{Format: "json"},
			Workflow: WorkflowConfig{SweepEnabled: true, SweepInterval: time.Minute},
			Metrics:  MetricsConfig{Enabled: true, Path: "/metrics"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported database.driver"},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, "database.dsn is required"},
		{"sqlite without path", func(c *Config) { c.Database.Path = "" }, "database.path or database.dsn"},
		{"bad log format", func(c *Config) { c.Logger.Format = "xml" }, "logger.format"},
		{"zero sweep interval", func(c *Config) { c.Workflow.SweepInterval = 0 }, "workflow.sweep_interval"},
		{"sweep disabled ignores interval", func(c *Config) {
			c.Workflow.SweepEnabled = false
			c.Workflow.SweepInterval = 0
		}, ""},
		{"negative batch", func(c *Config) { c.Workflow.SweepBatchSize = -1 }, "workflow.sweep_batch_size"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestToContainerConfig(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://localhost/aquiis
workflow:
  sweep_interval: 2m
  sweep_batch_size: 10
  audit_background_transitions: true
metrics:
  path: /internal/metrics
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	cc := cfg.ToContainerConfig()
	require.NoError(t, cc.Validate())
	assert.Equal(t, "postgres", cc.Database.Driver)
	assert.Equal(t, "postgres://localhost/aquiis", cc.Database.DSN)
	assert.Equal(t, 2*time.Minute, cc.Workflow.Sweeper.Interval)
	assert.Equal(t, 5*time.Minute, cc.Workflow.Sweeper.Timeout)
	assert.Equal(t, 10, cc.Workflow.BatchSize)
	assert.True(t, cc.Workflow.AuditBackgroundTransitions)
	assert.Equal(t, "/internal/metrics", cc.Server.MetricsPath)
	assert.True(t, cc.Metrics.Enabled)
}
