package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xskcdf/Aquiis-sub005/internal/application/port"
	"github.com/xskcdf/Aquiis-sub005/internal/application/service"
	"github.com/xskcdf/Aquiis-sub005/internal/config"
	"github.com/xskcdf/Aquiis-sub005/internal/container"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/persistence/gormstore"
	"github.com/xskcdf/Aquiis-sub005/internal/infrastructure/worker"
	"github.com/xskcdf/Aquiis-sub005/pkg/database"
	"github.com/xskcdf/Aquiis-sub005/pkg/utils"
)

const version = "1.0.0"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "aquiis",
		Short:         "Aquiis property-management workflow service",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logger.level")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newSweepCmd(opts),
		newDividendsCmd(opts),
	)
	return root
}

func (o *rootOptions) load() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if o.logLevel != "" {
		cfg.Logger.Level = o.logLevel
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

// startOneShot starts a container without background workers or metrics
func (o *rootOptions) startOneShot(ctx context.Context) (*container.Container, error) {
	cfg, logger, err := o.load()
	if err != nil {
		return nil, err
	}

	cc := cfg.ToContainerConfig()
	cc.Workflow.SweepEnabled = false
	cc.Metrics.Enabled = false

	c, err := container.NewContainer(cc, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background expiry sweeper",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			logger.Info("Starting Aquiis workflow service",
				zap.String("version", version),
				zap.Int("port", cfg.Server.Port))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, err := container.NewContainer(cfg.ToContainerConfig(), logger)
			if err != nil {
				return err
			}
			if err := c.Start(ctx); err != nil {
				_ = c.Close()
				return err
			}
			defer c.Close()

			return c.HTTPServer().Start(ctx)
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and show their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load()
			if err != nil {
				return err
			}
			defer logger.Sync()

			cc := cfg.ToContainerConfig()
			db, err := container.ProvideDatabase(&cc.Database, logger)
			if err != nil {
				return err
			}
			defer database.Close(db, logger)

			applied, err := database.NewMigrator(db, logger).Applied()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-8s  %-30s  %-8s\n", "Version", "Name", "Status")
			for _, m := range gormstore.Migrations() {
				status := "Pending"
				if applied[m.Version] {
					status = "Applied"
				}
				fmt.Fprintf(out, "%-8d  %-30s  %-8s\n", m.Version, m.Name, status)
			}
			return nil
		},
	}
}

func newSweepCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one expiry sweep over every organization",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.startOneShot(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			sweeper := worker.NewExpirySweeper(c.Config().Workflow.Sweeper, c.Services().Maintenance, c.Logger())
			report := sweeper.SweepOnce(cmd.Context())
			if err := sweeper.Stats().LastError; err != nil {
				return fmt.Errorf("sweep finished with errors: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}
}

type actorFlags struct {
	userID         string
	organizationID string
}

func (f *actorFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.organizationID, "org", "", "organization id")
	cmd.Flags().StringVar(&f.userID, "user", port.SystemUserID, "acting user id")
	_ = cmd.MarkFlagRequired("org")
}

func (f *actorFlags) context(ctx context.Context) context.Context {
	return port.WithActor(ctx, f.userID, f.organizationID)
}

func newDividendsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dividends",
		Short: "Security deposit investment pool operations",
	}
	cmd.AddCommand(newCalculateCmd(opts), newExportCmd(opts))
	return cmd
}

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	var (
		actor    actorFlags
		year     int
		earnings string
		starting string
		ending   string
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate a year's dividends from the pool's earnings",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := service.PoolEarnings{}
			for _, f := range []struct {
				name string
				raw  string
				dst  *decimal.Decimal
			}{
				{"earnings", earnings, &in.TotalEarnings},
				{"starting-balance", starting, &in.StartingBalance},
				{"ending-balance", ending, &in.EndingBalance},
			} {
				d, err := decimal.NewFromString(f.raw)
				if err != nil {
					return fmt.Errorf("invalid --%s: %w", f.name, err)
				}
				*f.dst = d
			}

			c, err := opts.startOneShot(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			res := c.Services().Deposits.CalculateDividends(actor.context(cmd.Context()), year, in)
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			if !res.Success {
				return fmt.Errorf("%s", res.Message)
			}
			return nil
		},
	}

	actor.bind(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "pool year")
	cmd.Flags().StringVar(&earnings, "earnings", "0", "total earnings for the year")
	cmd.Flags().StringVar(&starting, "starting-balance", "0", "pool balance at the start of the year")
	cmd.Flags().StringVar(&ending, "ending-balance", "0", "pool balance at the end of the year")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	var (
		actor actorFlags
		year  int
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a year's dividend report as an xlsx workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = fmt.Sprintf("dividends-%d.xlsx", year)
			}

			c, err := opts.startOneShot(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}

			res := c.Services().Deposits.ExportDividendReport(actor.context(cmd.Context()), year, file)
			closeErr := file.Close()
			if !res.Success {
				_ = os.Remove(out)
				return fmt.Errorf("%s", res.Message)
			}
			if closeErr != nil {
				return fmt.Errorf("failed to write %s: %w", out, closeErr)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", out)
			return nil
		},
	}

	actor.bind(cmd)
	cmd.Flags().IntVar(&year, "year", 0, "pool year")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default dividends-<year>.xlsx)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
