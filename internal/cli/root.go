// Package cli implements the taskboard command line.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dtroode/taskboard/internal/config"
	"github.com/dtroode/taskboard/internal/database"
	"github.com/dtroode/taskboard/internal/logger"
	"github.com/dtroode/taskboard/internal/model"
	"github.com/dtroode/taskboard/internal/repository/postgres"
	"github.com/dtroode/taskboard/internal/repository/sqlite"
)

// RootOptions holds the configuration shared by all commands.
type RootOptions struct {
	Config *config.Config
	Logger *logger.Logger

	driver string
	mode   string
}

// NewRootCommand creates the taskboard command. Configuration is read from
// the environment unless opts already carries one.
func NewRootCommand(opts *RootOptions, version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "taskboard",
		Short:   "Task board persistence with an append-only event log",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "storage driver (postgres|sqlite), overrides STORAGE_DRIVER")
	cmd.PersistentFlags().StringVar(&opts.mode, "mode", "", "persistence mode (eventsourcing|state), overrides PERSISTENCE_MODE")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewEventsCommand(opts))
	cmd.AddCommand(NewArchiveCommand(opts))

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	if o.Config == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return err
		}
		o.Config = cfg
	}
	if o.Logger == nil {
		o.Logger = logger.New(o.Config.LogLevel)
	}

	if cmd.Flags().Changed("driver") {
		o.Config.StorageDriver = o.driver
	}
	if cmd.Flags().Changed("mode") {
		o.Config.PersistenceMode = o.mode
	}
	return nil
}

// openStorage connects to the configured backend and applies migrations.
func openStorage(ctx context.Context, cfg *config.Config) (model.Storage, error) {
	switch cfg.StorageDriver {
	case database.DriverPostgres:
		return postgres.NewConection(ctx, cfg.Database.DSN)
	case database.DriverSQLite:
		return sqlite.Open(ctx, cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
