package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/config"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/storage"
)

var downSteps int

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the Postgres schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := migrationSetup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return storage.MigrateUp(cfg.DBDSN, logger)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := migrationSetup()
		if err != nil {
			return err
		}
		defer logger.Sync()
		return storage.MigrateDown(cfg.DBDSN, downSteps, logger)
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&downSteps, "steps", 1, "Number of migrations to roll back")
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func migrationSetup() (*config.Config, *internal.ZapLogger, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DBType != "postgres" {
		return nil, nil, errors.New("migrations apply only to STORAGE_BACKEND=postgres")
	}
	logger, err := internal.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
