package main

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ridergate/internal/platform/config"
	"ridergate/internal/platform/logger"
	"ridergate/internal/platform/migrations"
	"ridergate/internal/platform/postgres"
)

func migrateCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the database schema",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.Up(db); err != nil {
				return err
			}
			logger.New(cfg.Log.Level, cfg.Log.Format).Info("migrations applied")
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}
			db, err := openDatabase(cmd, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := migrations.Down(db, steps); err != nil {
				return err
			}
			logger.New(cfg.Log.Level, cfg.Log.Format).Info("migrations rolled back", "steps", steps)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}

func openDatabase(cmd *cobra.Command, cfg *config.Config) (*sql.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required (RIDERGATE_DATABASE_URL)")
	}
	return postgres.Open(cmd.Context(), cfg.Database)
}
