package main

import (
	"github.com/spf13/cobra"

	jurisdictionstore "ridergate/internal/jurisdiction/store"
	"ridergate/internal/platform/config"
	"ridergate/internal/platform/logger"
)

func seedCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the jurisdiction directory",
		Long: `Insert the Ogun State local government areas. Rows whose code
already exists are left untouched, so the command is safe to rerun.`,
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

			inserted, err := jurisdictionstore.NewPostgres(db).Seed(cmd.Context())
			if err != nil {
				return err
			}
			logger.New(cfg.Log.Level, cfg.Log.Format).Info("jurisdictions seeded",
				"inserted", inserted,
				"total", len(jurisdictionstore.OgunLGAs),
			)
			return nil
		},
	}
}
