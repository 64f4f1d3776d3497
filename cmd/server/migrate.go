package main

import (
	"errors"

	"github.com/spf13/cobra"

	"artemiz/internal/platform/config"
	"artemiz/internal/platform/logger"
	"artemiz/internal/platform/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		log := logger.New(cfg.LogFormat, cfg.LogLevel)

		db, err := postgres.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		if db == nil {
			return errors.New("ARTEMIZ_DATABASE_URL is not set")
		}
		defer db.Close()

		if err := postgres.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info("database schema applied")
		return nil
	},
}
