package cmd

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the local database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		gormDB, err := db.Connect(cfg.Database)
		if err != nil {
			return err
		}

		log.Info().Str("path", cfg.Database.Path).Msg("Running database migrations")
		if err := db.Migrate(gormDB); err != nil {
			return err
		}

		log.Info().Msg("Database migrations completed successfully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
