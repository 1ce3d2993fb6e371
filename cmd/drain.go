package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
)

var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Retry queued action reports once and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgPath)
		if err != nil {
			return err
		}

		gormDB, err := db.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := db.Migrate(gormDB); err != nil {
			return err
		}

		drainer := service.NewDrainer(repository.NewPendingActionRepository(gormDB), remote.NewClient(cfg.Remote))
		resolved := drainer.DrainOnce(context.Background())
		log.Info().Int("resolved", resolved).Msg("Drain finished")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(drainCmd)
}
