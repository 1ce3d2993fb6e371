package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/remote"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch orders from the authority once and exit",
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

		syncer := service.NewSyncer(repository.NewOrderRepository(gormDB), remote.NewClient(cfg.Remote))
		return syncer.SyncNow(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
