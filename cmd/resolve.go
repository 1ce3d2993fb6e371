package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/BergenFellesverksted/felles-sykkeldelautomat/config"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/db"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/repository"
	"github.com/BergenFellesverksted/felles-sykkeldelautomat/internal/service"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [code]",
	Short: "Resolve a code against the local replica without side effects",
	Args:  cobra.ExactArgs(1),
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

		resolver := service.NewResolver(
			repository.NewOrderRepository(gormDB),
			repository.NewPendingActionRepository(gormDB),
			cfg.Kiosk.GraceWindow,
		)

		res, err := resolver.Resolve(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("outcome: %s\n", res.Outcome)
		if res.OrderID != 0 {
			fmt.Printf("order:   %d\n", res.OrderID)
		}
		if res.Action != "" {
			fmt.Printf("action:  %s\n", res.Action)
		}
		if len(res.Doors) > 0 {
			fmt.Printf("doors:   %v\n", res.Doors)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
