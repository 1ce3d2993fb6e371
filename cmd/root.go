package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Flags
	cfgPath string

	// Root command
	rootCmd = &cobra.Command{
		Use:   "sykkeldelautomat",
		Short: "Self-service parts locker kiosk",
		Long: `Self-service parts locker kiosk.

Resolves entered pickup and booking codes against a local replica of the
web shop's orders, opens the matching locker doors, and reconciles completed
actions back to the web shop whenever connectivity allows.`,
	}
)

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "directory containing config.yaml")
}
