package cmd

import (
	"fmt"
	"os"

	"staybook/config"
	"staybook/utils"

	"github.com/spf13/cobra"
)

// NewRootCommand creates the root command for the staybook service.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staybook",
		Short: "Room booking and payment reconciliation service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.LoadConfig()
			utils.InitializeLogger()
		},
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCommand())
	cmd.AddCommand(NewWorkerCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSeedRoomsCommand())

	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
