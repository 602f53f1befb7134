// Package cli is the bussfix command line tool. It plays games locally
// against the rules engine without a server.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bussfix",
		Short: "Local tools for the bussfix drinking card game",
		Long: `bussfix runs games against the rules engine on your machine.

Use "simulate" to watch seated bots play a whole game with a fixed seed,
which makes it easy to reproduce a rules question.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newSimulateCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
