package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "typeduel",
		Short: "Realtime typing race server",
		Long: `typeduel coordinates multiplayer typing races over websockets.

Players create or join rooms, signal readiness, and race against each other
on a shared passage; the server arbitrates the countdown, relays progress
between opponents and declares the winner.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
