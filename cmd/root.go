package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rimgik/clipper/internal/config"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clipper",
		Short:         "clipper: share a clipboard between machines",
		Long:          "clipper keeps the clipboards of several machines in sync: one machine runs the hub, every machine runs a peer, and the most recent copy wins everywhere.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cfg, err := config.Load(nil)
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newHubCmd(cfg),
		newPeerCmd(cfg),
	)

	return rootCmd
}
