package main

import (
	"github.com/spf13/cobra"
)

// createShellCommand creates the shell subcommand.
func createShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "interactively navigate the volume",
		Long: `Shell starts an interactive session on the opened volume. The working
directory persists between commands and command errors do not end the
session.`,
		Args: cobra.NoArgs,
		RunE: executeShell,
	}
}

// executeShell handles the shell command execution.
func executeShell(cmd *cobra.Command, args []string) error {
	volume, err := openVolume(imagePath, partition)
	if err != nil {
		return err
	}

	s := &shell{
		volume: volume,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}

	return s.run(cmd.InOrStdin())
}
