package main

import (
	"github.com/aligator/fatnav"
	"github.com/spf13/cobra"
)

// createLsCommand creates the ls subcommand.
func createLsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "list a directory of the volume",
		Args:  cobra.MaximumNArgs(1),
		RunE:  executeLs,
	}
}

// executeLs handles the ls command execution.
func executeLs(cmd *cobra.Command, args []string) error {
	path := fatnav.Separator
	if len(args) > 0 {
		path = args[0]
	}

	volume, err := openVolume(imagePath, partition)
	if err != nil {
		return err
	}

	entries, err := volume.List(path)
	if err != nil {
		return err
	}

	printEntries(cmd.OutOrStdout(), entries)
	return nil
}
