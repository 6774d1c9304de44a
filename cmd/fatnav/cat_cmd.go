package main

import (
	"github.com/spf13/cobra"
)

// createCatCommand creates the cat subcommand.
func createCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <file>",
		Short: "print the contents of a file on the volume",
		Args:  cobra.ExactArgs(1),
		RunE:  executeCat,
	}
}

// executeCat handles the cat command execution.
func executeCat(cmd *cobra.Command, args []string) error {
	volume, err := openVolume(imagePath, partition)
	if err != nil {
		return err
	}

	data, err := volume.ReadFile(args[0])
	if err != nil {
		return err
	}

	printFileData(cmd.OutOrStdout(), data)
	return nil
}
