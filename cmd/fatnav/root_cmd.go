package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// The persistent flag targets. PersistentPreRunE backfills them from the
// environment and the config file when a flag was not given on the command
// line, so every subcommand sees the merged configuration.
var (
	imagePath string
	partition int
	verbose   bool
)

// createRootCommand builds the command tree.
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "navigate FAT32 disk images",
		Long: `fatnav reads FAT32 volume images as well as whole disk images and offers
read only navigation: volume information, directory listings, file contents
and an interactive shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if !cmd.Flag("image").Changed {
				imagePath = cfg.Image
			}
			if !cmd.Flag("partition").Changed {
				partition = cfg.Partition
			}
			if !cmd.Flag("verbose").Changed {
				verbose = cfg.Verbose
			}

			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			log.Debugf("using image %q, partition %d", imagePath, partition)
			return nil
		},
	}

	rootCmd.AddCommand(createInfoCommand())
	rootCmd.AddCommand(createLsCommand())
	rootCmd.AddCommand(createCatCommand())
	rootCmd.AddCommand(createShellCommand())

	rootCmd.PersistentFlags().StringVarP(&imagePath, "image", "i", "", "path to the FAT32 volume or whole disk image")
	rootCmd.PersistentFlags().IntVarP(&partition, "partition", "p", 0, "partition holding the volume, counted from 1; 0 tries the whole image first and then scans the partition table")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return rootCmd
}
