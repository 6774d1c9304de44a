package main

import (
	"encoding/json"
	"fmt"

	"github.com/aligator/fatnav"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// volumeSummary is the info payload. One struct serves all output formats.
type volumeSummary struct {
	Image             string `json:"image" yaml:"image"`
	Label             string `json:"label" yaml:"label"`
	Type              string `json:"type" yaml:"type"`
	OEMName           string `json:"oemName" yaml:"oemName"`
	VolumeID          string `json:"volumeID" yaml:"volumeID"`
	BytesPerSector    uint16 `json:"bytesPerSector" yaml:"bytesPerSector"`
	SectorsPerCluster uint8  `json:"sectorsPerCluster" yaml:"sectorsPerCluster"`
	ClusterSize       int64  `json:"clusterSize" yaml:"clusterSize"`
	ReservedSectors   uint16 `json:"reservedSectors" yaml:"reservedSectors"`
	NumFATs           uint8  `json:"numFATs" yaml:"numFATs"`
	SectorsPerFAT     uint32 `json:"sectorsPerFAT" yaml:"sectorsPerFAT"`
	RootCluster       uint32 `json:"rootCluster" yaml:"rootCluster"`
	TotalSectors      uint32 `json:"totalSectors" yaml:"totalSectors"`
}

// Output format flag of the info subcommand.
var infoFormat string

// createInfoCommand creates the info subcommand.
func createInfoCommand() *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "print volume identity and geometry",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch infoFormat {
			case "text", "json", "yaml":
				return nil
			default:
				return fmt.Errorf("unsupported --format %q (supported: text, json, yaml)", infoFormat)
			}
		},
		RunE: executeInfo,
	}

	infoCmd.Flags().StringVar(&infoFormat, "format", "text", "output format, one of text, json, yaml")

	return infoCmd
}

// executeInfo handles the info command execution.
func executeInfo(cmd *cobra.Command, args []string) error {
	volume, err := openVolume(imagePath, partition)
	if err != nil {
		return err
	}

	return writeSummary(cmd, summarize(volume, imagePath), infoFormat)
}

// summarize collects the identity and geometry of an open volume.
func summarize(volume *fatnav.Volume, image string) *volumeSummary {
	boot := volume.BootSector()
	return &volumeSummary{
		Image:             image,
		Label:             volume.Label(),
		Type:              volume.Type(),
		OEMName:           boot.OEM(),
		VolumeID:          fmt.Sprintf("%04X-%04X", boot.VolumeID>>16, boot.VolumeID&0xFFFF),
		BytesPerSector:    boot.BytesPerSector,
		SectorsPerCluster: boot.SectorsPerCluster,
		ClusterSize:       boot.ClusterSize(),
		ReservedSectors:   boot.ReservedSectors,
		NumFATs:           boot.NumFATs,
		SectorsPerFAT:     boot.SectorsPerFAT,
		RootCluster:       boot.RootCluster,
		TotalSectors:      boot.TotalSectors,
	}
}

// writeSummary renders the summary in the requested format.
func writeSummary(cmd *cobra.Command, summary *volumeSummary, format string) error {
	out := cmd.OutOrStdout()

	switch format {
	case "text":
		fmt.Fprintf(out, "Image:               %s\n", summary.Image)
		fmt.Fprintf(out, "Label:               %s\n", summary.Label)
		fmt.Fprintf(out, "Type:                %s\n", summary.Type)
		fmt.Fprintf(out, "OEM name:            %s\n", summary.OEMName)
		fmt.Fprintf(out, "Volume ID:           %s\n", summary.VolumeID)
		fmt.Fprintf(out, "Bytes per sector:    %d\n", summary.BytesPerSector)
		fmt.Fprintf(out, "Sectors per cluster: %d\n", summary.SectorsPerCluster)
		fmt.Fprintf(out, "Cluster size:        %d\n", summary.ClusterSize)
		fmt.Fprintf(out, "Reserved sectors:    %d\n", summary.ReservedSectors)
		fmt.Fprintf(out, "Allocation tables:   %d\n", summary.NumFATs)
		fmt.Fprintf(out, "Sectors per table:   %d\n", summary.SectorsPerFAT)
		fmt.Fprintf(out, "Root cluster:        %d\n", summary.RootCluster)
		fmt.Fprintf(out, "Total sectors:       %d\n", summary.TotalSectors)
		return nil

	case "json":
		b, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal json: %w", err)
		}
		fmt.Fprintln(out, string(b))
		return nil

	case "yaml":
		b, err := yaml.Marshal(summary)
		if err != nil {
			return fmt.Errorf("marshal yaml: %w", err)
		}
		fmt.Fprint(out, string(b))
		return nil

	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
