package main

import (
	"fmt"
	"os"

	"github.com/aligator/fatnav"
	diskfs "github.com/diskfs/go-diskfs"
	log "github.com/sirupsen/logrus"
)

// partitionRange is the byte window of one partition inside a disk image.
type partitionRange struct {
	start int64
	size  int64
}

// readPartitionTable lists the partition windows of a disk image in table
// order. It is a variable so tests can stub it out, diskfs only operates on
// real files.
var readPartitionTable = func(path string) ([]partitionRange, error) {
	disk, err := diskfs.Open(path)
	if err != nil {
		return nil, err
	}
	defer disk.Close()

	table, err := disk.GetPartitionTable()
	if err != nil {
		return nil, err
	}

	partitions := table.GetPartitions()
	ranges := make([]partitionRange, 0, len(partitions))
	for _, p := range partitions {
		ranges = append(ranges, partitionRange{start: p.GetStart(), size: p.GetSize()})
	}

	return ranges, nil
}

// openVolume loads the image at path and decodes the FAT32 volume inside it.
// With number 0 the image itself is tried first and, failing that, the
// partitions are scanned in table order for the first one holding a volume.
// A positive number selects that partition, counted from 1.
func openVolume(path string, number int) (*fatnav.Volume, error) {
	if path == "" {
		return nil, fmt.Errorf("no image given, use --image or %s_IMAGE", envVarPrefix)
	}
	if number < 0 {
		return nil, fmt.Errorf("partition number must not be negative, got %d", number)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	if number == 0 {
		volume, err := fatnav.NewVolume(data)
		if err == nil {
			return volume, nil
		}
		log.Debugf("image is no bare volume, trying the partition table: %v", err)
	}

	ranges, err := readPartitionTable(path)
	if err != nil {
		return nil, fmt.Errorf("reading partition table: %w", err)
	}

	if number > 0 {
		return volumeFromPartition(data, ranges, number)
	}

	for i := range ranges {
		volume, err := volumeFromPartition(data, ranges, i+1)
		if err != nil {
			log.Debugf("partition %d holds no FAT32 volume: %v", i+1, err)
			continue
		}
		log.Debugf("using partition %d", i+1)
		return volume, nil
	}

	return nil, fmt.Errorf("no FAT32 volume found in %s", path)
}

// volumeFromPartition decodes the volume inside the given partition, counted
// from 1 in partition table order.
func volumeFromPartition(data []byte, ranges []partitionRange, number int) (*fatnav.Volume, error) {
	if number < 1 || number > len(ranges) {
		return nil, fmt.Errorf("partition %d does not exist, the image has %d partitions", number, len(ranges))
	}

	r := ranges[number-1]
	if r.start < 0 || r.size <= 0 || r.start+r.size > int64(len(data)) {
		return nil, fmt.Errorf("partition %d exceeds the image bounds", number)
	}

	return fatnav.NewVolume(data[r.start : r.start+r.size])
}
