package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Geometry of the test volume: one reserved sector, one allocation table
// sector and four data clusters at one sector per cluster.
const (
	testSectorSize   = 512
	testImageSectors = 6
)

const testFileContent = "Hello, World!"

// testBinaryContent is no valid UTF-8.
var testBinaryContent = []byte{0xFF, 0xFE, 0xFD, 0xFC}

// testVolumeBytes builds a minimal valid FAT32 volume holding a label
// record, HELLO.TXT, the empty directory SUBDIR and BINARY.DAT.
func testVolumeBytes() []byte {
	buf := make([]byte, testImageSectors*testSectorSize)

	copy(buf[3:11], "fatnav  ")
	binary.LittleEndian.PutUint16(buf[11:13], testSectorSize)
	buf[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(buf[14:16], 1)
	buf[16] = 1 // allocation tables
	binary.LittleEndian.PutUint32(buf[32:36], testImageSectors)
	binary.LittleEndian.PutUint32(buf[36:40], 1)
	binary.LittleEndian.PutUint32(buf[44:48], 2)
	binary.LittleEndian.PutUint32(buf[67:71], 0x1234ABCD)
	copy(buf[71:82], "CMDTEST    ")
	copy(buf[82:90], "FAT32   ")
	binary.LittleEndian.PutUint16(buf[510:512], 0xAA55)

	// Every cluster holds exactly one chain link, all of them terminal.
	fat := buf[testSectorSize : 2*testSectorSize]
	for _, cluster := range []int{2, 3, 4, 5} {
		binary.LittleEndian.PutUint32(fat[cluster*4:cluster*4+4], 0x0FFFFFF8)
	}

	// Root directory in cluster 2, contents in the clusters after it.
	root := buf[2*testSectorSize:]
	writeTestRecord(root[0:], "CMDTEST    ", 0x08, 0, 0)
	writeTestRecord(root[32:], "HELLO   TXT", 0x20, 3, uint32(len(testFileContent)))
	writeTestRecord(root[64:], "SUBDIR     ", 0x10, 4, 0)
	writeTestRecord(root[96:], "BINARY  DAT", 0x20, 5, uint32(len(testBinaryContent)))

	copy(buf[3*testSectorSize:], testFileContent)
	copy(buf[5*testSectorSize:], testBinaryContent)

	return buf
}

func writeTestRecord(record []byte, name string, attr byte, firstCluster, size uint32) {
	copy(record[0:11], name)
	record[11] = attr
	binary.LittleEndian.PutUint16(record[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(record[26:28], uint16(firstCluster&0xFFFF))
	binary.LittleEndian.PutUint32(record[28:32], size)
}

// writeTestImage drops the test volume into a temporary file.
func writeTestImage(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "volume.img")
	if err := os.WriteFile(path, testVolumeBytes(), 0o600); err != nil {
		t.Fatalf("writing test image: %v", err)
	}

	return path
}

// writeTestDiskImage embeds the test volume at a partition offset inside a
// larger image, simulating a whole disk image. It returns the image path and
// the partition window.
func writeTestDiskImage(t *testing.T) (string, partitionRange) {
	t.Helper()

	volume := testVolumeBytes()
	window := partitionRange{start: 8 * testSectorSize, size: int64(len(volume))}

	disk := make([]byte, window.start+window.size)
	copy(disk[window.start:], volume)

	path := filepath.Join(t.TempDir(), "disk.img")
	if err := os.WriteFile(path, disk, 0o600); err != nil {
		t.Fatalf("writing test disk image: %v", err)
	}

	return path, window
}

// clearEnv removes the FATNAV variables for one test so the host
// environment cannot leak in. t.Setenv registers the restore, the variable
// itself is removed right away.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FATNAV_IMAGE", "FATNAV_PARTITION", "FATNAV_VERBOSE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// stubPartitionTable replaces readPartitionTable for one test and counts the
// calls.
func stubPartitionTable(t *testing.T, ranges []partitionRange, err error) *int {
	t.Helper()

	calls := 0
	old := readPartitionTable
	readPartitionTable = func(path string) ([]partitionRange, error) {
		calls++
		if err != nil {
			return nil, err
		}
		return ranges, nil
	}
	t.Cleanup(func() { readPartitionTable = old })

	return &calls
}
