package fatnav

import (
	"encoding/binary"
	"strings"

	"github.com/aligator/fatnav/checkpoint"
)

// bootSectorSize is the minimum number of bytes DecodeBootSector needs.
// Volumes with larger sectors still keep the BPB inside the first 512 bytes.
const bootSectorSize = 512

// BootSector is the decoded BIOS parameter block of a FAT32 volume.
// Only the fields the navigator needs are decoded, everything else in the
// first sector (jump code, disk geometry hints, FSInfo pointers, boot code)
// is ignored.
type BootSector struct {
	// OEMName is the raw 8 byte OEM identifier. Use OEM for a trimmed version.
	OEMName           string
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	// TotalSectors is the 32 bit sector count. FAT32 volumes leave the
	// legacy 16 bit count at offset 19 zeroed.
	TotalSectors  uint32
	SectorsPerFAT uint32
	RootCluster   uint32
	VolumeID      uint32
	// VolumeLabel is the raw 11 byte label. Use Label for a trimmed version.
	VolumeLabel string
	// FSType is the raw 8 byte filesystem type tag. Use Type for a trimmed
	// version. Note that this tag is informational, drivers must not rely
	// on it to classify the FAT variant.
	FSType string
}

// DecodeBootSector decodes the BIOS parameter block from the first sector of
// a volume. It fails with ErrInvalidBootSector if the buffer is shorter than
// 512 bytes, if the filesystem type tag does not start with "FAT3" or if the
// 0xAA55 signature at the end of the sector is missing.
//
// The type tag check is intentionally loose: any tag with the "FAT3" prefix
// is accepted, not just the canonical "FAT32   ".
func DecodeBootSector(buf []byte) (BootSector, error) {
	if len(buf) < bootSectorSize {
		return BootSector{}, checkpoint.Wrapf(ErrInvalidBootSector, "boot sector too short: %d bytes", len(buf))
	}

	bs := BootSector{
		OEMName:           string(buf[3:11]),
		BytesPerSector:    binary.LittleEndian.Uint16(buf[11:13]),
		SectorsPerCluster: buf[13],
		ReservedSectors:   binary.LittleEndian.Uint16(buf[14:16]),
		NumFATs:           buf[16],
		TotalSectors:      binary.LittleEndian.Uint32(buf[32:36]),
		SectorsPerFAT:     binary.LittleEndian.Uint32(buf[36:40]),
		RootCluster:       binary.LittleEndian.Uint32(buf[44:48]),
		VolumeID:          binary.LittleEndian.Uint32(buf[67:71]),
		VolumeLabel:       string(buf[71:82]),
		FSType:            string(buf[82:90]),
	}

	if !strings.HasPrefix(bs.FSType, "FAT3") {
		return BootSector{}, checkpoint.Wrapf(ErrInvalidBootSector, "not a FAT32 volume: filesystem type %q", bs.FSType)
	}

	if binary.LittleEndian.Uint16(buf[510:512]) != 0xAA55 {
		return BootSector{}, checkpoint.Wrapf(ErrInvalidBootSector, "missing 0xAA55 boot signature")
	}

	return bs, nil
}

// ClusterSize returns the size of one cluster in bytes.
func (b BootSector) ClusterSize() int64 {
	return int64(b.BytesPerSector) * int64(b.SectorsPerCluster)
}

// FATOffset returns the byte offset of the first allocation table.
// The tables start directly after the reserved region.
func (b BootSector) FATOffset() int64 {
	return int64(b.ReservedSectors) * int64(b.BytesPerSector)
}

// FATSize returns the size of one allocation table in bytes.
func (b BootSector) FATSize() int64 {
	return int64(b.SectorsPerFAT) * int64(b.BytesPerSector)
}

// DataOffset returns the byte offset of the data region which holds the
// clusters. All copies of the allocation table precede it.
func (b BootSector) DataOffset() int64 {
	return b.FATOffset() + int64(b.NumFATs)*b.FATSize()
}

// ClusterOffset returns the byte offset of the given cluster inside the data
// region. The first data cluster is cluster 2, the caller must not pass a
// smaller number.
func (b BootSector) ClusterOffset(cluster uint32) int64 {
	return b.DataOffset() + int64(cluster-2)*b.ClusterSize()
}

// OEM returns the OEM name without trailing padding.
func (b BootSector) OEM() string {
	return strings.TrimRight(b.OEMName, " \x00")
}

// Label returns the volume label without trailing padding.
// Note that most formatters also write the label as a volume label record in
// the root directory, this accessor only reads the boot sector copy.
func (b BootSector) Label() string {
	return strings.TrimRight(b.VolumeLabel, " \x00")
}

// Type returns the filesystem type tag without trailing padding.
func (b BootSector) Type() string {
	return strings.TrimRight(b.FSType, " \x00")
}
