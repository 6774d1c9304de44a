package fatnav

import (
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/aligator/fatnav/checkpoint"
)

// recordSize is the fixed size of one directory record.
const recordSize = 32

// Directory record attribute bits. AttrLongName is the exact attribute value
// that marks long name records, not a bit mask.
const (
	AttrReadOnly    byte = 0x01
	AttrHidden      byte = 0x02
	AttrSystem      byte = 0x04
	AttrVolumeLabel byte = 0x08
	AttrDirectory   byte = 0x10
	AttrArchive     byte = 0x20
	AttrLongName    byte = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel
)

// Markers in the first byte of a record.
const (
	recordEndMarker     byte = 0x00
	recordDeletedMarker byte = 0xE5
)

// Long name sequence byte: the low six bits carry the fragment number, the
// 0x40 flag marks the last fragment of a name.
const (
	longNameSeqMask  byte = 0x3F
	longNameLastFlag byte = 0x40
)

// EntryHeader matches the on disk layout of one 8.3 directory record.
type EntryHeader struct {
	Name            [11]byte
	Attribute       byte
	NTReserved      byte
	CreateTimeTenth byte
	CreateTime      uint16
	CreateDate      uint16
	LastAccessDate  uint16
	FirstClusterHI  uint16
	WriteTime       uint16
	WriteDate       uint16
	FirstClusterLO  uint16
	FileSize        uint32
}

// DirectoryEntry is a decoded directory record together with the long name
// assembled from the long name records preceding it, if there were any.
type DirectoryEntry struct {
	EntryHeader
	LongName string
}

// IsDirectory reports whether the record describes a directory.
func (h EntryHeader) IsDirectory() bool {
	return h.Attribute&AttrDirectory != 0
}

// IsVolumeLabel reports whether the record is a volume label.
func (h EntryHeader) IsVolumeLabel() bool {
	return h.Attribute&AttrVolumeLabel != 0
}

// IsFile reports whether the record describes a regular file, meaning it is
// neither a directory nor a volume label.
func (h EntryHeader) IsFile() bool {
	return !h.IsDirectory() && !h.IsVolumeLabel()
}

// FirstCluster combines the split cluster field into the full cluster number.
func (h EntryHeader) FirstCluster() uint32 {
	return uint32(h.FirstClusterHI)<<16 | uint32(h.FirstClusterLO)
}

// ShortName returns the 8.3 name with the padding stripped, rendered as
// NAME.EXT or just NAME for records without an extension.
func (h EntryHeader) ShortName() string {
	name := strings.TrimRight(string(h.Name[:8]), " ")
	ext := strings.TrimRight(string(h.Name[8:11]), " ")

	if ext != "" {
		name += "."
	}

	return name + ext
}

// Name returns the long name if one was decoded, the 8.3 name otherwise.
func (e DirectoryEntry) Name() string {
	if e.LongName != "" {
		return e.LongName
	}
	return e.ShortName()
}

func decodeEntryHeader(record []byte) EntryHeader {
	var h EntryHeader
	copy(h.Name[:], record[0:11])
	h.Attribute = record[11]
	h.NTReserved = record[12]
	h.CreateTimeTenth = record[13]
	h.CreateTime = binary.LittleEndian.Uint16(record[14:16])
	h.CreateDate = binary.LittleEndian.Uint16(record[16:18])
	h.LastAccessDate = binary.LittleEndian.Uint16(record[18:20])
	h.FirstClusterHI = binary.LittleEndian.Uint16(record[20:22])
	h.WriteTime = binary.LittleEndian.Uint16(record[22:24])
	h.WriteDate = binary.LittleEndian.Uint16(record[24:26])
	h.FirstClusterLO = binary.LittleEndian.Uint16(record[26:28])
	h.FileSize = binary.LittleEndian.Uint32(record[28:32])
	return h
}

// DecodeRecord decodes a single directory record. It fails with
// ErrDirectoryRecord if the record is shorter than 32 bytes, unused (first
// byte 0x00) or deleted (first byte 0xE5). Long name records decode like any
// other record here, folding them is the job of DecodeDirectory.
func DecodeRecord(record []byte) (DirectoryEntry, error) {
	if len(record) < recordSize {
		return DirectoryEntry{}, checkpoint.Wrapf(ErrDirectoryRecord, "record too short: %d bytes", len(record))
	}
	if record[0] == recordEndMarker || record[0] == recordDeletedMarker {
		return DirectoryEntry{}, checkpoint.Wrapf(ErrDirectoryRecord, "record is unused or deleted (0x%02X)", record[0])
	}

	return DirectoryEntry{EntryHeader: decodeEntryHeader(record)}, nil
}

// longNameFragment is the sequence number and the 13 UTF-16 units of one
// long name record.
type longNameFragment struct {
	seq   byte
	units []uint16
}

// decodeLongNameFragment extracts the fragment carried by a long name record.
// It reports false for records that fail the long name validity checks, the
// type byte and the unused first cluster field must both be zero.
func decodeLongNameFragment(record []byte) (longNameFragment, bool) {
	if record[12] != 0 || binary.LittleEndian.Uint16(record[26:28]) != 0 {
		return longNameFragment{}, false
	}

	units := make([]uint16, 0, 13)
	for i := 0; i < 5; i++ {
		units = append(units, binary.LittleEndian.Uint16(record[1+i*2:3+i*2]))
	}
	for i := 0; i < 6; i++ {
		units = append(units, binary.LittleEndian.Uint16(record[14+i*2:16+i*2]))
	}
	for i := 0; i < 2; i++ {
		units = append(units, binary.LittleEndian.Uint16(record[28+i*2:30+i*2]))
	}

	return longNameFragment{seq: record[0] & longNameSeqMask, units: units}, true
}

// assembleLongName sorts the fragments into sequence order and concatenates
// them, taking each fragment's units up to its null or 0xFFFF padding, and
// decodes the result as UTF-16. On disk the fragments are stored in reverse,
// the tail of the name comes first, so the sequence numbers restore the
// logical order.
func assembleLongName(fragments []longNameFragment) string {
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].seq < fragments[j].seq
	})

	var units []uint16
	for _, fragment := range fragments {
		for _, unit := range fragment.units {
			if unit == 0x0000 || unit == 0xFFFF {
				break
			}
			units = append(units, unit)
		}
	}
	return string(utf16.Decode(units))
}

// DecodeDirectory decodes all records of one directory. data must be the
// concatenation of the directory's clusters in chain order. Scanning stops at
// the first unused record. Deleted records, volume labels and records that
// fail to decode are skipped, and skipping them also discards the long name
// fragments collected so far. An invalid long name record is skipped without
// discarding collected fragments.
//
// Long name fragments are collected until the 8.3 record that follows them
// and attached to it as LongName, ordered by their sequence numbers. The
// fragment flagged as last is stored first on disk and opens a new name,
// fragments left over from a sequence that never reached its 8.3 record are
// discarded at that point.
func DecodeDirectory(data []byte) []DirectoryEntry {
	var entries []DirectoryEntry
	var pending []longNameFragment

	for offset := 0; offset+recordSize <= len(data); offset += recordSize {
		record := data[offset : offset+recordSize]

		if record[0] == recordEndMarker {
			break
		}
		if record[0] == recordDeletedMarker {
			pending = pending[:0]
			continue
		}

		if record[11] == AttrLongName {
			fragment, ok := decodeLongNameFragment(record)
			if !ok {
				continue
			}
			if record[0]&longNameLastFlag != 0 {
				pending = pending[:0]
			}
			pending = append(pending, fragment)
			continue
		}

		entry, err := DecodeRecord(record)
		if err != nil {
			pending = pending[:0]
			continue
		}
		if entry.IsVolumeLabel() {
			pending = pending[:0]
			continue
		}

		if len(pending) > 0 {
			if name := assembleLongName(pending); name != "" {
				entry.LongName = name
			}
			pending = pending[:0]
		}

		entries = append(entries, entry)
	}

	return entries
}

// FindShortName scans directory records for an 8.3 name, comparing case
// insensitively. Long name records never participate in the lookup and
// deleted records are skipped. The boolean result reports whether a record
// was found, absence is not an error here, callers decide what it means.
func FindShortName(data []byte, name string) (DirectoryEntry, bool) {
	for offset := 0; offset+recordSize <= len(data); offset += recordSize {
		record := data[offset : offset+recordSize]

		if record[0] == recordEndMarker {
			break
		}
		if record[0] == recordDeletedMarker {
			continue
		}
		if record[11] == AttrLongName {
			continue
		}

		entry, err := DecodeRecord(record)
		if err != nil {
			continue
		}
		if strings.EqualFold(entry.ShortName(), name) {
			return entry, true
		}
	}

	return DirectoryEntry{}, false
}
