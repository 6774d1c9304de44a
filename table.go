package fatnav

import (
	"encoding/binary"

	"github.com/aligator/fatnav/checkpoint"
)

// Special allocation table entry values after masking. Everything between
// fatEntryFree and fatEntryBad that is at least 2 links to the next cluster
// of a chain.
const (
	fatEntryMask uint32 = 0x0FFFFFFF
	fatEntryFree uint32 = 0x00000000
	fatEntryBad  uint32 = 0x0FFFFFF7
	fatEntryEOC  uint32 = 0x0FFFFFF8
)

// fatEntry is a single allocation table entry. The four reserved high bits
// are already masked off.
type fatEntry uint32

// Value returns the masked 28 bit entry value.
func (e fatEntry) Value() uint32 {
	return uint32(e)
}

// IsFree reports whether the cluster is unallocated.
func (e fatEntry) IsFree() bool {
	return uint32(e) == fatEntryFree
}

// IsBad reports whether the cluster is marked defective.
func (e fatEntry) IsBad() bool {
	return uint32(e) == fatEntryBad
}

// IsEOC reports whether the entry terminates a cluster chain.
func (e fatEntry) IsEOC() bool {
	return uint32(e) >= fatEntryEOC
}

// IsNextCluster reports whether the entry links to another cluster.
func (e fatEntry) IsNextCluster() bool {
	return !e.IsFree() && !e.IsBad() && !e.IsEOC()
}

// NextCluster returns the linked cluster number. The result is only
// meaningful if IsNextCluster reports true.
func (e fatEntry) NextCluster() uint32 {
	return uint32(e)
}

// AllocationTable is one decoded copy of the file allocation table.
// It is immutable after decoding.
type AllocationTable struct {
	entries []fatEntry
}

// DecodeAllocationTable decodes a full allocation table copy. Each entry is
// four little endian bytes of which only the low 28 bits carry the value.
// It fails with ErrInvalidFat if the buffer length is not a multiple of four.
func DecodeAllocationTable(buf []byte) (AllocationTable, error) {
	if len(buf)%4 != 0 {
		return AllocationTable{}, checkpoint.Wrapf(ErrInvalidFat, "allocation table size %d is not a multiple of 4", len(buf))
	}

	entries := make([]fatEntry, 0, len(buf)/4)
	for i := 0; i < len(buf); i += 4 {
		entries = append(entries, fatEntry(binary.LittleEndian.Uint32(buf[i:i+4])&fatEntryMask))
	}

	return AllocationTable{entries: entries}, nil
}

// Entry returns the entry for the given cluster. It fails with ErrInvalidFat
// if the cluster lies outside the table.
func (t AllocationTable) Entry(cluster uint32) (fatEntry, error) {
	if cluster >= uint32(len(t.entries)) {
		return 0, checkpoint.Wrapf(ErrInvalidFat, "cluster %d out of table bounds (%d entries)", cluster, len(t.entries))
	}
	return t.entries[cluster], nil
}

// IsEndOfChain reports whether the entry for the given cluster terminates a
// chain. Clusters outside the table count as end of chain.
func (t AllocationTable) IsEndOfChain(cluster uint32) bool {
	if cluster >= uint32(len(t.entries)) {
		return true
	}
	return t.entries[cluster].IsEOC()
}

// IsBadCluster reports whether the given cluster is marked defective.
// Clusters outside the table count as defective.
func (t AllocationTable) IsBadCluster(cluster uint32) bool {
	if cluster >= uint32(len(t.entries)) {
		return true
	}
	return t.entries[cluster].IsBad()
}

// IsFree reports whether the given cluster is unallocated. Clusters outside
// the table count as allocated.
func (t AllocationTable) IsFree(cluster uint32) bool {
	if cluster >= uint32(len(t.entries)) {
		return false
	}
	return t.entries[cluster].IsFree()
}

// Len returns the number of entries in the table.
func (t AllocationTable) Len() int {
	return len(t.entries)
}
