package fatnav

import (
	"encoding/binary"
	"testing"
	"unicode/utf16"
)

// Geometry of the test volume: 512 byte sectors, one sector per cluster,
// 32 reserved sectors and two allocation tables of 100 sectors each.
const (
	testSectorSize      = 512
	testReservedSectors = 32
	testSectorsPerFAT   = 100
	testDataSectors     = 1000
)

// testBootSector returns a valid boot sector for the test geometry.
func testBootSector() []byte {
	buf := make([]byte, testSectorSize)

	// Jump instruction and OEM name.
	buf[0] = 0xEB
	buf[1] = 0x58
	buf[2] = 0x90
	copy(buf[3:11], "MSWIN4.1")

	binary.LittleEndian.PutUint16(buf[11:13], testSectorSize)
	buf[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(buf[14:16], testReservedSectors)
	buf[16] = 2 // number of FATs
	buf[21] = 0xF8
	binary.LittleEndian.PutUint16(buf[24:26], 63)  // sectors per track
	binary.LittleEndian.PutUint16(buf[26:28], 255) // heads
	binary.LittleEndian.PutUint32(buf[32:36], 102400)
	binary.LittleEndian.PutUint32(buf[36:40], testSectorsPerFAT)
	binary.LittleEndian.PutUint32(buf[44:48], 2) // root cluster
	binary.LittleEndian.PutUint16(buf[48:50], 1) // FSInfo sector
	binary.LittleEndian.PutUint16(buf[50:52], 6) // backup boot sector
	buf[64] = 0x80
	buf[66] = 0x29
	binary.LittleEndian.PutUint32(buf[67:71], 0x1234ABCD)
	copy(buf[71:82], "NO NAME    ")
	copy(buf[82:90], "FAT32   ")
	binary.LittleEndian.PutUint16(buf[510:512], 0xAA55)

	return buf
}

// testImage is an in-memory FAT32 volume for tests. It starts out with an
// empty root directory at cluster 2 and both allocation table copies zeroed
// except for the reserved entries and the root chain.
type testImage struct {
	buf  []byte
	boot BootSector
}

func newTestImage(t *testing.T) *testImage {
	t.Helper()

	size := (testReservedSectors + 2*testSectorsPerFAT + testDataSectors) * testSectorSize
	buf := make([]byte, size)
	copy(buf, testBootSector())

	boot, err := DecodeBootSector(buf)
	if err != nil {
		t.Fatalf("DecodeBootSector() on fixture: %v", err)
	}

	img := &testImage{buf: buf, boot: boot}

	// Reserved entries 0 and 1 as written by real formatters.
	img.setFAT(0, 0x0FFFFFF8)
	img.setFAT(1, 0x0FFFFFFF)
	// Root directory occupies a single cluster.
	img.setFAT(2, 0x0FFFFFFF)

	return img
}

// setFAT writes an allocation table entry into both table copies.
func (img *testImage) setFAT(cluster, value uint32) {
	for copyNum := int64(0); copyNum < int64(img.boot.NumFATs); copyNum++ {
		off := img.boot.FATOffset() + copyNum*img.boot.FATSize() + int64(cluster)*4
		binary.LittleEndian.PutUint32(img.buf[off:off+4], value)
	}
}

// chain links the given clusters into a chain, terminating the last one.
func (img *testImage) chain(clusters ...uint32) {
	for i, cluster := range clusters {
		if i == len(clusters)-1 {
			img.setFAT(cluster, 0x0FFFFFFF)
			continue
		}
		img.setFAT(cluster, clusters[i+1])
	}
}

// writeCluster copies data to the start of the given cluster.
func (img *testImage) writeCluster(cluster uint32, data []byte) {
	off := img.boot.ClusterOffset(cluster)
	copy(img.buf[off:], data)
}

// writeRecords concatenates 32 byte directory records into the given cluster.
// The remainder of the cluster stays zeroed which terminates the directory.
func (img *testImage) writeRecords(cluster uint32, records ...[]byte) {
	img.writeCluster(cluster, concatRecords(records...))
}

func concatRecords(records ...[]byte) []byte {
	var data []byte
	for _, record := range records {
		data = append(data, record...)
	}
	return data
}

// shortRecord builds an 8.3 directory record. The name must already be the
// raw 11 byte form, for example "HELLO   TXT".
func shortRecord(name string, attr byte, firstCluster, size uint32) []byte {
	record := make([]byte, 32)
	copy(record[0:11], name)
	record[11] = attr
	binary.LittleEndian.PutUint16(record[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(record[26:28], uint16(firstCluster))
	binary.LittleEndian.PutUint32(record[28:32], size)
	return record
}

// testEntry is the decoded counterpart of shortRecord.
func testEntry(name string, attr byte, firstCluster, size uint32, longName string) DirectoryEntry {
	var rawName [11]byte
	copy(rawName[:], name)
	return DirectoryEntry{
		EntryHeader: EntryHeader{
			Name:           rawName,
			Attribute:      attr,
			FirstClusterHI: uint16(firstCluster >> 16),
			FirstClusterLO: uint16(firstCluster),
			FileSize:       size,
		},
		LongName: longName,
	}
}

// Cluster layout of navigatorImage. The corrupt clusters are referenced by
// directory records but left free in the allocation table.
const (
	testClusterHello    uint32 = 3
	testClusterSubdir   uint32 = 4
	testClusterLongName uint32 = 5
	testClusterNotes    uint32 = 6
	testClusterBig      uint32 = 7 // chained to 8
	testClusterCorrupt  uint32 = 9
	testClusterNested   uint32 = 10
	testClusterDeep     uint32 = 11
	testClusterBadDir   uint32 = 12
)

const testBigFileSize = 700

// testPattern returns n deterministic bytes for file content checks.
func testPattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}
	return data
}

// navigatorImage builds an image with a small directory tree:
//
//	HELLO.TXT               "Hello, World!"
//	SUBDIR/NOTES.TXT        "some text"
//	SUBDIR/NESTED/DEEP.TXT  "deep!"
//	a long name.txt         "data", 8.3 alias ALONGN~1.TXT
//	EMPTY.DAT               size 0, no data cluster
//	BADCHAIN.BIN            first cluster left free, the chain is corrupt
//	BIG.DAT                 700 bytes spanning two clusters
//	ZERODIR/                directory record without a data cluster
//	BADDIR/                 directory record with a corrupt chain
//
// The root additionally holds a FATNAVTEST volume label record.
func navigatorImage(t *testing.T) *testImage {
	t.Helper()

	img := newTestImage(t)

	img.writeRecords(2,
		shortRecord("FATNAVTEST ", AttrVolumeLabel, 0, 0),
		shortRecord("HELLO   TXT", AttrArchive, testClusterHello, 13),
		shortRecord("SUBDIR     ", AttrDirectory, testClusterSubdir, 0),
		lfnRecord(0x42, "xt"),
		lfnRecord(0x01, "a long name.t"),
		shortRecord("ALONGN~1TXT", AttrArchive, testClusterLongName, 4),
		shortRecord("EMPTY   DAT", AttrArchive, 0, 0),
		shortRecord("BADCHAINBIN", AttrArchive, testClusterCorrupt, 4),
		shortRecord("BIG     DAT", AttrArchive, testClusterBig, testBigFileSize),
		shortRecord("ZERODIR    ", AttrDirectory, 0, 0),
		shortRecord("BADDIR     ", AttrDirectory, testClusterBadDir, 0),
	)

	img.chain(testClusterHello)
	img.writeCluster(testClusterHello, []byte("Hello, World!"))

	img.chain(testClusterSubdir)
	img.writeRecords(testClusterSubdir,
		shortRecord(".          ", AttrDirectory, testClusterSubdir, 0),
		shortRecord("..         ", AttrDirectory, 0, 0),
		shortRecord("NOTES   TXT", AttrArchive, testClusterNotes, 9),
		shortRecord("NESTED     ", AttrDirectory, testClusterNested, 0),
	)

	img.chain(testClusterLongName)
	img.writeCluster(testClusterLongName, []byte("data"))

	img.chain(testClusterNotes)
	img.writeCluster(testClusterNotes, []byte("some text"))

	pattern := testPattern(2 * testSectorSize)
	img.chain(testClusterBig, testClusterBig+1)
	img.writeCluster(testClusterBig, pattern[:testSectorSize])
	img.writeCluster(testClusterBig+1, pattern[testSectorSize:])

	img.chain(testClusterNested)
	img.writeRecords(testClusterNested,
		shortRecord(".          ", AttrDirectory, testClusterNested, 0),
		shortRecord("..         ", AttrDirectory, testClusterSubdir, 0),
		shortRecord("DEEP    TXT", AttrArchive, testClusterDeep, 5),
	)

	img.chain(testClusterDeep)
	img.writeCluster(testClusterDeep, []byte("deep!"))

	return img
}

// navigatorVolume decodes navigatorImage into a fresh Volume.
func navigatorVolume(t *testing.T) *Volume {
	t.Helper()

	v, err := NewVolume(navigatorImage(t).buf)
	if err != nil {
		t.Fatalf("NewVolume() on fixture: %v", err)
	}

	return v
}

// lfnRecord builds a long name record carrying up to 13 characters of the
// name. seq is the raw sequence byte including the 0x40 flag on the last
// fragment.
func lfnRecord(seq byte, part string) []byte {
	record := make([]byte, 32)
	record[0] = seq
	record[11] = AttrLongName
	record[13] = 0x42 // checksum, not verified by the decoder

	units := utf16.Encode([]rune(part))
	padded := make([]uint16, 13)
	for i := range padded {
		switch {
		case i < len(units):
			padded[i] = units[i]
		case i == len(units):
			padded[i] = 0x0000
		default:
			padded[i] = 0xFFFF
		}
	}

	for i, unit := range padded[0:5] {
		binary.LittleEndian.PutUint16(record[1+i*2:3+i*2], unit)
	}
	for i, unit := range padded[5:11] {
		binary.LittleEndian.PutUint16(record[14+i*2:16+i*2], unit)
	}
	for i, unit := range padded[11:13] {
		binary.LittleEndian.PutUint16(record[28+i*2:30+i*2], unit)
	}

	return record
}
