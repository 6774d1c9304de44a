package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"unicode/utf16"

	"github.com/aligator/fatnav"
)

// Geometry of the generated volume: 512 byte sectors, one sector per
// cluster, 32 reserved sectors and two allocation tables of 16 sectors each.
const (
	sectorSize      = 512
	reservedSectors = 32
	sectorsPerFAT   = 16
	dataSectors     = 256
)

// main writes a small FAT32 demo image to play with fatnav. The optional
// argument overrides the output filename.
func main() {
	out := "demo.img"
	if len(os.Args) > 1 {
		out = os.Args[1]
	}

	img := buildImage()

	// Make sure the navigator accepts what we just built before writing it
	// out.
	volume, err := fatnav.NewVolume(img.buf)
	if err != nil {
		fmt.Println("generated image does not decode:", err)
		os.Exit(1)
	}

	if err := os.WriteFile(out, img.buf, 0644); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("wrote volume '%s' (%d bytes) to %s\n", volume.Label(), len(img.buf), out)
}

// buildImage assembles the demo volume in memory. A long name record holds
// at most 13 characters, so "a long name.txt" needs two fragments, stored in
// reverse with the tail first.
func buildImage() *image {
	img := newImage()

	img.writeRecords(2,
		shortRecord("FATNAV DEMO", fatnav.AttrVolumeLabel, 0, 0),
		shortRecord("README  TXT", fatnav.AttrArchive, 3, uint32(len(readmeText))),
		shortRecord("SUBDIR     ", fatnav.AttrDirectory, 4, 0),
		lfnRecord(0x42, "xt"),
		lfnRecord(0x01, "a long name.t"),
		shortRecord("ALONGN~1TXT", fatnav.AttrArchive, 6, uint32(len(longNameText))),
		shortRecord("EMPTY   DAT", fatnav.AttrArchive, 0, 0),
	)

	img.chain(3)
	img.writeCluster(3, []byte(readmeText))

	img.chain(4)
	img.writeRecords(4,
		shortRecord(".          ", fatnav.AttrDirectory, 4, 0),
		shortRecord("..         ", fatnav.AttrDirectory, 0, 0),
		shortRecord("NOTES   TXT", fatnav.AttrArchive, 5, uint32(len(notesText))),
	)

	img.chain(5)
	img.writeCluster(5, []byte(notesText))

	img.chain(6)
	img.writeCluster(6, []byte(longNameText))

	return img
}

const (
	readmeText   = "This image was generated by mkimage for fatnav.\n"
	notesText    = "some notes\n"
	longNameText = "reachable as 'a long name.txt' or 'ALONGN~1.TXT'\n"
)

// image is the volume under construction. The boot sector is written by
// newImage, everything else through the helpers below.
type image struct {
	buf  []byte
	boot fatnav.BootSector
}

func newImage() *image {
	size := (reservedSectors + 2*sectorsPerFAT + dataSectors) * sectorSize
	buf := make([]byte, size)
	copy(buf, bootSector())

	boot, err := fatnav.DecodeBootSector(buf)
	if err != nil {
		panic(err)
	}

	img := &image{buf: buf, boot: boot}

	// Reserved entries 0 and 1 as written by real formatters.
	img.setFAT(0, 0x0FFFFFF8)
	img.setFAT(1, 0x0FFFFFFF)
	// Root directory occupies a single cluster.
	img.setFAT(2, 0x0FFFFFFF)

	return img
}

// bootSector returns a boot sector for the generated geometry.
func bootSector() []byte {
	buf := make([]byte, sectorSize)

	// Jump instruction and OEM name.
	buf[0] = 0xEB
	buf[1] = 0x58
	buf[2] = 0x90
	copy(buf[3:11], "MSWIN4.1")

	binary.LittleEndian.PutUint16(buf[11:13], sectorSize)
	buf[13] = 1 // sectors per cluster
	binary.LittleEndian.PutUint16(buf[14:16], reservedSectors)
	buf[16] = 2 // number of FATs
	buf[21] = 0xF8
	binary.LittleEndian.PutUint16(buf[24:26], 63)  // sectors per track
	binary.LittleEndian.PutUint16(buf[26:28], 255) // heads
	binary.LittleEndian.PutUint32(buf[32:36], uint32(reservedSectors+2*sectorsPerFAT+dataSectors))
	binary.LittleEndian.PutUint32(buf[36:40], sectorsPerFAT)
	binary.LittleEndian.PutUint32(buf[44:48], 2) // root cluster
	binary.LittleEndian.PutUint16(buf[48:50], 1) // FSInfo sector
	binary.LittleEndian.PutUint16(buf[50:52], 6) // backup boot sector
	buf[64] = 0x80
	buf[66] = 0x29
	binary.LittleEndian.PutUint32(buf[67:71], 0x1234ABCD)
	copy(buf[71:82], "FATNAV DEMO")
	copy(buf[82:90], "FAT32   ")
	binary.LittleEndian.PutUint16(buf[510:512], 0xAA55)

	return buf
}

// setFAT writes an allocation table entry into both table copies.
func (img *image) setFAT(cluster, value uint32) {
	for copyNum := int64(0); copyNum < int64(img.boot.NumFATs); copyNum++ {
		off := img.boot.FATOffset() + copyNum*img.boot.FATSize() + int64(cluster)*4
		binary.LittleEndian.PutUint32(img.buf[off:off+4], value)
	}
}

// chain links the given clusters into a chain, terminating the last one.
func (img *image) chain(clusters ...uint32) {
	for i, cluster := range clusters {
		if i == len(clusters)-1 {
			img.setFAT(cluster, 0x0FFFFFFF)
			continue
		}
		img.setFAT(cluster, clusters[i+1])
	}
}

// writeCluster copies data to the start of the given cluster.
func (img *image) writeCluster(cluster uint32, data []byte) {
	off := img.boot.ClusterOffset(cluster)
	copy(img.buf[off:], data)
}

// writeRecords concatenates 32 byte directory records into the given
// cluster. The remainder of the cluster stays zeroed which terminates the
// directory.
func (img *image) writeRecords(cluster uint32, records ...[]byte) {
	var data []byte
	for _, record := range records {
		data = append(data, record...)
	}
	img.writeCluster(cluster, data)
}

// shortRecord builds an 8.3 directory record. The name must already be the
// raw 11 byte form, for example "README  TXT".
func shortRecord(name string, attr byte, firstCluster, size uint32) []byte {
	record := make([]byte, 32)
	copy(record[0:11], name)
	record[11] = attr
	binary.LittleEndian.PutUint16(record[20:22], uint16(firstCluster>>16))
	binary.LittleEndian.PutUint16(record[26:28], uint16(firstCluster))
	binary.LittleEndian.PutUint32(record[28:32], size)
	return record
}

// lfnRecord builds a long name record carrying up to 13 characters of the
// name. seq is the raw sequence byte including the 0x40 flag on the last
// fragment.
func lfnRecord(seq byte, part string) []byte {
	record := make([]byte, 32)
	record[0] = seq
	record[11] = fatnav.AttrLongName
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
