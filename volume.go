package fatnav

import (
	"io"
	"strings"

	"github.com/aligator/fatnav/checkpoint"
)

// Volume navigates a FAT32 volume held completely in memory. The image and
// the structures decoded from it are immutable, the only mutable state is
// the working directory which ChangeDirectory replaces. A Volume performs no
// device I/O, callers hand it the full image once at construction.
//
// A Volume is not safe for concurrent use, callers running navigation from
// several goroutines must serialize access themselves.
type Volume struct {
	data  []byte
	boot  BootSector
	table AllocationTable
	cwd   Path
}

// NewVolume decodes a complete FAT32 volume image. Only the first allocation
// table copy is decoded, further copies are mirrors by contract. The volume
// takes ownership of data, it must not be modified afterwards. The working
// directory starts at the root.
func NewVolume(data []byte) (*Volume, error) {
	boot, err := DecodeBootSector(data)
	if err != nil {
		return nil, err
	}

	fatStart := boot.FATOffset()
	fatSize := boot.FATSize()
	if fatStart+fatSize > int64(len(data)) {
		return nil, checkpoint.Wrapf(ErrInvalidFat, "allocation table out of volume bounds")
	}

	table, err := DecodeAllocationTable(data[fatStart : fatStart+fatSize])
	if err != nil {
		return nil, err
	}

	return &Volume{
		data:  data,
		boot:  boot,
		table: table,
		cwd:   Root(),
	}, nil
}

// BootSector returns the decoded boot sector of the volume.
func (v *Volume) BootSector() BootSector {
	return v.boot
}

// Label returns the volume label. A label record in the root directory wins
// over the boot sector copy, formatters do not always keep both in sync.
func (v *Volume) Label() string {
	data, err := v.readChain(v.boot.RootCluster)
	if err == nil {
		for offset := 0; offset+recordSize <= len(data); offset += recordSize {
			record := data[offset : offset+recordSize]
			if record[0] == recordEndMarker {
				break
			}
			if record[0] == recordDeletedMarker || record[11] == AttrLongName {
				continue
			}
			if record[11]&AttrVolumeLabel != 0 {
				return strings.TrimRight(string(record[0:11]), " \x00")
			}
		}
	}

	return v.boot.Label()
}

// Type returns the filesystem type tag from the boot sector.
func (v *Volume) Type() string {
	return v.boot.Type()
}

// WorkingDirectory returns the rendered current path. It cannot fail.
func (v *Volume) WorkingDirectory() string {
	return v.cwd.String()
}

// List returns the entries of the directory at path in their on disk order.
// Relative paths resolve against the working directory.
func (v *Volume) List(path string) ([]DirectoryEntry, error) {
	target, err := v.targetPath(path)
	if err != nil {
		return nil, err
	}

	cluster, err := v.resolveDirectoryCluster(target)
	if err != nil {
		return nil, err
	}

	data, err := v.readChain(cluster)
	if err != nil {
		return nil, err
	}

	return DecodeDirectory(data), nil
}

// ReadFile reads the complete contents of the file at path. The result is
// truncated to the size declared by the directory record because allocation
// rounds up to whole clusters. A file without a data cluster yields empty
// content.
func (v *Volume) ReadFile(path string) ([]byte, error) {
	target, err := v.targetPath(path)
	if err != nil {
		return nil, err
	}

	fileName, ok := target.FileName()
	if !ok {
		return nil, checkpoint.Wrapf(ErrFileNotFound, "%s has no file name", target.String())
	}
	// Parent cannot fail here, FileName just reported a component.
	parent, _ := target.Parent()

	parentCluster, err := v.resolveDirectoryCluster(parent)
	if err != nil {
		return nil, err
	}

	parentData, err := v.readChain(parentCluster)
	if err != nil {
		return nil, err
	}

	entry, found := FindShortName(parentData, fileName)
	if !found {
		return nil, checkpoint.Wrapf(ErrFileNotFound, "file not found: %s", target.String())
	}
	if !entry.IsFile() {
		return nil, checkpoint.Wrapf(ErrFileNotFound, "%s is not a file", target.String())
	}

	if entry.FirstCluster() == 0 {
		return []byte{}, nil
	}

	data, err := v.readChain(entry.FirstCluster())
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > int64(entry.FileSize) {
		data = data[:entry.FileSize]
	}

	return data, nil
}

// ChangeDirectory moves the working directory to path after verifying that
// the target exists, is a directory and its data is readable. On failure the
// working directory is left unchanged. The root always exists, changing to
// it never touches the volume.
func (v *Volume) ChangeDirectory(path string) error {
	target, err := v.targetPath(path)
	if err != nil {
		return err
	}

	if target.IsRoot() {
		v.cwd = target
		return nil
	}

	cluster, err := v.resolveDirectoryCluster(target)
	if err != nil {
		return err
	}

	// A resolvable name pointing at a corrupt chain must not become the
	// working directory.
	if _, err := v.readChain(cluster); err != nil {
		return err
	}

	v.cwd = target
	return nil
}

// CreateFile validates path and then always fails with ErrUnsupported, the
// navigator never mutates the volume.
func (v *Volume) CreateFile(path string) error {
	if _, err := v.targetPath(path); err != nil {
		return err
	}

	return checkpoint.Wrapf(ErrUnsupported, "creating files requires mutating the volume")
}

// WriteFile validates path and then always fails with ErrUnsupported, the
// navigator never mutates the volume.
func (v *Volume) WriteFile(path string, data []byte) error {
	if _, err := v.targetPath(path); err != nil {
		return err
	}

	return checkpoint.Wrapf(ErrUnsupported, "writing files requires mutating the volume")
}

// targetPath parses path and resolves it against the working directory.
// Absolute paths stand alone. The working directory is always absolute, so
// the result is too.
func (v *Volume) targetPath(path string) (Path, error) {
	parsed, err := ParsePath(path)
	if err != nil {
		return Path{}, err
	}

	return v.cwd.Join(parsed), nil
}

// resolveDirectoryCluster walks the path components from the root and
// returns the first cluster of the directory the path names. Each component
// must exist, be a directory and have a data cluster, otherwise it fails
// with ErrDirectoryNotFound.
func (v *Volume) resolveDirectoryCluster(path Path) (uint32, error) {
	if path.IsRoot() {
		return v.boot.RootCluster, nil
	}

	current := v.boot.RootCluster
	for _, component := range path.Components() {
		data, err := v.readChain(current)
		if err != nil {
			return 0, err
		}

		entry, found := FindShortName(data, component)
		if !found {
			return 0, checkpoint.Wrapf(ErrDirectoryNotFound, "directory not found: %s", component)
		}
		if !entry.IsDirectory() {
			return 0, checkpoint.Wrapf(ErrDirectoryNotFound, "not a directory: %s", component)
		}

		current = entry.FirstCluster()
		if current == 0 {
			return 0, checkpoint.Wrapf(ErrDirectoryNotFound, "directory %s has no data cluster", component)
		}
	}

	return current, nil
}

// readCluster returns the bytes of one cluster. The returned slice aliases
// the volume image and must be treated as read only. Clusters outside the
// image fail with ErrClusterChain, a well formed allocation table never
// links to them.
func (v *Volume) readCluster(cluster uint32) ([]byte, error) {
	if cluster < 2 {
		return nil, checkpoint.Wrapf(ErrClusterChain, "cluster %d out of volume bounds", cluster)
	}

	offset := v.boot.ClusterOffset(cluster)
	size := v.boot.ClusterSize()
	if offset < 0 || offset+size > int64(len(v.data)) {
		return nil, checkpoint.Wrapf(ErrClusterChain, "cluster %d out of volume bounds", cluster)
	}

	return v.data[offset : offset+size], nil
}

// readChain materializes the whole chain starting at start into one new
// buffer. Clusters are not contiguous on disk, so this necessarily copies.
func (v *Volume) readChain(start uint32) ([]byte, error) {
	chain, err := v.table.Chain(start)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, int64(len(chain))*v.boot.ClusterSize())
	for _, cluster := range chain {
		clusterData, err := v.readCluster(cluster)
		if err != nil {
			return nil, err
		}
		data = append(data, clusterData...)
	}

	return data, nil
}

// readFileAt reads up to readSize bytes of the file starting at firstCluster
// beginning at offset, clipped to fileSize. Clusters wholly before the read
// window are skipped without touching them. A read clipped at the end of the
// file returns the remaining data together with io.EOF.
func (v *Volume) readFileAt(firstCluster uint32, fileSize, offset, readSize int64) ([]byte, error) {
	if offset < 0 {
		return nil, checkpoint.Wrapf(ErrIO, "negative read offset %d", offset)
	}

	var eof error
	if remaining := fileSize - offset; readSize > remaining {
		readSize = remaining
		eof = io.EOF
	}
	if readSize <= 0 {
		return nil, eof
	}

	chain, err := v.table.Chain(firstCluster)
	if err != nil {
		return nil, err
	}

	clusterSize := v.boot.ClusterSize()
	result := make([]byte, 0, readSize)

	for i, cluster := range chain {
		clusterStart := int64(i) * clusterSize
		if clusterStart+clusterSize <= offset {
			continue
		}
		if clusterStart >= offset+readSize {
			break
		}

		data, err := v.readCluster(cluster)
		if err != nil {
			return nil, err
		}

		from := int64(0)
		if offset > clusterStart {
			from = offset - clusterStart
		}
		to := clusterSize
		if clusterStart+clusterSize > offset+readSize {
			to = offset + readSize - clusterStart
		}

		result = append(result, data[from:to]...)
	}

	return result, eof
}

// readDir returns the decoded entries of the directory starting at the given
// cluster.
func (v *Volume) readDir(firstCluster uint32) ([]DirectoryEntry, error) {
	data, err := v.readChain(firstCluster)
	if err != nil {
		return nil, err
	}

	return DecodeDirectory(data), nil
}

// readRoot returns the decoded entries of the root directory.
func (v *Volume) readRoot() ([]DirectoryEntry, error) {
	return v.readDir(v.boot.RootCluster)
}
