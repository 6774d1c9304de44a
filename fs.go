package fatnav

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/aligator/fatnav/checkpoint"
	"github.com/spf13/afero"
)

// Fs provides a FAT32 volume as an afero filesystem. All reading operations
// work as usual, everything that would mutate the volume fails with
// ErrUnsupported.
//
// Like the Volume underneath it is not safe for concurrent use.
type Fs struct {
	volume *Volume
}

// New reads a complete FAT32 volume image from reader and provides it as a
// filesystem. Failures while draining the reader wrap ErrIO.
func New(reader io.ReadSeeker) (*Fs, error) {
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	volume, err := NewVolume(data)
	if err != nil {
		return nil, err
	}

	return NewFs(volume), nil
}

// NewFs wraps an already decoded volume. The filesystem shares the volume
// with the caller, including its working directory.
func NewFs(volume *Volume) *Fs {
	return &Fs{volume: volume}
}

// Label returns the label of the volume.
func (fs *Fs) Label() string {
	return fs.volume.Label()
}

// FSType returns the filesystem type tag of the volume.
func (fs *Fs) FSType() string {
	return fs.volume.Type()
}

// Volume returns the navigated volume, for callers mixing the afero surface
// with direct navigation.
func (fs *Fs) Volume() *Volume {
	return fs.volume
}

// Name returns the name of this filesystem.
func (fs *Fs) Name() string {
	return "fatnav"
}

// Open opens the file or directory at name. Relative names resolve against
// the working directory of the volume, the empty name opens the root.
func (fs *Fs) Open(name string) (afero.File, error) {
	entry, target, err := fs.find(name)
	if err != nil {
		return nil, err
	}

	return &File{
		fs:           fs.volume,
		path:         target.String(),
		isDirectory:  entry.IsDirectory(),
		isReadOnly:   entry.Attribute&AttrReadOnly != 0,
		isHidden:     entry.Attribute&AttrHidden != 0,
		isSystem:     entry.Attribute&AttrSystem != 0,
		firstCluster: entry.FirstCluster(),
		stat:         entry.FileInfo(),
	}, nil
}

// OpenFile opens the file at name. Any flag requesting write access fails
// with ErrUnsupported.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_CREATE|os.O_TRUNC) != 0 {
		return nil, checkpoint.Wrapf(ErrUnsupported, "write access to %s requires mutating the volume", name)
	}

	return fs.Open(name)
}

// Stat returns the FileInfo describing the file or directory at name.
func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	entry, _, err := fs.find(name)
	if err != nil {
		return nil, err
	}

	return entry.FileInfo(), nil
}

// Create validates name and then always fails with ErrUnsupported.
func (fs *Fs) Create(name string) (afero.File, error) {
	return nil, fs.volume.CreateFile(name)
}

// Mkdir always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	return checkpoint.Wrapf(ErrUnsupported, "creating directory %s requires mutating the volume", name)
}

// MkdirAll always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	return checkpoint.Wrapf(ErrUnsupported, "creating directory %s requires mutating the volume", path)
}

// Remove always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Remove(name string) error {
	return checkpoint.Wrapf(ErrUnsupported, "removing %s requires mutating the volume", name)
}

// RemoveAll always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) RemoveAll(path string) error {
	return checkpoint.Wrapf(ErrUnsupported, "removing %s requires mutating the volume", path)
}

// Rename always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Rename(oldname, newname string) error {
	return checkpoint.Wrapf(ErrUnsupported, "renaming %s requires mutating the volume", oldname)
}

// Chmod always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return checkpoint.Wrapf(ErrUnsupported, "changing mode of %s requires mutating the volume", name)
}

// Chown always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Chown(name string, uid, gid int) error {
	return checkpoint.Wrapf(ErrUnsupported, "changing owner of %s requires mutating the volume", name)
}

// Chtimes always fails with ErrUnsupported, the volume is read only.
func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return checkpoint.Wrapf(ErrUnsupported, "changing times of %s requires mutating the volume", name)
}

// find resolves name to its directory entry. Lookup matches the display name,
// so long names work as well as the 8.3 ones, both case insensitively. The
// root has no record on disk and is returned as a synthetic entry.
func (fs *Fs) find(name string) (DirectoryEntry, Path, error) {
	// afero walks start at the empty name, it designates the root.
	if name == "" {
		name = Separator
	}

	target, err := fs.volume.targetPath(name)
	if err != nil {
		return DirectoryEntry{}, Path{}, err
	}

	if target.IsRoot() {
		return rootDirectoryEntry(fs.volume.boot.RootCluster), target, nil
	}

	entries, err := fs.volume.readRoot()
	if err != nil {
		return DirectoryEntry{}, Path{}, err
	}

	components := target.Components()
	for i, component := range components {
		entry, found := findEntryByName(entries, component)
		if !found {
			if i == len(components)-1 {
				return DirectoryEntry{}, Path{}, checkpoint.Wrapf(ErrFileNotFound, "file not found: %s", target.String())
			}
			return DirectoryEntry{}, Path{}, checkpoint.Wrapf(ErrDirectoryNotFound, "directory not found: %s", component)
		}

		if i == len(components)-1 {
			return entry, target, nil
		}

		if !entry.IsDirectory() {
			return DirectoryEntry{}, Path{}, checkpoint.Wrapf(ErrDirectoryNotFound, "not a directory: %s", component)
		}
		if entry.FirstCluster() == 0 {
			return DirectoryEntry{}, Path{}, checkpoint.Wrapf(ErrDirectoryNotFound, "directory %s has no data cluster", component)
		}

		entries, err = fs.volume.readDir(entry.FirstCluster())
		if err != nil {
			return DirectoryEntry{}, Path{}, err
		}
	}

	// Unreachable, a non root path always has at least one component.
	return DirectoryEntry{}, Path{}, checkpoint.Wrapf(ErrInvalidPath, "empty path: %s", name)
}

// findEntryByName matches name against the display and the 8.3 names of the
// decoded entries, case insensitively like FAT name lookup.
func findEntryByName(entries []DirectoryEntry, name string) (DirectoryEntry, bool) {
	for _, entry := range entries {
		if strings.EqualFold(entry.Name(), name) || strings.EqualFold(entry.ShortName(), name) {
			return entry, true
		}
	}

	return DirectoryEntry{}, false
}

// rootDirectoryEntry builds the synthetic entry for the root directory, which
// has no record of its own on disk.
func rootDirectoryEntry(rootCluster uint32) DirectoryEntry {
	return DirectoryEntry{
		EntryHeader: EntryHeader{
			Attribute:      AttrDirectory,
			FirstClusterHI: uint16(rootCluster >> 16),
			FirstClusterLO: uint16(rootCluster & 0xFFFF),
		},
		LongName: Separator,
	}
}
