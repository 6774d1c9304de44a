package fatnav

import (
	"errors"
	"io"
	"io/fs"
)

// GoDirEntry adapts an os.FileInfo to the fs.DirEntry interface.
type GoDirEntry struct {
	fs.FileInfo
}

func (g GoDirEntry) Type() fs.FileMode {
	return g.FileInfo.Mode().Type()
}

func (g GoDirEntry) Info() (fs.FileInfo, error) {
	// The volume is immutable, the entry cannot vanish between the ReadDir
	// call and this one.
	return g.FileInfo, nil
}

// GoFile adapts a File to the fs.File and fs.ReadDirFile interfaces.
type GoFile struct {
	*File
}

func (g GoFile) Stat() (fs.FileInfo, error) {
	return g.File.Stat()
}

func (g GoFile) Read(bytes []byte) (int, error) {
	return g.File.Read(bytes)
}

func (g GoFile) Close() error {
	return g.File.Close()
}

func (g GoFile) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := g.File.Readdir(n)

	goEntries := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		goEntries[i] = GoDirEntry{e}
	}

	return goEntries, err
}

// GoFs just wraps the afero implementation to be compatible with fs.FS.
type GoFs struct {
	Fs
}

// NewGoFS reads a complete FAT32 volume image from reader and provides it as
// an fs.FS compatible filesystem.
func NewGoFS(reader io.ReadSeeker) (*GoFs, error) {
	fatFs, err := New(reader)
	if err != nil {
		return nil, err
	}

	return &GoFs{*fatFs}, nil
}

func (g GoFs) Open(name string) (fs.File, error) {
	file, err := g.Fs.Open(name)
	if err != nil {
		return nil, err
	}

	f, ok := file.(*File)
	if !ok {
		return nil, errors.New("invalid File implementation")
	}

	return GoFile{f}, nil
}
