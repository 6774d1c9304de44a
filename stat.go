package fatnav

import (
	"os"
	"time"
)

// FileInfo returns an os.FileInfo view of the entry.
func (e DirectoryEntry) FileInfo() os.FileInfo {
	return directoryEntryInfo{e}
}

type directoryEntryInfo struct {
	entry DirectoryEntry
}

func (e directoryEntryInfo) Name() string {
	return e.entry.Name()
}

func (e directoryEntryInfo) Size() int64 {
	return int64(e.entry.FileSize)
}

func (e directoryEntryInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir
	}
	return 0
}

func (e directoryEntryInfo) ModTime() time.Time {
	writeDate := ParseDate(e.entry.WriteDate)
	writeTime := ParseTime(e.entry.WriteTime)

	// A zero date means the stamp was invalid, in that case return time.Time{}.
	// A zero time cannot be treated like that because midnight is a valid time.
	if writeDate.IsZero() {
		return time.Time{}
	}

	return time.Date(writeDate.Year(), writeDate.Month(), writeDate.Day(), writeTime.Hour(), writeTime.Minute(), writeTime.Second(), 0, time.UTC)
}

func (e directoryEntryInfo) IsDir() bool {
	return e.entry.IsDirectory()
}

func (e directoryEntryInfo) Sys() interface{} {
	return e.entry
}
