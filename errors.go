package fatnav

import "errors"

// These errors cover everything that can go wrong while decoding or
// navigating a volume. Every error returned by this package wraps exactly one
// of them, so callers can select on the kind with errors.Is while the message
// carries the detail.
var (
	// ErrInvalidPath is returned if a path string cannot be parsed.
	ErrInvalidPath = errors.New("invalid path")
	// ErrFileNotFound is returned if a file does not exist or an entry with
	// the requested name is not a file.
	ErrFileNotFound = errors.New("file not found")
	// ErrDirectoryNotFound is returned if a directory does not exist or an
	// entry with the requested name is not a directory.
	ErrDirectoryNotFound = errors.New("directory not found")
	// ErrInvalidFat is returned if the allocation table is malformed or an
	// entry outside of it is requested.
	ErrInvalidFat = errors.New("invalid allocation table")
	// ErrInvalidBootSector is returned if the boot sector cannot be decoded.
	ErrInvalidBootSector = errors.New("invalid boot sector")
	// ErrClusterChain is returned if a cluster chain is corrupt, circular or
	// leaves the volume.
	ErrClusterChain = errors.New("cluster chain error")
	// ErrDirectoryRecord is returned if a single directory record cannot be
	// decoded. Note that a listing scan skips such records instead of
	// failing.
	ErrDirectoryRecord = errors.New("directory record error")
	// ErrIO is returned if a reader supplied by the caller fails or a read
	// request is malformed, for example by a negative offset. The decoders
	// themselves never produce it, they work on an in-memory buffer.
	ErrIO = errors.New("i/o error")
	// ErrOutOfMemory is reserved for allocation failures and currently
	// unused.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrUnsupported is returned by all operations which would modify the
	// volume. This is a permanent contract, the volume is read-only.
	ErrUnsupported = errors.New("unsupported operation")
)
