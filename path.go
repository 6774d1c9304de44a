package fatnav

import (
	"strings"

	"github.com/aligator/fatnav/checkpoint"
)

// Separator splits path components. Volume paths use forward slashes
// regardless of the host platform.
const Separator = "/"

// maxComponentLength caps a single path component, matching the long name
// limit of the filesystem.
const maxComponentLength = 255

// Path is a parsed volume path. The zero value is an empty relative path.
// Paths are plain values and carry no reference to any volume.
type Path struct {
	components []string
	absolute   bool
}

// ParsePath parses a path string. It fails with ErrInvalidPath for an empty
// string and for components longer than 255 bytes. A leading separator makes
// the path absolute. Empty and "." components are dropped while parsing,
// ".." components are kept and only resolved by Join.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, checkpoint.Wrapf(ErrInvalidPath, "empty path")
	}

	absolute := strings.HasPrefix(s, Separator)

	var components []string
	for _, component := range strings.Split(s, Separator) {
		if component == "" || component == "." {
			continue
		}
		if len(component) > maxComponentLength {
			return Path{}, checkpoint.Wrapf(ErrInvalidPath, "component too long: %d bytes", len(component))
		}
		components = append(components, component)
	}

	return Path{components: components, absolute: absolute}, nil
}

// Root returns the absolute root path.
func Root() Path {
	return Path{absolute: true}
}

// IsAbsolute reports whether the path starts at the root.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// IsRoot reports whether the path is exactly the root.
func (p Path) IsRoot() bool {
	return p.absolute && len(p.components) == 0
}

// Components returns the path components in order. The returned slice must
// not be modified.
func (p Path) Components() []string {
	return p.components
}

// Join resolves other relative to p. An absolute other replaces p entirely.
// ".." pops the previous component where one exists, popping past the start
// is a no-op, so the root absorbs them.
func (p Path) Join(other Path) Path {
	if other.absolute {
		return other
	}

	combined := make([]string, 0, len(p.components)+len(other.components))
	combined = append(combined, p.components...)
	combined = append(combined, other.components...)

	var resolved []string
	for _, component := range combined {
		if component == ".." {
			if len(resolved) > 0 {
				resolved = resolved[:len(resolved)-1]
			}
			continue
		}
		resolved = append(resolved, component)
	}

	return Path{components: resolved, absolute: p.absolute}
}

// Parent returns the path without its last component. It reports false if
// there is no component left to drop.
func (p Path) Parent() (Path, bool) {
	if len(p.components) == 0 {
		return Path{}, false
	}
	return Path{components: p.components[:len(p.components)-1], absolute: p.absolute}, true
}

// FileName returns the last component. It reports false for the root and
// for an empty relative path.
func (p Path) FileName() (string, bool) {
	if len(p.components) == 0 {
		return "", false
	}
	return p.components[len(p.components)-1], true
}

// String renders the path. Absolute paths carry a leading separator, the
// root renders as the separator alone and an empty relative path as "".
func (p Path) String() string {
	s := strings.Join(p.components, Separator)
	if p.absolute {
		return Separator + s
	}
	return s
}

// Push appends further components in place. The argument is parsed like any
// path string, so it may hold several components, and an absolute argument
// replaces the path.
func (p *Path) Push(s string) error {
	parsed, err := ParsePath(s)
	if err != nil {
		return err
	}

	*p = p.Join(parsed)
	return nil
}

// Pop drops the last component in place. It reports false if there was
// nothing to drop.
func (p *Path) Pop() bool {
	parent, ok := p.Parent()
	if !ok {
		return false
	}

	*p = parent
	return true
}
