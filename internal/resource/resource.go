// Package resource describes the files and directories an update operates on
// and resolves them against the filesystem roots of the current run.
package resource

import "fmt"

// Root names the filesystem root a [Resource] path is relative to.
type Root int

const (
	// Target is the installed system that is being updated.
	Target Root = iota

	// Remote is the location the update payload is read from.
	Remote
)

func (r Root) String() string {
	switch r {
	case Target:
		return "Target"
	case Remote:
		return "Remote"
	default:
		return fmt.Sprintf("Root(%d)", int(r))
	}
}

// Type is the kind of filesystem item a [Resource] refers to.
type Type int

const (
	File Type = iota
	Directory
)

func (t Type) String() string {
	switch t {
	case File:
		return "File"
	case Directory:
		return "Directory"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Resource is an immutable reference to a file or directory below a [Root].
type Resource struct {
	path string
	typ  Type
	root Root
}

// New returns a new [Resource].
func New(path string, typ Type, root Root) Resource {
	return Resource{path: path, typ: typ, root: root}
}

func (r Resource) Path() string {
	return r.path
}

func (r Resource) Type() Type {
	return r.typ
}

func (r Resource) Root() Root {
	return r.root
}

func (r Resource) String() string {
	return fmt.Sprintf("%s:%s(%s)", r.root, r.path, r.typ)
}
