package schema

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Metadata is the metadata of a filesystem item that is preserved when the
// item is copied.
type Metadata struct {
	Perms      uint32
	UID        uint32
	GID        uint32
	AccessedAt unix.Timespec
	ModifiedAt unix.Timespec
	Size       uint64
	IsDir      bool
	IsRegular  bool
	IsSymlink  bool
	SymlinkTo  string
}

type lstatProvider interface {
	Lstat(path string, stat *unix.Stat_t) error
}

type readlinkProvider interface {
	Readlink(name string) (string, error)
}

// ReadMetadata returns the [Metadata] of the item at path, without following
// a symbolic link at that location.
func ReadMetadata(path string, osOps readlinkProvider, unixOps lstatProvider) (*Metadata, error) {
	var stat unix.Stat_t

	if err := unixOps.Lstat(path, &stat); err != nil {
		return nil, fmt.Errorf("(schema) failed to lstat: %w", err)
	}

	metadata := &Metadata{
		Perms:      uint32(stat.Mode) & 0o7777, //nolint:unconvert
		UID:        stat.Uid,
		GID:        stat.Gid,
		AccessedAt: stat.Atim,
		ModifiedAt: stat.Mtim,
		Size:       uint64(stat.Size), //nolint:gosec
		IsDir:      (stat.Mode & unix.S_IFMT) == unix.S_IFDIR,
		IsRegular:  (stat.Mode & unix.S_IFMT) == unix.S_IFREG,
		IsSymlink:  (stat.Mode & unix.S_IFMT) == unix.S_IFLNK,
	}

	if metadata.IsSymlink {
		target, err := osOps.Readlink(path)
		if err != nil {
			return nil, fmt.Errorf("(schema) failed to readlink: %w", err)
		}
		metadata.SymlinkTo = target
	}

	return metadata, nil
}
