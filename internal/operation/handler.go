package operation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/desertwitch/swupd/internal/resource"
	"golang.org/x/sys/unix"
)

type osProvider interface {
	Lstat(name string) (os.FileInfo, error)
	MkdirAll(path string, perm os.FileMode) error
	MkdirTemp(dir, pattern string) (string, error)
	Open(name string) (*os.File, error)
	OpenFile(name string, flag int, perm os.FileMode) (*os.File, error)
	ReadDir(name string) ([]os.DirEntry, error)
	Readlink(name string) (string, error)
	Remove(name string) error
	RemoveAll(path string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
}

type unixProvider interface {
	Chmod(path string, mode uint32) error
	Chown(path string, uid, gid int) error
	Lchown(path string, uid, gid int) error
	Lstat(path string, stat *unix.Stat_t) error
	Mkdir(path string, mode uint32) error
	Symlink(oldpath, newpath string) error
	UtimesNano(path string, times []unix.Timespec) error
}

// Options are the tunables of a [Handler].
type Options struct {
	// StagingDir receives items that are moved out of the way by an
	// operation. A temporary directory is created on first use if empty.
	StagingDir string

	// VerifyCopies reads every copied file back from disk and compares its
	// blake3 checksum with the one of the source stream.
	VerifyCopies bool
}

// Handler carries everything operations need to act on the filesystem.
type Handler struct {
	Resources *resource.Manager
	OSOps     osProvider
	UnixOps   unixProvider

	verify bool

	stagingMu  sync.Mutex
	stagingDir string
	ownStaging bool
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(resources *resource.Manager, osOps osProvider, unixOps unixProvider, opts Options) *Handler {
	return &Handler{
		Resources:  resources,
		OSOps:      osOps,
		UnixOps:    unixOps,
		verify:     opts.VerifyCopies,
		stagingDir: opts.StagingDir,
	}
}

// StagingDir returns the staging directory, creating it if needed.
func (h *Handler) StagingDir() (string, error) {
	h.stagingMu.Lock()
	defer h.stagingMu.Unlock()

	if h.stagingDir != "" {
		if err := h.OSOps.MkdirAll(h.stagingDir, 0o700); err != nil {
			return "", fmt.Errorf("(operation) failed to create staging dir: %w", err)
		}

		return h.stagingDir, nil
	}

	dir, err := h.OSOps.MkdirTemp("", "swupd-staging-")
	if err != nil {
		return "", fmt.Errorf("(operation) failed to create staging dir: %w", err)
	}

	h.stagingDir = dir
	h.ownStaging = true

	return dir, nil
}

// Cleanup removes a staging directory that the [Handler] created itself, if
// nothing is left inside of it.
func (h *Handler) Cleanup() {
	h.stagingMu.Lock()
	defer h.stagingMu.Unlock()

	if !h.ownStaging {
		return
	}

	if err := h.OSOps.Remove(h.stagingDir); err != nil {
		slog.Debug("Staging directory was left in place",
			"path", h.stagingDir,
			"err", err,
		)

		return
	}

	h.stagingDir = ""
	h.ownStaging = false
}

func (h *Handler) resolve(r resource.Resource) (string, error) {
	path, err := h.Resources.Resolve(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadResource, err)
	}

	return path, nil
}

// classify wraps an operating system error with the given sentinel, unless it
// is a permission error.
func classify(sentinel error, err error) error {
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%w: %w", ErrBadPermissions, err)
	}

	return fmt.Errorf("%w: %w", sentinel, err)
}
