package operation

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/desertwitch/swupd/internal/schema"
	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// copyItem copies the item at src to the non-existing dst, recursing into
// directories. Symbolic links are recreated, not followed. It returns the
// number of file bytes written.
func (h *Handler) copyItem(src, dst string) (uint64, error) {
	meta, err := schema.ReadMetadata(src, h.OSOps, h.UnixOps)
	if err != nil {
		return 0, classify(ErrBadResource, err)
	}

	switch {
	case meta.IsSymlink:
		if err := h.UnixOps.Symlink(meta.SymlinkTo, dst); err != nil {
			return 0, classify(ErrBadDestination, fmt.Errorf("failed to create symlink %s: %w", dst, err))
		}
		if err := h.UnixOps.Lchown(dst, int(meta.UID), int(meta.GID)); err != nil {
			slog.Debug("Could not preserve symlink ownership", "path", dst, "err", err)
		}

		return 0, nil

	case meta.IsDir:
		return h.copyTree(src, dst, meta)

	case meta.IsRegular:
		return h.copyFile(src, dst, meta)

	default:
		return 0, fmt.Errorf("%w: unsupported file type at %s", ErrBadResource, src)
	}
}

func (h *Handler) copyTree(src, dst string, meta *schema.Metadata) (uint64, error) {
	entries, err := h.OSOps.ReadDir(src)
	if err != nil {
		return 0, classify(ErrBadResource, fmt.Errorf("failed to read directory %s: %w", src, err))
	}

	if err := h.UnixOps.Mkdir(dst, 0o700); err != nil {
		return 0, classify(ErrBadDestination, fmt.Errorf("failed to create directory %s: %w", dst, err))
	}

	var total uint64

	for _, e := range entries {
		n, err := h.copyItem(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()))
		total += n
		if err != nil {
			return total, err
		}
	}

	if err := h.applyMetadata(dst, meta); err != nil {
		return total, err
	}

	return total, nil
}

func (h *Handler) copyFile(src, dst string, meta *schema.Metadata) (uint64, error) {
	var transferComplete bool

	srcFile, err := h.OSOps.Open(src)
	if err != nil {
		return 0, classify(ErrBadResource, fmt.Errorf("failed to open source file: %w", err))
	}
	defer srcFile.Close()

	tmpPath := dst + ".swupd-" + uuid.NewString()
	defer func() {
		if !transferComplete {
			h.OSOps.Remove(tmpPath) //nolint:errcheck
		}
	}()

	dstFile, err := h.OSOps.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return 0, classify(ErrBadDestination, fmt.Errorf("failed to open destination file %s: %w", tmpPath, err))
	}
	defer dstFile.Close()

	srcHasher := blake3.New()

	var reader io.Reader = srcFile
	if h.verify {
		reader = io.TeeReader(srcFile, srcHasher)
	}

	n, err := io.Copy(dstFile, reader)
	if err != nil {
		return 0, classify(ErrBadDestination, fmt.Errorf("failed to copy file: %w", err))
	}

	if err := dstFile.Sync(); err != nil {
		return 0, classify(ErrBadDestination, fmt.Errorf("failed to sync destination fs: %w", err))
	}

	if h.verify {
		srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))

		dstChecksum, err := h.hashFile(tmpPath)
		if err != nil {
			return 0, classify(ErrBadDestination, err)
		}

		if srcChecksum != dstChecksum {
			return 0, fmt.Errorf("%w: %w: %s (src) != %s (dst)", ErrBadDestination, ErrHashMismatch, srcChecksum, dstChecksum)
		}
	}

	if err := h.applyMetadata(tmpPath, meta); err != nil {
		return 0, err
	}

	if err := h.OSOps.Rename(tmpPath, dst); err != nil {
		return 0, classify(ErrBadDestination, fmt.Errorf("failed to rename temporary file to destination file: %w", err))
	}

	transferComplete = true

	return uint64(n), nil //nolint:gosec
}

// hashFile reads the file at path back from disk and returns its blake3
// checksum.
func (h *Handler) hashFile(path string) (string, error) {
	f, err := h.OSOps.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for verification: %w", path, err)
	}
	defer f.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("failed to read %s for verification: %w", path, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// applyMetadata carries ownership, permissions and timestamps over to path.
// Ownership can only be changed by privileged users, so a refusal there is
// not an error.
func (h *Handler) applyMetadata(path string, meta *schema.Metadata) error {
	if err := h.UnixOps.Chown(path, int(meta.UID), int(meta.GID)); err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			return classify(ErrBadDestination, fmt.Errorf("failed to set ownership on %s: %w", path, err))
		}
		slog.Debug("Could not preserve ownership", "path", path, "err", err)
	}

	if err := h.UnixOps.Chmod(path, meta.Perms); err != nil {
		return classify(ErrBadDestination, fmt.Errorf("failed to set permissions on %s: %w", path, err))
	}

	ts := []unix.Timespec{meta.AccessedAt, meta.ModifiedAt}
	if err := h.UnixOps.UtimesNano(path, ts); err != nil {
		return classify(ErrBadDestination, fmt.Errorf("failed to set timestamps on %s: %w", path, err))
	}

	return nil
}

// moveItem renames src to dst, falling back to copy and delete when the two
// are on different filesystems.
func (h *Handler) moveItem(src, dst string) error {
	err := h.OSOps.Rename(src, dst)
	if err == nil {
		return nil
	}

	if !errors.Is(err, unix.EXDEV) {
		return fmt.Errorf("failed to rename %s: %w", src, err)
	}

	if _, err := h.copyItem(src, dst); err != nil {
		h.OSOps.RemoveAll(dst) //nolint:errcheck

		return fmt.Errorf("failed to copy %s across devices: %w", src, err)
	}

	if err := h.OSOps.RemoveAll(src); err != nil {
		return fmt.Errorf("failed to remove %s after copy across devices: %w", src, err)
	}

	return nil
}

// ensureDir creates path and its missing parents. The directories that had
// to be created are returned, outermost first.
func (h *Handler) ensureDir(path string) ([]string, error) {
	var missing []string

	for p := path; ; p = filepath.Dir(p) {
		info, err := h.OSOps.Stat(p)
		if err == nil {
			if !info.IsDir() {
				return nil, fmt.Errorf("%w: %s is not a directory", ErrBadDestination, p)
			}

			break
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, classify(ErrBadDestination, err)
		}

		missing = append([]string{p}, missing...)

		if filepath.Dir(p) == p {
			break
		}
	}

	if len(missing) == 0 {
		return nil, nil
	}

	if err := h.OSOps.MkdirAll(path, 0o755); err != nil {
		return nil, classify(ErrBadDestination, fmt.Errorf("failed to create directory %s: %w", path, err))
	}

	return missing, nil
}

// removeCreated removes directories returned by [Handler.ensureDir], as long
// as they are empty.
func (h *Handler) removeCreated(created []string) {
	for i := len(created) - 1; i >= 0; i-- {
		if err := h.OSOps.Remove(created[i]); err != nil {
			slog.Debug("Created directory was left in place", "path", created[i], "err", err)

			return
		}
	}
}
