package operation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/schema"
	"github.com/dustin/go-humanize"
)

// placedEntry is one item that a placement wrote. If an item of the same
// name was in the way, it was staged to staged.
type placedEntry struct {
	path   string
	staged string
}

// placement records what copying an item into a directory changed, so that
// the copy can be reverted. Entries are kept in the order they were written.
type placement struct {
	written string
	entries []placedEntry
	created []string
	bytes   uint64
}

// replaced reports whether the placement moved any existing item aside.
func (p *placement) replaced() bool {
	for _, e := range p.entries {
		if e.staged != "" {
			return true
		}
	}

	return false
}

// place copies the item at src into destDir. A directory is merged into an
// existing directory of the same name: its files overwrite the files they
// meet and everything else in the destination is kept. Overwritten items are
// staged rather than deleted.
func (h *Handler) place(src string, typ resource.Type, destDir string) (*placement, error) {
	info, err := h.OSOps.Lstat(src)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s does not exist", ErrBadResource, src)
	} else if err != nil {
		return nil, classify(ErrBadResource, err)
	}

	// File is what the copy element of a configuration declares for any
	// item, so only Directory is enforced.
	if typ == resource.Directory && !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrBadResource, src)
	}

	written := filepath.Join(destDir, filepath.Base(src))
	if within(src, written) {
		return nil, fmt.Errorf("%w: %s is inside of %s", ErrBadDestination, written, src)
	}

	created, err := h.ensureDir(destDir)
	if err != nil {
		return nil, err
	}

	p := &placement{
		written: written,
		created: created,
	}

	if err := h.merge(src, p.written, p); err != nil {
		if rerr := h.revert(p); rerr != nil {
			slog.Error("Failed to clean up after failed copy",
				"path", p.written,
				"err", rerr,
			)
		}

		return nil, err
	}

	slog.Debug("Copied",
		"from", src,
		"to", p.written,
		"size", humanize.IBytes(p.bytes),
		"entries", len(p.entries),
		"replaced", p.replaced(),
	)

	return p, nil
}

// within reports whether path is dir itself or below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}

	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// merge copies src to dst. When both are directories, the children of src
// are merged one by one and dst itself is left as it is. Anything else at
// dst is staged and replaced.
func (h *Handler) merge(src, dst string, p *placement) error {
	meta, err := schema.ReadMetadata(src, h.OSOps, h.UnixOps)
	if err != nil {
		return classify(ErrBadResource, err)
	}

	existing, err := h.OSOps.Lstat(dst)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return classify(ErrBadDestination, err)
	}

	if existing != nil && meta.IsDir && existing.IsDir() {
		entries, err := h.OSOps.ReadDir(src)
		if err != nil {
			return classify(ErrBadResource, fmt.Errorf("failed to read directory %s: %w", src, err))
		}

		for _, e := range entries {
			if err := h.merge(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()), p); err != nil {
				return err
			}
		}

		return nil
	}

	entry := placedEntry{path: dst}

	if existing != nil {
		staged, err := h.stage(dst)
		if err != nil {
			return classify(ErrBadDestination, err)
		}
		entry.staged = staged
	}

	// Recorded before copying, so a partial copy is reverted as well.
	p.entries = append(p.entries, entry)

	n, err := h.copyItem(src, dst)
	p.bytes += n

	return err
}

// revert removes what a placement wrote and restores what it replaced, last
// entry first.
func (h *Handler) revert(p *placement) error {
	for i := len(p.entries) - 1; i >= 0; i-- {
		e := &p.entries[i]

		if err := h.OSOps.RemoveAll(e.path); err != nil {
			return classify(ErrBadDestination, fmt.Errorf("failed to remove %s: %w", e.path, err))
		}

		if e.staged != "" {
			if err := h.unstage(e.staged, e.path); err != nil {
				return classify(ErrBadResource, err)
			}
			e.staged = ""
		}

		p.entries = p.entries[:i]
	}

	h.removeCreated(p.created)

	return nil
}

// discard purges every item that a placement replaced.
func (h *Handler) discard(p *placement) error {
	var errs []error

	for i := range p.entries {
		e := &p.entries[i]
		if e.staged == "" {
			continue
		}

		if err := h.purge(e.staged); err != nil {
			errs = append(errs, err)

			continue
		}
		e.staged = ""
	}

	return errors.Join(errs...)
}
