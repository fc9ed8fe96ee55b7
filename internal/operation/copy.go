package operation

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/desertwitch/swupd/internal/resource"
	"github.com/dustin/go-humanize"
)

// Copy copies a file, or a directory recursively, into a destination
// directory. The destination directory is created if it is absent. An
// existing file of the same name is replaced, an existing directory is
// merged into.
type Copy struct {
	from  resource.Resource
	to    resource.Resource
	state State

	placed *placement
}

// NewCopy returns a pointer to a new [Copy] of from into the directory to.
func NewCopy(from, to resource.Resource) *Copy {
	return &Copy{from: from, to: to}
}

func (c *Copy) From() resource.Resource {
	return c.from
}

func (c *Copy) To() resource.Resource {
	return c.to
}

func (c *Copy) State() State {
	return c.state
}

func (c *Copy) Label() string {
	return fmt.Sprintf("copy %s -> %s", c.from, c.to)
}

func (c *Copy) Resources() []resource.Resource {
	return []resource.Resource{c.from, c.to}
}

// Execute performs the copy. Nothing is left behind if it fails.
func (c *Copy) Execute(h *Handler) error {
	if err := checkState(c, Pending); err != nil {
		return err
	}

	p, err := c.run(h)
	if err != nil {
		c.state = Failed

		return fmt.Errorf("(operation) %s: %w", c.Label(), err)
	}

	c.placed = p
	c.state = Executed

	slog.Info("Copied:",
		"path", p.written,
		"size", humanize.IBytes(p.bytes),
	)

	return nil
}

func (c *Copy) run(h *Handler) (*placement, error) {
	src, err := h.resolve(c.from)
	if err != nil {
		return nil, err
	}

	destDir, err := h.resolve(c.to)
	if err != nil {
		return nil, err
	}

	return h.place(src, c.from.Type(), destDir)
}

// Undo removes the copied item and puts back what it replaced.
func (c *Copy) Undo(h *Handler) error {
	if err := checkState(c, Executed); err != nil {
		return err
	}

	if err := h.revert(c.placed); err != nil {
		return fmt.Errorf("(operation) undo %s: %w", c.Label(), err)
	}

	c.state = Undone

	slog.Info("Undone:", "path", c.placed.written)

	return nil
}

// Invert copies the item from the destination directory back to where the
// source came from, restoring a backup.
func (c *Copy) Invert(h *Handler) error {
	if err := checkState(c, Executed); err != nil {
		return err
	}

	src, err := h.resolve(c.from)
	if err != nil {
		return fmt.Errorf("(operation) invert %s: %w", c.Label(), err)
	}

	destDir, err := h.resolve(c.to)
	if err != nil {
		return fmt.Errorf("(operation) invert %s: %w", c.Label(), err)
	}

	p, err := h.place(filepath.Join(destDir, filepath.Base(src)), c.from.Type(), filepath.Dir(src))
	if err != nil {
		return fmt.Errorf("(operation) invert %s: %w", c.Label(), err)
	}

	if err := h.discard(p); err != nil {
		slog.Warn("Failed to purge replaced items after restore",
			"path", p.written,
			"err", err,
		)
	}

	c.state = Inverted

	slog.Info("Restored:", "path", p.written)

	return nil
}

// Discard purges the items that Execute replaced, after which Undo can no
// longer bring them back.
func (c *Copy) Discard(h *Handler) error {
	if c.placed == nil {
		return nil
	}

	if err := h.discard(c.placed); err != nil {
		return fmt.Errorf("(operation) discard %s: %w", c.Label(), err)
	}

	return nil
}
