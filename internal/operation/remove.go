package operation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/desertwitch/swupd/internal/resource"
)

// Remove deletes a file or a directory tree. The item is staged first and
// only purged on Discard, so Undo can move it back.
type Remove struct {
	res   resource.Resource
	state State

	path   string
	staged string
}

// NewRemove returns a pointer to a new [Remove] of res.
func NewRemove(res resource.Resource) *Remove {
	return &Remove{res: res}
}

func (r *Remove) Resource() resource.Resource {
	return r.res
}

func (r *Remove) State() State {
	return r.state
}

func (r *Remove) Label() string {
	return fmt.Sprintf("remove %s", r.res)
}

func (r *Remove) Resources() []resource.Resource {
	return []resource.Resource{r.res}
}

func (r *Remove) Execute(h *Handler) error {
	if err := checkState(r, Pending); err != nil {
		return err
	}

	if err := r.run(h); err != nil {
		r.state = Failed

		return fmt.Errorf("(operation) %s: %w", r.Label(), err)
	}

	r.state = Executed

	slog.Info("Removed:", "path", r.path)

	return nil
}

func (r *Remove) run(h *Handler) error {
	path, err := h.resolve(r.res)
	if err != nil {
		return err
	}

	if _, err := h.OSOps.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrBadResource, path)
	} else if err != nil {
		return classify(ErrBadResource, err)
	}

	staged, err := h.stage(path)
	if err != nil {
		return classify(ErrBadResource, err)
	}

	r.path = path
	r.staged = staged

	return nil
}

// Undo moves the removed item back into place.
func (r *Remove) Undo(h *Handler) error {
	if err := checkState(r, Executed); err != nil {
		return err
	}

	if err := r.restore(h); err != nil {
		return fmt.Errorf("(operation) undo %s: %w", r.Label(), err)
	}

	r.state = Undone

	return nil
}

// Invert recreates the removed item, which for a removal is the same as
// undoing it.
func (r *Remove) Invert(h *Handler) error {
	if err := checkState(r, Executed); err != nil {
		return err
	}

	if err := r.restore(h); err != nil {
		return fmt.Errorf("(operation) invert %s: %w", r.Label(), err)
	}

	r.state = Inverted

	return nil
}

func (r *Remove) restore(h *Handler) error {
	if r.staged == "" {
		return fmt.Errorf("%w: staged data was discarded", ErrBadResource)
	}

	if err := h.unstage(r.staged, r.path); err != nil {
		return classify(ErrBadResource, err)
	}
	r.staged = ""

	slog.Info("Restored:", "path", r.path)

	return nil
}

// Discard purges the staged item.
func (r *Remove) Discard(h *Handler) error {
	if r.state != Executed || r.staged == "" {
		return nil
	}

	if err := h.purge(r.staged); err != nil {
		return fmt.Errorf("(operation) discard %s: %w", r.Label(), err)
	}
	r.staged = ""

	return nil
}
