package operation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/desertwitch/swupd/internal/resource"
)

// Expect checks that a resource exists with the expected type. It never
// changes the filesystem.
type Expect struct {
	res   resource.Resource
	state State
}

// NewExpect returns a pointer to a new [Expect] of res.
func NewExpect(res resource.Resource) *Expect {
	return &Expect{res: res}
}

func (e *Expect) Resource() resource.Resource {
	return e.res
}

func (e *Expect) State() State {
	return e.state
}

func (e *Expect) Label() string {
	return fmt.Sprintf("expect %s", e.res)
}

func (e *Expect) Resources() []resource.Resource {
	return []resource.Resource{e.res}
}

func (e *Expect) Execute(h *Handler) error {
	if err := checkState(e, Pending); err != nil {
		return err
	}

	if err := e.run(h); err != nil {
		e.state = Failed

		return fmt.Errorf("(operation) %s: %w", e.Label(), err)
	}

	e.state = Executed

	return nil
}

func (e *Expect) run(h *Handler) error {
	path, err := h.resolve(e.res)
	if err != nil {
		return err
	}

	info, err := h.OSOps.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s does not exist", ErrBadResource, path)
	} else if err != nil {
		return classify(ErrBadResource, err)
	}

	switch e.res.Type() {
	case resource.Directory:
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", ErrBadResource, path)
		}
	case resource.File:
		if info.IsDir() {
			return fmt.Errorf("%w: %s is a directory", ErrBadResource, path)
		}
	}

	slog.Debug("Validated:", "path", path)

	return nil
}

func (e *Expect) Undo(*Handler) error {
	if err := checkState(e, Executed); err != nil {
		return err
	}
	e.state = Undone

	return nil
}

func (e *Expect) Invert(*Handler) error {
	if err := checkState(e, Executed); err != nil {
		return err
	}
	e.state = Inverted

	return nil
}
