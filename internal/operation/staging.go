package operation

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
)

// stage moves the item at path into its own slot of the staging directory and
// returns the staged location.
func (h *Handler) stage(path string) (string, error) {
	dir, err := h.StagingDir()
	if err != nil {
		return "", err
	}

	slot := filepath.Join(dir, uuid.NewString())
	if err := h.OSOps.MkdirAll(slot, 0o700); err != nil {
		return "", fmt.Errorf("failed to create staging slot: %w", err)
	}

	staged := filepath.Join(slot, filepath.Base(path))
	if err := h.moveItem(path, staged); err != nil {
		h.OSOps.Remove(slot) //nolint:errcheck

		return "", fmt.Errorf("failed to stage %s: %w", path, err)
	}

	slog.Debug("Staged", "path", path, "staged", staged)

	return staged, nil
}

// unstage moves a staged item back to path.
func (h *Handler) unstage(staged, path string) error {
	if err := h.moveItem(staged, path); err != nil {
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}

	if err := h.OSOps.Remove(filepath.Dir(staged)); err != nil {
		slog.Debug("Staging slot was left in place", "path", filepath.Dir(staged), "err", err)
	}

	return nil
}

// purge deletes a staged item together with its slot.
func (h *Handler) purge(staged string) error {
	if err := h.OSOps.RemoveAll(filepath.Dir(staged)); err != nil {
		return fmt.Errorf("failed to purge %s: %w", staged, err)
	}

	return nil
}
