package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/desertwitch/swupd/internal/attributes"
	"github.com/desertwitch/swupd/internal/configuration"
	"github.com/desertwitch/swupd/internal/document"
	"github.com/desertwitch/swupd/internal/parser"
	"github.com/desertwitch/swupd/internal/ui"
	"github.com/desertwitch/swupd/internal/updater"
)

type App struct {
	config    *configuration.AppConfig
	updater   *updater.Updater
	uiHandler *ui.Handler
}

func NewApp(config *configuration.AppConfig, upd *updater.Updater, uiHandler *ui.Handler) *App {
	return &App{
		config:    config,
		updater:   upd,
		uiHandler: uiHandler,
	}
}

// loadDescription decodes and parses the update description at path.
func loadDescription(path string) (*parser.Configuration, error) {
	elements, err := document.DecodeFile(path)
	if err != nil {
		return nil, fmt.Errorf("(app) failed to read %s: %w", path, err)
	}

	cfg, err := parser.Parse(attributes.NewRegistry(), elements)
	if err != nil {
		return nil, fmt.Errorf("(app) failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Launch executes the update. On failure the configured rollback policy is
// applied and [ErrUpdateFailed] is returned.
func (app *App) Launch(ctx context.Context) error {
	status := app.updater.Execute(ctx)

	if status == updater.StatusOk {
		if err := app.updater.Commit(); err != nil {
			slog.Warn("Update succeeded, but staged data remains", "err", err)
		}

		return nil
	}

	app.rollback()

	return fmt.Errorf("(app) %w: %s: %w", ErrUpdateFailed, status, app.updater.Err())
}

func (app *App) rollback() {
	var status updater.Status

	switch app.config.Rollback {
	case configuration.RollbackNone:
		slog.Warn("Rollback disabled: the partial update was left in place")

		return
	case configuration.RollbackRestore:
		slog.Info("Restoring from backup...")
		status = app.updater.Restore()
	default:
		slog.Info("Rolling back...")
		status = app.updater.Undo()
	}

	if status != updater.StatusOk {
		slog.Error("Rollback failed: staged data was kept for manual recovery",
			"status", status,
			"err", app.updater.Err(),
		)

		return
	}

	if err := app.updater.Commit(); err != nil {
		slog.Warn("Rollback succeeded, but staged data remains", "err", err)
	}
}

func (app *App) LaunchUI() error {
	if err := app.uiHandler.Launch(); err != nil {
		return fmt.Errorf("(app-ui) %w", err)
	}

	return nil
}
