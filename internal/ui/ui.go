// Package ui implements a command-line user interface using [tea].
package ui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertwitch/swupd/internal/updater"
)

type progressProvider interface {
	Progress() updater.Progress
}

// Handler is the principal implementation of a user interface [Handler].
type Handler struct {
	source  progressProvider
	program *tea.Program

	LogWriter *TeaLogWriter

	Initialized atomic.Bool
	Failed      atomic.Bool
}

// NewHandler returns a pointer to a new user interface [Handler] that
// displays the progress of source.
func NewHandler(ctx context.Context, cancel context.CancelFunc, source progressProvider) *Handler {
	handler := &Handler{
		source: source,
	}

	model := NewTeaModel(handler, cancel)
	handler.program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	handler.LogWriter = NewTeaLogWriter(handler.program)

	return handler
}

// Launch starts the command-line user interface (the [tea.Program]).
func (uiHandler *Handler) Launch() error {
	defer uiHandler.LogWriter.Stop()

	if _, err := uiHandler.program.Run(); err != nil {
		uiHandler.Failed.Store(true)

		return fmt.Errorf("(ui) %w", err)
	}

	return nil
}

// Operation shows label as the operation currently running.
func (uiHandler *Handler) Operation(label string) {
	uiHandler.program.Send(OperationMsg(label))
}

// Finish shows the final status of the update run.
func (uiHandler *Handler) Finish(status updater.Status, err error) {
	uiHandler.program.Send(FinishedMsg{Status: status, Err: err})
}
