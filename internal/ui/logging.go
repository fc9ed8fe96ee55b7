package ui

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lmittmann/tint"
)

// logBufferSize is the number of log lines a [TeaLogWriter] holds while the
// [tea.Program] is busy.
const logBufferSize = 1000

// LogMsg is one line of log output, sent to the [tea.Program] as [tea.Msg].
type LogMsg string

type teaProgramProvider interface {
	Send(msg tea.Msg)
}

// NewLogHandler returns the [slog.Handler] used while the user interface owns
// the terminal. Its output is meant for a [TeaLogWriter].
func NewLogHandler(w io.Writer, level slog.Leveler) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// TeaLogWriter is an [io.Writer] for a [slog.Handler] that forwards log
// lines to a [tea.Program]. Writing never blocks the update: lines that do
// not fit into the buffer are dropped, and the number of dropped lines is
// reported to the program before the next line that gets through.
type TeaLogWriter struct {
	program teaProgramProvider

	lines    chan LogMsg
	doneChan chan struct{}
	stopOnce sync.Once

	pending atomic.Uint64
	dropped atomic.Uint64
}

// NewTeaLogWriter returns a pointer to a new [TeaLogWriter] and starts
// forwarding. It needs to be stopped with [TeaLogWriter.Stop].
func NewTeaLogWriter(program teaProgramProvider) *TeaLogWriter {
	wr := &TeaLogWriter{
		program:  program,
		lines:    make(chan LogMsg, logBufferSize),
		doneChan: make(chan struct{}),
	}

	go wr.forward()

	return wr
}

// Stop ends forwarding. Lines written afterwards are discarded.
func (wr *TeaLogWriter) Stop() {
	wr.stopOnce.Do(func() {
		close(wr.doneChan)
	})
}

// Dropped returns the number of lines that were discarded because the buffer
// was full.
func (wr *TeaLogWriter) Dropped() uint64 {
	return wr.dropped.Load()
}

func (wr *TeaLogWriter) forward() {
	for {
		select {
		case <-wr.doneChan:
			return
		case line := <-wr.lines:
			if n := wr.pending.Swap(0); n > 0 {
				wr.program.Send(LogMsg(fmt.Sprintf("(%d log lines dropped)\n", n)))
			}
			wr.program.Send(line)
		}
	}
}

// Write queues p as one [LogMsg].
func (wr *TeaLogWriter) Write(p []byte) (int, error) {
	select {
	case <-wr.doneChan:
		return len(p), nil
	default:
	}

	select {
	case wr.lines <- LogMsg(p):
	default:
		wr.pending.Add(1)
		wr.dropped.Add(1)
	}

	return len(p), nil
}
