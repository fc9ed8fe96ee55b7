package main

import (
	"context"
	"log/slog"
	"os"
	"runtime/pprof"
)

type profileKind int

const (
	profileCPU profileKind = iota
	profileAllocs
)

// profiler writes a [pprof] profile to a file. A CPU profile covers the
// lifetime of the profiler, an allocation profile is taken when it stops.
//
//nolint:containedctx
type profiler struct {
	ctx      context.Context
	cancel   context.CancelFunc
	doneChan chan struct{}
}

// newProfiler starts a profiler of the given kind, it does nothing if path
// is empty. It needs to be stopped with [profiler.Stop].
func newProfiler(ctx context.Context, kind profileKind, path string) *profiler {
	prof := &profiler{doneChan: make(chan struct{})}
	prof.ctx, prof.cancel = context.WithCancel(ctx)

	go prof.profile(kind, path)

	return prof
}

func (prof *profiler) profile(kind profileKind, path string) {
	defer close(prof.doneChan)

	if path == "" {
		return
	}

	if kind == profileAllocs {
		<-prof.ctx.Done()
	}

	f, err := os.Create(path)
	if err != nil {
		slog.Error("Could not create profile", "path", path, "err", err)

		return
	}
	defer f.Close()

	switch kind {
	case profileCPU:
		if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("Could not start cpu profile", "err", err)

			return
		}
		defer pprof.StopCPUProfile()

		<-prof.ctx.Done()

	case profileAllocs:
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			slog.Error("Could not write allocs profile", "err", err)
		}
	}
}

func (prof *profiler) Stop() {
	prof.cancel()
	<-prof.doneChan
}
