package main

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

type namedHandler struct {
	name    string
	handler slog.Handler
}

// SlogManager is a [slog.Handler] that fans records out to a set of named
// handlers. Handlers can be swapped at runtime, e.g. when the terminal is
// taken over by the user interface. Attributes and groups added through
// WithAttrs and WithGroup are replayed onto handlers added later.
type SlogManager struct {
	sync.RWMutex
	handlers []namedHandler
	ops      []func(slog.Handler) slog.Handler
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

func (m *SlogManager) Enabled(ctx context.Context, level slog.Level) bool {
	m.RLock()
	defer m.RUnlock()

	for _, h := range m.handlers {
		if h.handler.Enabled(ctx, level) {
			return true
		}
	}

	return false
}

func (m *SlogManager) Handle(ctx context.Context, r slog.Record) error {
	m.RLock()
	defer m.RUnlock()

	var errs []error

	for _, h := range m.handlers {
		if !h.handler.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.handler.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (m *SlogManager) derive(op func(slog.Handler) slog.Handler) *SlogManager {
	m.RLock()
	defer m.RUnlock()

	derived := &SlogManager{
		handlers: make([]namedHandler, 0, len(m.handlers)),
		ops:      append(slices.Clone(m.ops), op),
	}

	for _, h := range m.handlers {
		derived.handlers = append(derived.handlers, namedHandler{name: h.name, handler: op(h.handler)})
	}

	return derived
}

func (m *SlogManager) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler {
		return h.WithAttrs(attrs)
	})
}

func (m *SlogManager) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler {
		return h.WithGroup(name)
	})
}

// AddHandler adds handler under name, replacing a handler of the same name.
func (m *SlogManager) AddHandler(name string, handler slog.Handler) {
	m.Lock()
	defer m.Unlock()

	for _, op := range m.ops {
		handler = op(handler)
	}

	for i := range m.handlers {
		if m.handlers[i].name == name {
			m.handlers[i].handler = handler

			return
		}
	}

	m.handlers = append(m.handlers, namedHandler{name: name, handler: handler})
}

func (m *SlogManager) RemoveHandler(name string) {
	m.Lock()
	defer m.Unlock()

	m.handlers = slices.DeleteFunc(m.handlers, func(h namedHandler) bool {
		return h.name == name
	})
}
