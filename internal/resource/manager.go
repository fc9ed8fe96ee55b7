package resource

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultTargetRoot is the [Target] root when nothing else is configured.
const DefaultTargetRoot = "/"

// Manager maps each [Root] to an absolute path. Resolution happens at call
// time, so roots may still change after operations referencing them were
// built. It is safe for concurrent use.
type Manager struct {
	sync.RWMutex
	roots map[Root]string
}

// NewManager returns a pointer to a new [Manager] with the [Target] root set
// to targetRoot, or [DefaultTargetRoot] if it is empty.
func NewManager(targetRoot string) *Manager {
	if targetRoot == "" {
		targetRoot = DefaultTargetRoot
	}

	return &Manager{
		roots: map[Root]string{
			Target: targetRoot,
		},
	}
}

// Path returns the path configured for a root.
func (m *Manager) Path(root Root) (string, bool) {
	m.RLock()
	defer m.RUnlock()

	p, ok := m.roots[root]

	return p, ok
}

// SetPath assigns a path to a root, overwriting any previous assignment.
func (m *Manager) SetPath(root Root, path string) {
	m.Lock()
	defer m.Unlock()

	m.roots[root] = path
}

// Resolve returns the filesystem path of a [Resource]. The path never leaves
// the directory of its root.
func (m *Manager) Resolve(r Resource) (string, error) {
	base, ok := m.Path(r.Root())
	if !ok {
		return "", fmt.Errorf("(resource) %w: %s", ErrRootNotConfigured, r.Root())
	}

	resolved := filepath.Join(base, r.Path())

	rel, err := filepath.Rel(filepath.Clean(base), resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("(resource) %w: %s", ErrPathEscapesRoot, r)
	}

	return resolved, nil
}
