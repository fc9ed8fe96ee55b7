// Package parser turns a validated element stream into a [Configuration]
// by recursive descent. Every accept routine consumes its element from the
// front of the queue and records it on the fault stack while it is active.
package parser

import (
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/desertwitch/swupd/internal/attributes"
	"github.com/desertwitch/swupd/internal/document"
	"github.com/desertwitch/swupd/internal/grammar"
	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/resource"
)

type parser struct {
	queue []*document.ConfigElement
	head  int
	stack []grammar.Token
	cfg   *Configuration
}

// Parse builds a [Configuration] from an element arena. It returns either a
// complete configuration or an [*Error], never a partial result.
func Parse(reg *attributes.Registry, elements []document.Element) (*Configuration, error) {
	p := &parser{
		queue: make([]*document.ConfigElement, len(elements)),
		cfg:   &Configuration{},
	}

	for i := range elements {
		p.queue[i] = document.NewConfigElement(reg, &elements[i])
	}

	if err := p.acceptConfiguration(); err != nil {
		return nil, err
	}

	return p.cfg, nil
}

// peek returns the element at the front of the queue and its arena index.
func (p *parser) peek() (*document.ConfigElement, int, bool) {
	if p.head >= len(p.queue) {
		return nil, 0, false
	}

	return p.queue[p.head], p.head, true
}

func (p *parser) next() (*document.ConfigElement, int, bool) {
	e, idx, ok := p.peek()
	if ok {
		p.head++
	}

	return e, idx, ok
}

func (p *parser) fault(status Status) *Error {
	return &Error{Status: status, Stack: slices.Clone(p.stack)}
}

// enter pushes an element on the fault stack and rejects attribute keys that
// are not known.
func (p *parser) enter(e *document.ConfigElement) error {
	p.stack = append(p.stack, e.Token)

	if len(e.UnknownKeys()) > 0 {
		return p.fault(StatusInvalidAttributeKey)
	}

	return nil
}

func (p *parser) leave() {
	p.stack = p.stack[:len(p.stack)-1]
}

// reject reports an element that is not allowed where it was found.
func (p *parser) reject(e *document.ConfigElement) error {
	p.stack = append(p.stack, e.Token)

	return p.fault(StatusInvalidElement)
}

func (p *parser) acceptConfiguration() error {
	root, idx, ok := p.next()
	if !ok {
		return p.fault(StatusInvalidElement)
	}

	if root.Token != grammar.ConfigurationOpen || root.Parent != document.NoParent {
		return p.reject(root)
	}

	if err := p.enter(root); err != nil {
		return err
	}

	platform, hasPlatform := root.Attribute(attributes.KeyPlatform)
	product, hasProduct := root.Attribute(attributes.KeyProduct)
	if !hasPlatform || !hasProduct {
		return p.fault(StatusInvalidAttributeKey)
	}
	p.cfg.Platform = platform.Lexeme
	p.cfg.Product = product.Lexeme

	for {
		e, _, ok := p.peek()
		if !ok {
			break
		}

		if e.Parent != idx {
			return p.reject(e)
		}

		var err error

		switch e.Token { //nolint:exhaustive
		case grammar.ResourceURIOpen:
			err = p.acceptResourceURI()
		case grammar.ValidateOpen:
			err = p.acceptValidate()
		case grammar.BackupOpen:
			err = p.acceptBackup()
		case grammar.OperationsOpen:
			err = p.acceptOperations()
		default:
			return p.reject(e)
		}

		if err != nil {
			return err
		}
	}

	p.leave()

	return nil
}

// acceptValue consumes a leaf element and returns its text value, which must
// not be empty.
func (p *parser) acceptValue() (*document.ConfigElement, error) {
	e, _, _ := p.next()

	if err := p.enter(e); err != nil {
		return nil, err
	}

	if e.Value == "" {
		return nil, p.fault(StatusInvalidElement)
	}

	return e, nil
}

// acceptPath is [parser.acceptValue] for values naming a path below a root.
// A path that climbs out of its root is an invalid element.
func (p *parser) acceptPath() (*document.ConfigElement, error) {
	e, err := p.acceptValue()
	if err != nil {
		return nil, err
	}

	if escapesRoot(e.Value) {
		return nil, p.fault(StatusInvalidElement)
	}

	return e, nil
}

// escapesRoot reports whether value, joined below any directory, ends up
// outside of it. Absolute paths are cleaned against "/" and never escape.
func escapesRoot(value string) bool {
	c := path.Clean(value)

	return c == ".." || strings.HasPrefix(c, "../")
}

func (p *parser) acceptResourceURI() error {
	e, err := p.acceptValue()
	if err != nil {
		return err
	}

	p.cfg.ResourceURIs = append(p.cfg.ResourceURIs, e.Value)
	p.leave()

	return nil
}

// acceptEntries consumes the file and directory children of a section
// header and hands each to fn.
func (p *parser) acceptEntries(header int, fn func(value string, typ resource.Type)) error {
	for {
		e, _, ok := p.peek()
		if !ok || e.Parent != header {
			return nil
		}

		var typ resource.Type

		switch e.Token { //nolint:exhaustive
		case grammar.FileOpen:
			typ = resource.File
		case grammar.DirectoryOpen:
			typ = resource.Directory
		default:
			return p.reject(e)
		}

		entry, err := p.acceptPath()
		if err != nil {
			return err
		}

		fn(entry.Value, typ)
		p.leave()
	}
}

func (p *parser) acceptValidate() error {
	header, idx, _ := p.next()

	if err := p.enter(header); err != nil {
		return err
	}

	err := p.acceptEntries(idx, func(value string, typ resource.Type) {
		p.cfg.Validate = append(p.cfg.Validate,
			operation.NewExpect(resource.New(value, typ, resource.Remote)),
		)
	})
	if err != nil {
		return err
	}

	p.leave()

	return nil
}

func (p *parser) acceptBackup() error {
	header, idx, _ := p.next()

	if err := p.enter(header); err != nil {
		return err
	}

	backupPath, ok := header.Attribute(attributes.KeyPath)
	if !ok || backupPath.Lexeme == "" {
		return p.fault(StatusInvalidAttributeKey)
	}
	if escapesRoot(backupPath.Lexeme) {
		return p.fault(StatusInvalidAttributeValue)
	}
	p.cfg.BackupPath = backupPath.Lexeme

	err := p.acceptEntries(idx, func(value string, typ resource.Type) {
		p.cfg.Backup = append(p.cfg.Backup, operation.NewCopy(
			resource.New(value, typ, resource.Target),
			resource.New(BackupLocation(backupPath.Lexeme, value), resource.Directory, resource.Target),
		))
	})
	if err != nil {
		return err
	}

	p.leave()

	return nil
}

func (p *parser) acceptOperations() error {
	header, idx, _ := p.next()

	if err := p.enter(header); err != nil {
		return err
	}

	for {
		e, _, ok := p.peek()
		if !ok || e.Parent != idx {
			break
		}

		var err error

		switch e.Token { //nolint:exhaustive
		case grammar.CopyOpen:
			err = p.acceptCopy()
		case grammar.RemoveOpen:
			err = p.acceptRemove()
		default:
			return p.reject(e)
		}

		if err != nil {
			return err
		}
	}

	p.leave()

	return nil
}

func (p *parser) acceptCopy() error {
	header, idx, _ := p.next()

	if err := p.enter(header); err != nil {
		return err
	}

	from, err := p.acceptEndpoint(idx, grammar.FromOpen)
	if err != nil {
		return err
	}

	to, err := p.acceptEndpoint(idx, grammar.ToOpen)
	if err != nil {
		return err
	}

	p.cfg.Update = append(p.cfg.Update, operation.NewCopy(
		resource.New(from.value, resource.File, from.root),
		resource.New(to.value, resource.Directory, to.root),
	))
	p.leave()

	return nil
}

type endpoint struct {
	value string
	root  resource.Root
}

// acceptEndpoint requires the next element to be a child of the copy at
// header with the given token.
func (p *parser) acceptEndpoint(header int, want grammar.Token) (endpoint, error) {
	e, _, ok := p.peek()
	if !ok {
		return endpoint{}, p.fault(StatusInvalidElement)
	}

	if e.Token != want || e.Parent != header {
		return endpoint{}, p.reject(e)
	}

	e, err := p.acceptPath()
	if err != nil {
		return endpoint{}, err
	}

	root, err := p.acceptRoot(e)
	if err != nil {
		return endpoint{}, err
	}
	p.leave()

	return endpoint{value: e.Value, root: root}, nil
}

func (p *parser) acceptRemove() error {
	e, err := p.acceptPath()
	if err != nil {
		return err
	}

	root, err := p.acceptRoot(e)
	if err != nil {
		return err
	}

	p.cfg.Update = append(p.cfg.Update,
		operation.NewRemove(resource.New(e.Value, resource.File, root)),
	)
	p.leave()

	return nil
}

// acceptRoot maps the root attribute of an element to a [resource.Root].
func (p *parser) acceptRoot(e *document.ConfigElement) (resource.Root, error) {
	a, ok := e.Attribute(attributes.KeyRoot)
	if !ok {
		return 0, p.fault(StatusInvalidAttributeKey)
	}

	switch a.Value { //nolint:exhaustive
	case attributes.ValueRemote:
		return resource.Remote, nil
	case attributes.ValueTarget:
		return resource.Target, nil
	default:
		return 0, p.fault(StatusInvalidAttributeValue)
	}
}

// BackupLocation returns the directory below backupPath that receives the
// backup of the item at value: the item's parent directories are kept and
// its name is dropped, so "/data/app/bin" under "/backup" lands in
// "/backup/data/app". A top-level item lands in backupPath itself.
func BackupLocation(backupPath, value string) string {
	rel := path.Dir(path.Clean(strings.TrimPrefix(value, "/")))
	if rel == "." {
		return backupPath
	}

	return filepath.Join(backupPath, rel)
}
