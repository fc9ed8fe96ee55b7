package document

import (
	"fmt"
	"strings"

	"github.com/desertwitch/swupd/internal/grammar"
)

// Builder collects elements from start-tag, text and end-tag events. It is
// the boundary between any tokenizer and the configuration core and is not
// safe for concurrent use.
type Builder struct {
	machine  *grammar.Machine
	elements []Element
	scope    []int
	finished bool
}

// NewBuilder returns a pointer to a new [Builder] with a fresh
// [grammar.Machine].
func NewBuilder() *Builder {
	return &Builder{
		machine:  grammar.NewMachine(),
		elements: []Element{},
		scope:    []int{},
	}
}

// StartTag feeds an opening tag with its attributes. Duplicate attribute keys
// are rejected with [ErrDuplicateAttribute].
func (b *Builder) StartTag(name string, attrs []Attribute) error {
	if b.finished {
		return ErrFinished
	}

	lexeme := grammar.OpenLexeme(name)

	token, status := b.machine.InputLexeme(lexeme)
	if status == grammar.StatusFault {
		return fmt.Errorf("%w: the opening tag %s is either unrecognized or unexpected in scope", ErrGrammarFault, lexeme)
	}

	if !token.IsOpen() {
		return fmt.Errorf("%w: %s is not an opening tag", ErrGrammarFault, lexeme)
	}

	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if _, exists := seen[a.Key]; exists {
			return fmt.Errorf("%w: %q in element %s", ErrDuplicateAttribute, a.Key, lexeme)
		}
		seen[a.Key] = struct{}{}
	}

	parent := NoParent
	if len(b.scope) > 0 {
		parent = b.scope[len(b.scope)-1]
	}

	b.elements = append(b.elements, Element{
		Token:      token,
		Parent:     parent,
		Attributes: append([]Attribute(nil), attrs...),
	})
	b.scope = append(b.scope, len(b.elements)-1)

	return nil
}

// Text feeds character content. It is assigned to the innermost open element
// if that element has no value yet, whitespace-only content is ignored.
func (b *Builder) Text(content string) error {
	if b.finished {
		return ErrFinished
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" || len(b.scope) == 0 {
		return nil
	}

	b.elements[b.scope[len(b.scope)-1]].setValue(trimmed)

	return nil
}

// EndTag feeds a closing tag.
func (b *Builder) EndTag(name string) error {
	if b.finished {
		return ErrFinished
	}

	lexeme := grammar.CloseLexeme(name)

	if _, status := b.machine.InputLexeme(lexeme); status == grammar.StatusFault {
		return fmt.Errorf("%w: the closing tag %s is recognized, but not expected here (check nesting level)", ErrGrammarFault, lexeme)
	}

	if len(b.scope) == 0 {
		return fmt.Errorf("%w: closing tag %s without open scope", ErrGrammarFault, lexeme)
	}

	b.scope = b.scope[:len(b.scope)-1]

	return nil
}

// Finish returns the element arena if the grammar completed and no scope is
// left open. Both conditions are required, each failing alone is reported
// with its own error.
func (b *Builder) Finish() ([]Element, error) {
	if b.finished {
		return nil, ErrFinished
	}

	if status := b.machine.Status(); status != grammar.StatusComplete {
		return nil, fmt.Errorf("%w: %s", ErrIncomplete, status)
	}

	if len(b.scope) > 0 {
		return nil, fmt.Errorf("%w: %d element(s)", ErrOpenScope, len(b.scope))
	}

	b.finished = true

	return b.elements, nil
}

// Status returns the status of the underlying [grammar.Machine].
func (b *Builder) Status() grammar.Status {
	return b.machine.Status()
}
