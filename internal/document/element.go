// Package document turns a stream of tag, attribute and text events into a
// flat, insertion-ordered arena of configuration elements. Every event is
// validated by a [grammar.Machine] on the way in.
package document

import (
	"strings"

	"github.com/desertwitch/swupd/internal/grammar"
)

// NoParent is the parent index of the root element.
const NoParent = -1

// Attribute is a raw key/value pair as it appeared on a tag.
type Attribute struct {
	Key   string
	Value string
}

// Element is one parsed tag instance. Parent is an index into the arena that
// owns the element (or [NoParent]), it never owns the parent itself.
type Element struct {
	Token      grammar.Token
	Parent     int
	Value      string
	Attributes []Attribute
	Ready      bool
}

// Attribute returns the raw value for a key of the element.
func (e *Element) Attribute(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}

	return "", false
}

// setValue assigns the text value exactly once.
func (e *Element) setValue(value string) bool {
	if e.Ready {
		return false
	}

	e.Value = value
	e.Ready = true

	return true
}

// Description renders the element for diagnostics, e.g.
// "<remove> [root:Target] { /tmp/x } </remove>".
func (e *Element) Description() string {
	var sb strings.Builder

	sb.WriteString(e.Token.Open().Lexeme())
	for _, a := range e.Attributes {
		sb.WriteString(" [" + a.Key + ":" + a.Value + "]")
	}
	sb.WriteString(" { " + e.Value + " } ")
	sb.WriteString(e.Token.Close().Lexeme())

	return sb.String()
}
