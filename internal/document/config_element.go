package document

import (
	"github.com/desertwitch/swupd/internal/attributes"
	"github.com/desertwitch/swupd/internal/grammar"
)

// TypedAttribute is an attribute of a [ConfigElement], resolved against a [attributes.Registry].
// Value is [attributes.ValueUnset] for free-form values such as paths, the
// raw text is always kept in Lexeme.
type TypedAttribute struct {
	Key    attributes.Key
	Value  attributes.Value
	Lexeme string
}

// ConfigElement is the typed view of an [Element].
type ConfigElement struct {
	Token  grammar.Token
	Parent int
	Value  string

	attrs   map[attributes.Key]TypedAttribute
	unknown []string
	source  *Element
}

// NewConfigElement returns a pointer to a new [ConfigElement] with all
// attributes of the element resolved through the registry.
func NewConfigElement(reg *attributes.Registry, e *Element) *ConfigElement {
	ce := &ConfigElement{
		Token:  e.Token,
		Parent: e.Parent,
		Value:  e.Value,
		attrs:  make(map[attributes.Key]TypedAttribute, len(e.Attributes)),
		source: e,
	}

	for _, a := range e.Attributes {
		key := reg.Key(a.Key)
		if key == attributes.KeyUnset {
			ce.unknown = append(ce.unknown, a.Key)

			continue
		}

		ce.attrs[key] = TypedAttribute{
			Key:    key,
			Value:  reg.Value(a.Value),
			Lexeme: a.Value,
		}
	}

	return ce
}

// Attribute returns the typed attribute for a key.
func (ce *ConfigElement) Attribute(key attributes.Key) (TypedAttribute, bool) {
	a, ok := ce.attrs[key]

	return a, ok
}

// UnknownKeys returns the raw keys that the registry did not recognize, in
// document order.
func (ce *ConfigElement) UnknownKeys() []string {
	return ce.unknown
}

// Description returns the diagnostic rendering of the underlying element.
func (ce *ConfigElement) Description() string {
	return ce.source.Description()
}
