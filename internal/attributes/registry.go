package attributes

// Registry is a bidirectional lookup between attribute lexemes and their
// enumerations. It is read-only after [NewRegistry] returns and therefore safe
// for concurrent use.
type Registry struct {
	keys   map[string]Key
	values map[string]Value
}

// NewRegistry returns a pointer to a new [Registry] derived from the static
// key and value tables.
func NewRegistry() *Registry {
	r := &Registry{
		keys:   make(map[string]Key, KeyCount),
		values: make(map[string]Value, ValueCount),
	}

	for i, name := range keyNames {
		r.keys[name] = Key(i)
	}

	for i, name := range valueNames {
		r.values[name] = Value(i)
	}

	return r
}

// Key returns the [Key] for a lexeme or [KeyUnset] if it is not recognized.
func (r *Registry) Key(s string) Key {
	if k, ok := r.keys[s]; ok {
		return k
	}

	return KeyUnset
}

// Value returns the [Value] for a lexeme or [ValueUnset] if it is not
// recognized. Values are case-sensitive.
func (r *Registry) Value(s string) Value {
	if v, ok := r.values[s]; ok {
		return v
	}

	return ValueUnset
}

// KeyString returns the lexeme of a [Key]. The boolean is false for
// [KeyUnset] and anything else outside of the enumeration.
func (r *Registry) KeyString(k Key) (string, bool) {
	if !k.Valid() {
		return "", false
	}

	return keyNames[k], true
}

// ValueString returns the lexeme of a [Value]. The boolean is false for
// [ValueUnset] and anything else outside of the enumeration.
func (r *Registry) ValueString(v Value) (string, bool) {
	if !v.Valid() {
		return "", false
	}

	return valueNames[v], true
}
