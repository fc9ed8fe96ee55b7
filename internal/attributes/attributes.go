// Package attributes maps the attribute keys and values of an update
// configuration document onto closed enumerations and back.
//
// The string tables in this package are the only source of truth, the lookup
// maps of a [Registry] are derived from them on construction. Unrecognized
// strings map onto the [KeyUnset] and [ValueUnset] sentinels, which are never
// valid members of their enumeration.
package attributes

// Key is an attribute key of a configuration element.
type Key int

// Value is a closed-set attribute value of a configuration element.
type Value int

const (
	KeyPath Key = iota
	KeyRoot
	KeyProduct
	KeyPlatform
	KeyMD5

	// KeyUnset is the sentinel for any unrecognized key.
	KeyUnset
)

const (
	ValueRemote Value = iota
	ValueTarget

	// ValueUnset is the sentinel for any unrecognized value.
	ValueUnset
)

// KeyCount is the amount of valid keys.
const KeyCount = int(KeyUnset)

// ValueCount is the amount of valid values.
const ValueCount = int(ValueUnset)

//nolint:gochecknoglobals
var (
	keyNames = [KeyCount]string{
		KeyPath:     "path",
		KeyRoot:     "root",
		KeyProduct:  "product",
		KeyPlatform: "platform",
		KeyMD5:      "md5",
	}

	valueNames = [ValueCount]string{
		ValueRemote: "Remote",
		ValueTarget: "Target",
	}
)

// Valid reports whether k is a member of the key enumeration.
func (k Key) Valid() bool {
	return k >= 0 && k < KeyUnset
}

// String returns the lexeme of the key, or "unset" for the sentinel.
func (k Key) String() string {
	if !k.Valid() {
		return "unset"
	}

	return keyNames[k]
}

// Valid reports whether v is a member of the value enumeration.
func (v Value) Valid() bool {
	return v >= 0 && v < ValueUnset
}

// String returns the lexeme of the value, or "unset" for the sentinel.
func (v Value) String() string {
	if !v.Valid() {
		return "unset"
	}

	return valueNames[v]
}
