// Package grammar implements the finite-state acceptor that validates the
// nesting and ordering of the tags of an update configuration document.
package grammar

// Token identifies an open or a close tag of the configuration grammar. Every
// close token is the ordinal of its open token plus one, so the parity of a
// token encodes whether it opens or closes.
type Token int

const (
	ConfigurationOpen Token = iota
	ConfigurationClose
	ResourceURIOpen
	ResourceURIClose
	ValidateOpen
	ValidateClose
	FileOpen
	FileClose
	DirectoryOpen
	DirectoryClose
	BackupOpen
	BackupClose
	OperationsOpen
	OperationsClose
	CopyOpen
	CopyClose
	FromOpen
	FromClose
	ToOpen
	ToClose
	RemoveOpen
	RemoveClose

	// TokenCount is the size of the alphabet, it is not a valid token.
	TokenCount
)

// tagNames holds the tag name for every open/close token pair, indexed by the
// ordinal of the pair (token / 2).
//
//nolint:gochecknoglobals
var tagNames = [TokenCount / 2]string{
	ConfigurationOpen / 2: "configuration",
	ResourceURIOpen / 2:   "resource-uri",
	ValidateOpen / 2:      "validate",
	FileOpen / 2:          "file",
	DirectoryOpen / 2:     "directory",
	BackupOpen / 2:        "backup",
	OperationsOpen / 2:    "operations",
	CopyOpen / 2:          "copy",
	FromOpen / 2:          "from",
	ToOpen / 2:            "to",
	RemoveOpen / 2:        "remove",
}

// Valid reports whether t is a member of the alphabet.
func (t Token) Valid() bool {
	return t >= 0 && t < TokenCount
}

// IsOpen reports whether t is an open token.
func (t Token) IsOpen() bool {
	return t.Valid() && t%2 == 0
}

// IsClose reports whether t is a close token.
func (t Token) IsClose() bool {
	return t.Valid() && t%2 == 1
}

// Open returns the open variant of t.
func (t Token) Open() Token {
	return t &^ 1
}

// Close returns the close variant of t.
func (t Token) Close() Token {
	return t | 1
}

// Name returns the bare tag name of t, e.g. "copy".
func (t Token) Name() string {
	if !t.Valid() {
		return ""
	}

	return tagNames[t/2]
}

// Lexeme returns the tag form of t, e.g. "<copy>" or "</copy>".
func (t Token) Lexeme() string {
	if !t.Valid() {
		return ""
	}

	if t.IsClose() {
		return "</" + t.Name() + ">"
	}

	return "<" + t.Name() + ">"
}

// String returns the lexeme of t.
func (t Token) String() string {
	if !t.Valid() {
		return "<invalid>"
	}

	return t.Lexeme()
}

// OpenLexeme returns the open lexeme for a bare tag name.
func OpenLexeme(name string) string {
	return "<" + name + ">"
}

// CloseLexeme returns the close lexeme for a bare tag name.
func CloseLexeme(name string) string {
	return "</" + name + ">"
}
