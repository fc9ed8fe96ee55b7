package parser

import (
	"errors"
	"strings"

	"github.com/desertwitch/swupd/internal/grammar"
)

var (
	// ErrInvalidElement occurs when an element is missing, superfluous or
	// not allowed at its position.
	ErrInvalidElement = errors.New("invalid element")

	// ErrInvalidAttributeKey occurs when a required attribute is missing or
	// an element carries an attribute that is not known.
	ErrInvalidAttributeKey = errors.New("missing or invalid attribute key")

	// ErrInvalidAttributeValue occurs when an attribute value is not one of
	// the values allowed for it.
	ErrInvalidAttributeValue = errors.New("missing or invalid attribute value")
)

// Status is the outcome of a parse.
type Status int

const (
	StatusOk Status = iota
	StatusInvalidElement
	StatusInvalidAttributeKey
	StatusInvalidAttributeValue
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusInvalidElement:
		return "InvalidElement"
	case StatusInvalidAttributeKey:
		return "InvalidAttributeKey"
	case StatusInvalidAttributeValue:
		return "InvalidAttributeValue"
	default:
		return "Unknown"
	}
}

// Error is a parse failure together with the path of elements that led to
// it, outermost first.
type Error struct {
	Status Status
	Stack  []grammar.Token
}

// Error renders the fault with the innermost element first, e.g.
// "invalid element: <copy> in <operations> in <configuration>".
func (e *Error) Error() string {
	lexemes := make([]string, 0, len(e.Stack))
	for i := len(e.Stack) - 1; i >= 0; i-- {
		lexemes = append(lexemes, e.Stack[i].Open().Lexeme())
	}

	msg := e.Unwrap().Error()
	if len(lexemes) == 0 {
		return msg
	}

	return msg + ": " + strings.Join(lexemes, " in ")
}

func (e *Error) Unwrap() error {
	switch e.Status {
	case StatusInvalidAttributeKey:
		return ErrInvalidAttributeKey
	case StatusInvalidAttributeValue:
		return ErrInvalidAttributeValue
	default:
		return ErrInvalidElement
	}
}
