package document

import "errors"

var (
	// ErrGrammarFault occurs when a tag is unrecognized or not expected at
	// its position within the document.
	ErrGrammarFault = errors.New("grammar fault")

	// ErrDuplicateAttribute occurs when an element carries the same attribute
	// key more than once.
	ErrDuplicateAttribute = errors.New("duplicate attribute key")

	// ErrIncomplete occurs when the document ended before its root element
	// was closed.
	ErrIncomplete = errors.New("document ended in incomplete state")

	// ErrOpenScope occurs when the document ended with an element scope still
	// open.
	ErrOpenScope = errors.New("document ended with an open scope")

	// ErrFinished occurs when events are fed into an already finished
	// [Builder].
	ErrFinished = errors.New("builder already finished")
)
