package operation

import "errors"

var (
	// ErrBadResource occurs when the item an operation acts on is missing, is
	// of the wrong type or could not be read or deleted.
	ErrBadResource = errors.New("bad resource")

	// ErrBadDestination occurs when the destination of a copy cannot be
	// created or written.
	ErrBadDestination = errors.New("bad destination")

	// ErrBadPermissions occurs when the operating system denied access.
	ErrBadPermissions = errors.New("bad permissions")

	// ErrHashMismatch occurs when the checksums of a copied file and its
	// source differ, this usually means there are underlying hardware issues.
	ErrHashMismatch = errors.New("hash mismatch")

	// ErrInvalidState occurs when an operation is asked to transition from a
	// state that does not allow it, e.g. undoing an operation that never
	// executed.
	ErrInvalidState = errors.New("invalid operation state")
)
