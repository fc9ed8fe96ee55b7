package configuration

import "errors"

var (
	// ErrInvalidRollback occurs when the rollback policy is not one of
	// "undo", "restore" or "none".
	ErrInvalidRollback = errors.New("invalid rollback policy")

	// ErrInvalidBool occurs when a boolean setting has an unrecognized value.
	ErrInvalidBool = errors.New("invalid boolean value")
)
