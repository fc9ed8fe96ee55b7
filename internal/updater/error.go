package updater

import "errors"

var (
	// ErrBadPlatform occurs when the configuration targets a platform other
	// than the running one.
	ErrBadPlatform = errors.New("platform mismatch")

	// ErrDelegateAborted occurs when a delegate hook declined to continue.
	ErrDelegateAborted = errors.New("aborted by delegate")

	// ErrResourceNotFound occurs when an operation refers to a root that is
	// not configured once the delegate configured the resource manager.
	ErrResourceNotFound = errors.New("resource root not found")

	// ErrBadPrecondition occurs when an operation was prevented from running,
	// either by the delegate or by cancellation.
	ErrBadPrecondition = errors.New("bad precondition")

	// ErrBadResult occurs when an operation failed.
	ErrBadResult = errors.New("bad operation result")

	// ErrBadUndo occurs when a rollback could not be completed.
	ErrBadUndo = errors.New("rollback could not be completed")

	// ErrAlreadyExecuted occurs when Execute is called more than once.
	ErrAlreadyExecuted = errors.New("updater was already executed")
)
