package main

import "errors"

var (
	// ErrMissingDescription occurs when no update description file was given
	// on the command line.
	ErrMissingDescription = errors.New("no update description given")

	// ErrUpdateFailed occurs when the update did not finish with a status of
	// Ok, regardless of any rollback.
	ErrUpdateFailed = errors.New("update has failed")
)
