package operation

import (
	"errors"
	"io/fs"
)

// Result classifies the outcome of an operation.
type Result int

const (
	Ok Result = iota
	BadResource
	BadDestination
	BadPermissions
)

func (r Result) String() string {
	switch r {
	case Ok:
		return "Ok"
	case BadResource:
		return "BadResource"
	case BadDestination:
		return "BadDestination"
	case BadPermissions:
		return "BadPermissions"
	default:
		return "Unknown"
	}
}

// ResultOf maps an error returned by an operation to its [Result]. Errors
// without a more specific classification are [BadResource].
func ResultOf(err error) Result {
	switch {
	case err == nil:
		return Ok
	case errors.Is(err, ErrBadPermissions), errors.Is(err, fs.ErrPermission):
		return BadPermissions
	case errors.Is(err, ErrBadDestination):
		return BadDestination
	default:
		return BadResource
	}
}
