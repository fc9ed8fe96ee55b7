package resource

import "errors"

var (
	// ErrRootNotConfigured occurs when a [Resource] is resolved against a
	// [Root] that has no path assigned in the [Manager].
	ErrRootNotConfigured = errors.New("root is not configured")

	// ErrPathEscapesRoot occurs when the path of a [Resource] climbs out of
	// the directory of its [Root].
	ErrPathEscapesRoot = errors.New("path escapes its root")
)
