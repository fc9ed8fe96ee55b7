package schema

import (
	"fmt"

	"golang.org/x/sys/unix"
)

type unameProvider interface {
	Uname(buf *unix.Utsname) error
}

// Platform returns the name of the running operating system as reported by
// uname(2), e.g. "Linux".
func Platform(unixOps unameProvider) (string, error) {
	var uts unix.Utsname

	if err := unixOps.Uname(&uts); err != nil {
		return "", fmt.Errorf("(schema) failed to uname: %w", err)
	}

	return unix.ByteSliceToString(uts.Sysname[:]), nil
}
