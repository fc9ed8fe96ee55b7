package configuration

import (
	"fmt"
	"strings"
)

// Configuration keys of the application configuration file.
const (
	KeyPlatform     = "SWUPD_PLATFORM"
	KeyTargetRoot   = "SWUPD_TARGET_ROOT"
	KeyRemoteRoot   = "SWUPD_REMOTE_ROOT"
	KeyStagingDir   = "SWUPD_STAGING_DIR"
	KeyVerifyCopies = "SWUPD_VERIFY_COPIES"
	KeyRollback     = "SWUPD_ROLLBACK"
)

// DefaultConfigFile is read when no other file is given.
const DefaultConfigFile = "/etc/swupd.conf"

// Rollback is what happens after a failed update.
type Rollback int

const (
	// RollbackUndo reverts the executed operations, including the backups.
	RollbackUndo Rollback = iota

	// RollbackRestore reverts the executed update operations and restores
	// the backed up items, keeping the backups.
	RollbackRestore

	// RollbackNone leaves the system as it is.
	RollbackNone
)

func (r Rollback) String() string {
	switch r {
	case RollbackUndo:
		return "undo"
	case RollbackRestore:
		return "restore"
	case RollbackNone:
		return "none"
	default:
		return "unknown"
	}
}

// ParseRollback returns the [Rollback] for its name, case-insensitively. An
// empty name is [RollbackUndo].
func ParseRollback(s string) (Rollback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "undo":
		return RollbackUndo, nil
	case "restore":
		return RollbackRestore, nil
	case "none":
		return RollbackNone, nil
	default:
		return RollbackUndo, fmt.Errorf("(config) %w: %q", ErrInvalidRollback, s)
	}
}

// AppConfig is the principal structure holding the application configuration.
type AppConfig struct {
	// Platform overrides the detected platform name if not empty.
	Platform string

	TargetRoot string

	// RemoteRoot takes precedence over the resource URIs of an update
	// description if not empty.
	RemoteRoot string

	StagingDir   string
	VerifyCopies bool
	Rollback     Rollback
}

// NewAppConfig returns a pointer to a new [AppConfig] with the defaults.
func NewAppConfig() *AppConfig {
	return &AppConfig{
		TargetRoot:   "/",
		VerifyCopies: true,
		Rollback:     RollbackUndo,
	}
}
