package updater

import (
	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/resource"
)

// Delegate is notified by an [Updater] at every step of a run. A hook that
// returns anything but [StatusOk] stops the run before the next step.
type Delegate interface {
	OnInit(u *Updater) Status

	// OnConfigureResourceManager is where the [resource.Remote] root should
	// be located, e.g. from one of the resource URIs of the configuration.
	OnConfigureResourceManager(rm *resource.Manager, resourceURIs []string) Status

	OnPreValidate(op operation.Operation, index int) Status
	OnPreBackup(op operation.Operation, index int) Status
	OnPreUpdate(op operation.Operation, index int) Status

	// OnExit is always called last. The offending operation is nil if the
	// run did not fail on one. The returned status becomes the status of the
	// run.
	OnExit(u *Updater, status Status, op operation.Operation, result operation.Result) Status
}

// NopDelegate accepts every step. It can be embedded to implement only some
// of the hooks.
type NopDelegate struct{}

func (NopDelegate) OnInit(*Updater) Status {
	return StatusOk
}

func (NopDelegate) OnConfigureResourceManager(*resource.Manager, []string) Status {
	return StatusOk
}

func (NopDelegate) OnPreValidate(operation.Operation, int) Status {
	return StatusOk
}

func (NopDelegate) OnPreBackup(operation.Operation, int) Status {
	return StatusOk
}

func (NopDelegate) OnPreUpdate(operation.Operation, int) Status {
	return StatusOk
}

func (NopDelegate) OnExit(_ *Updater, status Status, _ operation.Operation, _ operation.Result) Status {
	return status
}
