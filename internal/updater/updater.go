// Package updater runs a parsed configuration: it checks the platform, lets
// a [Delegate] configure the resource roots and then executes the validate,
// backup and update lists in order, stopping at the first failure. An
// interrupted run can be rolled back with [Updater.Undo] or
// [Updater.Restore].
package updater

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/parser"
	"github.com/desertwitch/swupd/internal/resource"
)

// Options are the tunables of an [Updater].
type Options struct {
	// Platform is the name of the running platform, it must match the
	// configuration's platform exactly.
	Platform string
}

// Updater executes a [parser.Configuration]. Execute is meant to be called
// once, from a single goroutine. The progress accessors may be used
// concurrently from other goroutines.
type Updater struct {
	cfg      *parser.Configuration
	delegate Delegate
	handler  *operation.Handler
	opts     Options

	started    atomic.Bool
	phase      atomic.Int32
	validateSP atomic.Int64
	backupSP   atomic.Int64
	updateSP   atomic.Int64

	mu     sync.Mutex
	err    error
	status Status
}

// New returns a pointer to a new [Updater]. A nil delegate is replaced by a
// [NopDelegate].
func New(cfg *parser.Configuration, delegate Delegate, handler *operation.Handler, opts Options) *Updater {
	if delegate == nil {
		delegate = NopDelegate{}
	}

	return &Updater{
		cfg:      cfg,
		delegate: delegate,
		handler:  handler,
		opts:     opts,
	}
}

// Configuration returns the configuration the [Updater] executes.
func (u *Updater) Configuration() *parser.Configuration {
	return u.cfg
}

// Resources returns the resource manager the operations resolve against.
func (u *Updater) Resources() *resource.Manager {
	return u.handler.Resources
}

// Execute runs the update and returns the status that the delegate's OnExit
// reported. The context is checked before every operation, an operation
// that already started always runs to completion.
func (u *Updater) Execute(ctx context.Context) Status {
	if !u.started.CompareAndSwap(false, true) {
		u.setErr(ErrAlreadyExecuted)

		return StatusBadPrecondition
	}

	u.setPhase(PhaseInit)

	if u.cfg.Platform != u.opts.Platform {
		return u.exit(StatusBadPlatform, nil, operation.Ok,
			fmt.Errorf("%w: configuration is for %q, running on %q", ErrBadPlatform, u.cfg.Platform, u.opts.Platform))
	}

	if status := u.delegate.OnInit(u); status != StatusOk {
		return u.exit(status, nil, operation.Ok, fmt.Errorf("%w: on init", ErrDelegateAborted))
	}

	u.setPhase(PhaseConfigure)

	if status := u.delegate.OnConfigureResourceManager(u.handler.Resources, slices.Clone(u.cfg.ResourceURIs)); status != StatusOk {
		return u.exit(status, nil, operation.Ok, fmt.Errorf("%w: on configure resource manager", ErrDelegateAborted))
	}

	if err := u.checkRoots(); err != nil {
		return u.exit(StatusResourceNotFound, nil, operation.Ok, err)
	}

	phases := []struct {
		phase Phase
		ops   []operation.Operation
		sp    *atomic.Int64
		pre   func(operation.Operation, int) Status
	}{
		{PhaseValidate, u.cfg.Validate, &u.validateSP, u.delegate.OnPreValidate},
		{PhaseBackup, u.cfg.Backup, &u.backupSP, u.delegate.OnPreBackup},
		{PhaseUpdate, u.cfg.Update, &u.updateSP, u.delegate.OnPreUpdate},
	}

	for _, p := range phases {
		u.setPhase(p.phase)

		for i, op := range p.ops {
			if err := ctx.Err(); err != nil {
				return u.exit(StatusBadPrecondition, op, operation.Ok, fmt.Errorf("%w: %w", ErrBadPrecondition, err))
			}

			if status := p.pre(op, i); status != StatusOk {
				return u.exit(StatusBadPrecondition, op, operation.Ok,
					fmt.Errorf("%w: delegate returned %s before %s", ErrBadPrecondition, status, op.Label()))
			}

			if err := op.Execute(u.handler); err != nil {
				return u.exit(StatusBadResult, op, operation.ResultOf(err), fmt.Errorf("%w: %w", ErrBadResult, err))
			}

			p.sp.Add(1)
		}
	}

	u.setPhase(PhaseDone)

	return u.exit(StatusOk, nil, operation.Ok, nil)
}

// checkRoots ensures that every root referenced by an operation resolves.
func (u *Updater) checkRoots() error {
	for _, ops := range [][]operation.Operation{u.cfg.Validate, u.cfg.Backup, u.cfg.Update} {
		for _, op := range ops {
			for _, r := range op.Resources() {
				if _, ok := u.handler.Resources.Path(r.Root()); !ok {
					return fmt.Errorf("%w: %s (needed by %s)", ErrResourceNotFound, r.Root(), op.Label())
				}
			}
		}
	}

	return nil
}

func (u *Updater) exit(status Status, op operation.Operation, result operation.Result, err error) Status {
	if status != StatusOk {
		u.setPhase(PhaseFailed)
		u.setErr(err)

		args := []any{"status", status, "err", err}
		if op != nil {
			args = append(args, "op", op.Label(), "result", result)
		}
		slog.Error("Update failed", args...)
	}

	reported := u.delegate.OnExit(u, status, op, result)

	u.mu.Lock()
	u.status = reported
	u.mu.Unlock()

	return reported
}

// Undo reverts the executed update operations in reverse order, then the
// executed backup operations in reverse order. It stops at the first
// operation that cannot be undone.
func (u *Updater) Undo() Status {
	u.setPhase(PhaseRollback)

	if err := u.revert(u.cfg.Update[:u.updateSP.Load()], undo); err != nil {
		return u.rollbackFailed(err)
	}

	if err := u.revert(u.cfg.Backup[:u.backupSP.Load()], undo); err != nil {
		return u.rollbackFailed(err)
	}

	u.setPhase(PhaseRolledBack)
	slog.Info("Rollback complete")

	return StatusOk
}

// Restore reverts the executed update operations in reverse order and then
// puts every backed up item back in place. The backups themselves are kept.
func (u *Updater) Restore() Status {
	u.setPhase(PhaseRollback)

	if err := u.revert(u.cfg.Update[:u.updateSP.Load()], undo); err != nil {
		return u.rollbackFailed(err)
	}

	if err := u.revert(u.cfg.Backup[:u.backupSP.Load()], invert); err != nil {
		return u.rollbackFailed(err)
	}

	u.setPhase(PhaseRolledBack)
	slog.Info("Restore from backup complete")

	return StatusOk
}

func undo(op operation.Operation, h *operation.Handler) error {
	return op.Undo(h)
}

func invert(op operation.Operation, h *operation.Handler) error {
	return op.Invert(h)
}

// revert applies fn to the executed operations of ops, last one first.
// Operations that were already reverted are skipped.
func (u *Updater) revert(ops []operation.Operation, fn func(operation.Operation, *operation.Handler) error) error {
	for i := len(ops) - 1; i >= 0; i-- {
		if ops[i].State() != operation.Executed {
			continue
		}

		if err := fn(ops[i], u.handler); err != nil {
			return err
		}
	}

	return nil
}

func (u *Updater) rollbackFailed(err error) Status {
	err = fmt.Errorf("%w: %w", ErrBadUndo, err)

	u.setPhase(PhaseFailed)
	u.setErr(err)

	slog.Error("Rollback failed", "err", err)

	return StatusBadUndo
}

// Commit purges the data that executed operations staged for their undo and
// removes a temporary staging directory. Undo is no longer possible
// afterwards.
func (u *Updater) Commit() error {
	var errs []error

	for _, ops := range [][]operation.Operation{u.cfg.Backup, u.cfg.Update} {
		for _, op := range ops {
			d, ok := op.(operation.Discarder)
			if !ok {
				continue
			}
			if err := d.Discard(u.handler); err != nil {
				errs = append(errs, err)
			}
		}
	}

	u.handler.Cleanup()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("(updater) failed to discard staged data: %w", err)
	}

	return nil
}

// Progress returns a snapshot of the current phase and counters.
func (u *Updater) Progress() Progress {
	return Progress{
		Phase:    u.Phase(),
		Validate: Counter{Done: u.ValidateSP(), Total: len(u.cfg.Validate)},
		Backup:   Counter{Done: u.BackupSP(), Total: len(u.cfg.Backup)},
		Update:   Counter{Done: u.UpdateSP(), Total: len(u.cfg.Update)},
	}
}

// ValidateSP returns the number of validate operations that completed.
func (u *Updater) ValidateSP() int {
	return int(u.validateSP.Load())
}

// BackupSP returns the number of backup operations that completed.
func (u *Updater) BackupSP() int {
	return int(u.backupSP.Load())
}

// UpdateSP returns the number of update operations that completed.
func (u *Updater) UpdateSP() int {
	return int(u.updateSP.Load())
}

func (u *Updater) Phase() Phase {
	return Phase(u.phase.Load())
}

func (u *Updater) setPhase(p Phase) {
	u.phase.Store(int32(p))
	slog.Debug("Phase changed", "phase", p)
}

// Err returns the detailed error of the last failure, if any.
func (u *Updater) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.err
}

func (u *Updater) setErr(err error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.err = err
}

// Status returns the status reported by the last run.
func (u *Updater) Status() Status {
	u.mu.Lock()
	defer u.mu.Unlock()

	return u.status
}
