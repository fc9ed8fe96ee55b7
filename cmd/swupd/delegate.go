package main

import (
	"log/slog"
	"net/url"
	"os"

	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/updater"
)

type statProvider interface {
	Stat(name string) (os.FileInfo, error)
}

type operationNotifier interface {
	Operation(label string)
	Finish(status updater.Status, err error)
}

// cliDelegate locates the remote root for the command-line application and
// reports every step to the log and, if present, the user interface.
type cliDelegate struct {
	updater.NopDelegate

	remoteRoot string
	osOps      statProvider
	notifier   operationNotifier
}

func newCLIDelegate(remoteRoot string, osOps statProvider, notifier operationNotifier) *cliDelegate {
	return &cliDelegate{
		remoteRoot: remoteRoot,
		osOps:      osOps,
		notifier:   notifier,
	}
}

func (d *cliDelegate) OnInit(u *updater.Updater) updater.Status {
	plan := u.Configuration().Summary()

	slog.Info("Starting update:",
		"product", plan.Product,
		"platform", plan.Platform,
		"operations", u.Configuration().Operations(),
	)

	return updater.StatusOk
}

// OnConfigureResourceManager sets the remote root from the configured
// remote root or, if there is none, from the first resource URI that is an
// existing local directory. Leaving it unset is not an error here, the
// updater rejects the run if an operation needs it.
func (d *cliDelegate) OnConfigureResourceManager(rm *resource.Manager, resourceURIs []string) updater.Status {
	if d.remoteRoot != "" {
		rm.SetPath(resource.Remote, d.remoteRoot)
		slog.Info("Using remote root:", "path", d.remoteRoot)

		return updater.StatusOk
	}

	for _, uri := range resourceURIs {
		path, ok := localPath(uri)
		if !ok {
			slog.Debug("Skipped unsupported resource URI:", "uri", uri)

			continue
		}

		fi, err := d.osOps.Stat(path)
		if err != nil || !fi.IsDir() {
			slog.Debug("Skipped unusable resource URI:", "uri", uri, "err", err)

			continue
		}

		rm.SetPath(resource.Remote, path)
		slog.Info("Using remote root:", "path", path, "uri", uri)

		return updater.StatusOk
	}

	if len(resourceURIs) > 0 {
		slog.Warn("No resource URI points to a local directory", "uris", resourceURIs)
	}

	return updater.StatusOk
}

// localPath returns the filesystem path of a file URI or a plain path.
func localPath(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", false
	}

	switch u.Scheme {
	case "file":
		if u.Host != "" && u.Host != "localhost" {
			return "", false
		}

		return u.Path, u.Path != ""
	case "":
		return uri, uri != ""
	default:
		return "", false
	}
}

func (d *cliDelegate) onOperation(phase string, op operation.Operation, index int) updater.Status {
	slog.Debug("Executing:", "phase", phase, "index", index, "op", op.Label())

	if d.notifier != nil {
		d.notifier.Operation(op.Label())
	}

	return updater.StatusOk
}

func (d *cliDelegate) OnPreValidate(op operation.Operation, index int) updater.Status {
	return d.onOperation("validate", op, index)
}

func (d *cliDelegate) OnPreBackup(op operation.Operation, index int) updater.Status {
	return d.onOperation("backup", op, index)
}

func (d *cliDelegate) OnPreUpdate(op operation.Operation, index int) updater.Status {
	return d.onOperation("update", op, index)
}

func (d *cliDelegate) OnExit(u *updater.Updater, status updater.Status, _ operation.Operation, _ operation.Result) updater.Status {
	progress := u.Progress()

	slog.Info("Update stopped:",
		"status", status,
		"phase", progress.Phase,
		"validated", progress.Validate.Done,
		"backedUp", progress.Backup.Done,
		"updated", progress.Update.Done,
	)

	if d.notifier != nil {
		d.notifier.Finish(status, u.Err())
	}

	return status
}
