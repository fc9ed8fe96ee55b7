package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/desertwitch/swupd/internal/configuration"
	"github.com/desertwitch/swupd/internal/operation"
	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/schema"
	"github.com/desertwitch/swupd/internal/updater"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDescription = `
<configuration platform="Linux" product="demo">
  <resource-uri>https://example.com/updates</resource-uri>
  <resource-uri>file://%s</resource-uri>
  <validate>
    <file>bin/app</file>
  </validate>
  <backup path="/backup">
    <file>/data/app/app</file>
  </backup>
  <operations>
    <copy>
      <from root="Remote">bin/app</from>
      <to root="Target">/data/app</to>
    </copy>
    <remove root="Target">%s</remove>
  </operations>
</configuration>
`

type testEnv struct {
	target  string
	remote  string
	staging string
}

func newAppEnv(t *testing.T) testEnv {
	t.Helper()

	base := t.TempDir()
	env := testEnv{
		target:  filepath.Join(base, "target"),
		remote:  filepath.Join(base, "remote"),
		staging: filepath.Join(base, "staging"),
	}

	for _, dir := range []string{
		filepath.Join(env.target, "data", "app"),
		filepath.Join(env.target, "tmp"),
		filepath.Join(env.remote, "bin"),
		env.staging,
	} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}

	require.NoError(t, os.WriteFile(filepath.Join(env.remote, "bin", "app"), []byte("new"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.target, "data", "app", "app"), []byte("old"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(env.target, "tmp", "x"), []byte("junk"), 0o644))

	return env
}

func newTestApp(t *testing.T, env testEnv, removePath string, rollback configuration.Rollback) *App {
	t.Helper()

	descPath := filepath.Join(t.TempDir(), "update.xml")
	require.NoError(t, os.WriteFile(descPath, fmt.Appendf(nil, testDescription, env.remote, removePath), 0o600))

	cfg, err := loadDescription(descPath)
	require.NoError(t, err)

	appConfig := configuration.NewAppConfig()
	appConfig.TargetRoot = env.target
	appConfig.StagingDir = env.staging
	appConfig.Rollback = rollback

	resources := resource.NewManager(appConfig.TargetRoot)
	opHandler := operation.NewHandler(resources, &schema.OS{}, &schema.Unix{}, operation.Options{
		StagingDir:   appConfig.StagingDir,
		VerifyCopies: appConfig.VerifyCopies,
	})

	upd := updater.New(cfg, newCLIDelegate("", &schema.OS{}, nil), opHandler, updater.Options{Platform: "Linux"})

	return NewApp(appConfig, upd, nil)
}

func readString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(data)
}

func TestApp_Launch_Success(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/x", configuration.RollbackUndo)

	require.NoError(t, app.Launch(t.Context()))

	assert.Equal(t, "new", readString(t, filepath.Join(env.target, "data", "app", "app")))
	assert.Equal(t, "old", readString(t, filepath.Join(env.target, "backup", "data", "app", "app")))
	assert.NoFileExists(t, filepath.Join(env.target, "tmp", "x"))

	entries, err := os.ReadDir(env.staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged data should be purged after a successful update")
}

func TestApp_Launch_Fail_RollbackUndo(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/missing", configuration.RollbackUndo)

	err := app.Launch(t.Context())
	require.ErrorIs(t, err, ErrUpdateFailed)
	require.ErrorIs(t, err, operation.ErrBadResource)

	assert.Equal(t, updater.StatusBadResult, app.updater.Status())
	assert.Equal(t, updater.PhaseRolledBack, app.updater.Phase())

	assert.Equal(t, "old", readString(t, filepath.Join(env.target, "data", "app", "app")))
	assert.NoFileExists(t, filepath.Join(env.target, "backup", "data", "app", "app"))
	assert.FileExists(t, filepath.Join(env.target, "tmp", "x"))
}

func TestApp_Launch_Fail_RollbackRestore(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/missing", configuration.RollbackRestore)

	require.ErrorIs(t, app.Launch(t.Context()), ErrUpdateFailed)

	assert.Equal(t, "old", readString(t, filepath.Join(env.target, "data", "app", "app")))
	assert.Equal(t, "old", readString(t, filepath.Join(env.target, "backup", "data", "app", "app")))
}

func TestApp_Launch_Fail_RollbackNone(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/missing", configuration.RollbackNone)

	require.ErrorIs(t, app.Launch(t.Context()), ErrUpdateFailed)

	assert.Equal(t, "new", readString(t, filepath.Join(env.target, "data", "app", "app")))
	assert.Equal(t, updater.PhaseFailed, app.updater.Phase())
}

func TestApp_Launch_Fail_Cancelled(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/x", configuration.RollbackUndo)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, app.Launch(ctx), ErrUpdateFailed)
	assert.Equal(t, updater.StatusBadPrecondition, app.updater.Status())
	assert.FileExists(t, filepath.Join(env.target, "tmp", "x"))
}

func TestLoadDescription_Fail_Missing(t *testing.T) {
	t.Parallel()

	_, err := loadDescription(filepath.Join(t.TempDir(), "missing.xml"))
	require.Error(t, err)
}

type recordingNotifier struct {
	sync.Mutex
	labels []string
	status updater.Status
}

func (n *recordingNotifier) Operation(label string) {
	n.Lock()
	defer n.Unlock()

	n.labels = append(n.labels, label)
}

func (n *recordingNotifier) Finish(status updater.Status, _ error) {
	n.Lock()
	defer n.Unlock()

	n.status = status
}

func TestCLIDelegate_Success_Notifies(t *testing.T) {
	t.Parallel()

	env := newAppEnv(t)
	app := newTestApp(t, env, "/tmp/x", configuration.RollbackUndo)

	notifier := &recordingNotifier{status: updater.StatusBadUndo}
	cfg := app.updater.Configuration()
	handler := operation.NewHandler(resource.NewManager(env.target), &schema.OS{}, &schema.Unix{}, operation.Options{StagingDir: env.staging})
	upd := updater.New(cfg, newCLIDelegate(env.remote, &schema.OS{}, notifier), handler, updater.Options{Platform: "Linux"})

	assert.Equal(t, updater.StatusOk, upd.Execute(t.Context()))
	require.NoError(t, upd.Commit())

	assert.Len(t, notifier.labels, cfg.Operations())
	assert.Equal(t, updater.StatusOk, notifier.status)
}
