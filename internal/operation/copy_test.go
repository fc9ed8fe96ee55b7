package operation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopy_Success_FileIntoNewDirectory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "bin", "app"), "v2")

	op := NewCopy(
		resource.New("bin/app", resource.File, resource.Remote),
		resource.New("/opt/app/bin", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, Executed, op.State())
	assert.Equal(t, "v2", readFile(t, filepath.Join(env.target, "opt", "app", "bin", "app")))

	require.NoError(t, op.Undo(env.handler))
	assert.Equal(t, Undone, op.State())
	assert.NoFileExists(t, filepath.Join(env.target, "opt", "app", "bin", "app"))
	assert.NoDirExists(t, filepath.Join(env.target, "opt"))
}

func TestCopy_Success_OverwriteAndUndo(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app.conf"), "new")
	writeFile(t, filepath.Join(env.target, "etc", "app.conf"), "old")

	op := NewCopy(
		resource.New("app.conf", resource.File, resource.Remote),
		resource.New("/etc", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, "new", readFile(t, filepath.Join(env.target, "etc", "app.conf")))
	assert.Equal(t, 1, stagingEntries(t, env.staging))

	require.NoError(t, op.Undo(env.handler))
	assert.Equal(t, "old", readFile(t, filepath.Join(env.target, "etc", "app.conf")))
	assert.DirExists(t, filepath.Join(env.target, "etc"))
	assert.Equal(t, 0, stagingEntries(t, env.staging))
}

func TestCopy_Success_Discard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app.conf"), "new")
	writeFile(t, filepath.Join(env.target, "etc", "app.conf"), "old")

	op := NewCopy(
		resource.New("app.conf", resource.File, resource.Remote),
		resource.New("/etc", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	require.NoError(t, op.Discard(env.handler))
	assert.Equal(t, 0, stagingEntries(t, env.staging))

	require.NoError(t, op.Undo(env.handler))
	assert.NoFileExists(t, filepath.Join(env.target, "etc", "app.conf"))
}

func TestCopy_Success_DirectoryTree(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	share := filepath.Join(env.remote, "share")
	writeFile(t, filepath.Join(share, "a.txt"), "a")
	writeFile(t, filepath.Join(share, "sub", "b.txt"), "b")
	require.NoError(t, os.Chmod(filepath.Join(share, "sub", "b.txt"), 0o600))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(share, "link")))

	op := NewCopy(
		resource.New("share", resource.Directory, resource.Remote),
		resource.New("/opt/app", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))

	dst := filepath.Join(env.target, "opt", "app", "share")
	assert.Equal(t, "a", readFile(t, filepath.Join(dst, "a.txt")))
	assert.Equal(t, "b", readFile(t, filepath.Join(dst, "sub", "b.txt")))

	info, err := os.Stat(filepath.Join(dst, "sub", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "a.txt", target)

	require.NoError(t, op.Undo(env.handler))
	assert.NoDirExists(t, dst)
}

func TestCopy_Fail_MissingSource(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	op := NewCopy(
		resource.New("missing", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrBadResource)
	assert.Equal(t, BadResource, ResultOf(err))
	assert.Equal(t, Failed, op.State())
	assert.NoDirExists(t, filepath.Join(env.target, "opt"))
}

func TestCopy_Fail_TypeMismatch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app"), "v2")

	op := NewCopy(
		resource.New("app", resource.Directory, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	require.ErrorIs(t, op.Execute(env.handler), ErrBadResource)
}

func TestCopy_Success_DirectoryDeclaredAsFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "share", "doc.txt"), "docs")

	op := NewCopy(
		resource.New("share", resource.File, resource.Remote),
		resource.New("/usr", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, "docs", readFile(t, filepath.Join(env.target, "usr", "share", "doc.txt")))
}

func TestCopy_Fail_DestinationIsFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app"), "v2")
	writeFile(t, filepath.Join(env.target, "opt"), "not a directory")

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrBadDestination)
	assert.Equal(t, BadDestination, ResultOf(err))
}

func TestCopy_Fail_Permissions(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app"), "v2")

	locked := filepath.Join(env.target, "locked")
	require.NoError(t, os.MkdirAll(locked, 0o755))
	require.NoError(t, os.Chmod(locked, 0o555))
	t.Cleanup(func() { os.Chmod(locked, 0o755) }) //nolint:errcheck

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/locked", resource.Directory, resource.Target),
	)

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrBadPermissions)
	assert.Equal(t, BadPermissions, ResultOf(err))
}

func TestCopy_Fail_RootNotConfigured(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.handler.Resources = resource.NewManager(env.target)

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrBadResource)
	require.ErrorIs(t, err, resource.ErrRootNotConfigured)
}

func TestCopy_Fail_InvalidState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app"), "v2")

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	require.ErrorIs(t, op.Undo(env.handler), ErrInvalidState)
	require.ErrorIs(t, op.Invert(env.handler), ErrInvalidState)

	require.NoError(t, op.Execute(env.handler))
	require.ErrorIs(t, op.Execute(env.handler), ErrInvalidState)
}

func TestCopy_Success_InvertRestoresBackup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "data", "app", "bin"), "original")

	backup := NewCopy(
		resource.New("/data/app/bin", resource.File, resource.Target),
		resource.New("/backup/data/app", resource.Directory, resource.Target),
	)

	require.NoError(t, backup.Execute(env.handler))
	assert.Equal(t, "original", readFile(t, filepath.Join(env.target, "backup", "data", "app", "bin")))

	writeFile(t, filepath.Join(env.target, "data", "app", "bin"), "broken")

	require.NoError(t, backup.Invert(env.handler))
	assert.Equal(t, Inverted, backup.State())
	assert.Equal(t, "original", readFile(t, filepath.Join(env.target, "data", "app", "bin")))
	assert.FileExists(t, filepath.Join(env.target, "backup", "data", "app", "bin"))
	assert.Equal(t, 0, stagingEntries(t, env.staging))
}

func TestCopy_Label(t *testing.T) {
	t.Parallel()

	op := NewCopy(
		resource.New("bin/app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	assert.Equal(t, "copy Remote:bin/app(File) -> Target:/opt(Directory)", op.Label())
	assert.Len(t, op.Resources(), 2)
	assert.Equal(t, Pending, op.State())
}

func newMergeFixture(t *testing.T) (*testEnv, *Copy) {
	t.Helper()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app", "app.conf"), "new")
	writeFile(t, filepath.Join(env.remote, "app", "plugins", "extra.conf"), "plugin")
	writeFile(t, filepath.Join(env.target, "etc", "app", "app.conf"), "old")
	writeFile(t, filepath.Join(env.target, "etc", "app", "local.conf"), "local")

	op := NewCopy(
		resource.New("app", resource.Directory, resource.Remote),
		resource.New("/etc", resource.Directory, resource.Target),
	)

	return env, op
}

func TestCopy_Success_DirectoryMergeKeepsLocalFiles(t *testing.T) {
	t.Parallel()

	env, op := newMergeFixture(t)
	dst := filepath.Join(env.target, "etc", "app")

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, "new", readFile(t, filepath.Join(dst, "app.conf")))
	assert.Equal(t, "plugin", readFile(t, filepath.Join(dst, "plugins", "extra.conf")))
	assert.Equal(t, "local", readFile(t, filepath.Join(dst, "local.conf")))
	assert.Equal(t, 1, stagingEntries(t, env.staging), "only the overwritten file should be staged")

	require.NoError(t, op.Discard(env.handler))
	assert.Equal(t, "local", readFile(t, filepath.Join(dst, "local.conf")))
	assert.Equal(t, "new", readFile(t, filepath.Join(dst, "app.conf")))
	assert.Equal(t, 0, stagingEntries(t, env.staging))
}

func TestCopy_Success_DirectoryMergeUndo(t *testing.T) {
	t.Parallel()

	env, op := newMergeFixture(t)
	dst := filepath.Join(env.target, "etc", "app")

	require.NoError(t, op.Execute(env.handler))
	require.NoError(t, op.Undo(env.handler))

	assert.Equal(t, "old", readFile(t, filepath.Join(dst, "app.conf")))
	assert.Equal(t, "local", readFile(t, filepath.Join(dst, "local.conf")))
	assert.NoDirExists(t, filepath.Join(dst, "plugins"))
	assert.Equal(t, 0, stagingEntries(t, env.staging))
}

func TestCopy_Success_DirectoryReplacesFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.remote, "app", "app.conf"), "new")
	writeFile(t, filepath.Join(env.target, "etc", "app"), "a file in the way")

	op := NewCopy(
		resource.New("app", resource.Directory, resource.Remote),
		resource.New("/etc", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, "new", readFile(t, filepath.Join(env.target, "etc", "app", "app.conf")))

	require.NoError(t, op.Undo(env.handler))
	assert.Equal(t, "a file in the way", readFile(t, filepath.Join(env.target, "etc", "app")))
}

func TestCopy_Fail_DestinationInsideSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from string
		to   string
	}{
		{"Fail_BackupIntoOwnSubtree", "/data", "/data/backup"},
		{"Fail_IntoOwnParent", "/data", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			writeFile(t, filepath.Join(env.target, "data", "app.bin"), "payload")

			op := NewCopy(
				resource.New(tt.from, resource.Directory, resource.Target),
				resource.New(tt.to, resource.Directory, resource.Target),
			)

			err := op.Execute(env.handler)
			require.ErrorIs(t, err, ErrBadDestination)
			assert.Equal(t, Failed, op.State())
			assert.NoDirExists(t, filepath.Join(env.target, "data", "backup"))
			assert.Equal(t, "payload", readFile(t, filepath.Join(env.target, "data", "app.bin")))
		})
	}
}

func TestWithin(t *testing.T) {
	t.Parallel()

	assert.True(t, within("/data", "/data"))
	assert.True(t, within("/data", "/data/backup/data"))
	assert.True(t, within("/data/", "/data/x"))
	assert.False(t, within("/data", "/database/x"))
	assert.False(t, within("/data", "/backup/data"))
	assert.False(t, within("/data/app", "/data"))
}

// corruptingOS appends to every temporary copy right before it is read back
// for verification.
type corruptingOS struct {
	schema.OS
}

func (c *corruptingOS) Open(name string) (*os.File, error) {
	if strings.Contains(filepath.Base(name), ".swupd-") {
		if f, err := os.OpenFile(name, os.O_APPEND|os.O_WRONLY, 0); err == nil {
			_, _ = f.WriteString("bitrot")
			f.Close()
		}
	}

	return c.OS.Open(name)
}

func TestCopy_Fail_VerifyReadsBackDestination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.handler.OSOps = &corruptingOS{}
	writeFile(t, filepath.Join(env.remote, "app"), "v2")

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrHashMismatch)
	require.ErrorIs(t, err, ErrBadDestination)
	assert.NoDirExists(t, filepath.Join(env.target, "opt"))
}

func TestCopy_Success_VerifyDisabledSkipsReadBack(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.handler.OSOps = &corruptingOS{}
	env.handler.verify = false
	writeFile(t, filepath.Join(env.remote, "app"), "v2")

	op := NewCopy(
		resource.New("app", resource.File, resource.Remote),
		resource.New("/opt", resource.Directory, resource.Target),
	)

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, "v2", readFile(t, filepath.Join(env.target, "opt", "app")))
}
