package operation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertwitch/swupd/internal/resource"
	"github.com/desertwitch/swupd/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestRemove_Success_FileUndo(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "tmp", "x"), "data")

	op := NewRemove(resource.New("/tmp/x", resource.File, resource.Target))

	require.NoError(t, op.Execute(env.handler))
	assert.Equal(t, Executed, op.State())
	assert.NoFileExists(t, filepath.Join(env.target, "tmp", "x"))
	assert.Equal(t, 1, stagingEntries(t, env.staging))

	require.NoError(t, op.Undo(env.handler))
	assert.Equal(t, Undone, op.State())
	assert.Equal(t, "data", readFile(t, filepath.Join(env.target, "tmp", "x")))
	assert.Equal(t, 0, stagingEntries(t, env.staging))
}

func TestRemove_Success_DirectoryInvert(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "var", "cache", "a"), "a")
	writeFile(t, filepath.Join(env.target, "var", "cache", "sub", "b"), "b")

	op := NewRemove(resource.New("/var/cache", resource.File, resource.Target))

	require.NoError(t, op.Execute(env.handler))
	assert.NoDirExists(t, filepath.Join(env.target, "var", "cache"))

	require.NoError(t, op.Invert(env.handler))
	assert.Equal(t, Inverted, op.State())
	assert.Equal(t, "b", readFile(t, filepath.Join(env.target, "var", "cache", "sub", "b")))
}

func TestRemove_Success_Discard(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "tmp", "x"), "data")

	op := NewRemove(resource.New("/tmp/x", resource.File, resource.Target))

	require.NoError(t, op.Execute(env.handler))
	require.NoError(t, op.Discard(env.handler))
	assert.Equal(t, 0, stagingEntries(t, env.staging))

	err := op.Undo(env.handler)
	require.ErrorIs(t, err, ErrBadResource)
}

func TestRemove_Fail_Missing(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	op := NewRemove(resource.New("/tmp/missing", resource.File, resource.Target))

	err := op.Execute(env.handler)
	require.ErrorIs(t, err, ErrBadResource)
	assert.Equal(t, BadResource, ResultOf(err))
	assert.Equal(t, Failed, op.State())
}

func TestRemove_Success_AcrossDevices(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "tmp", "x", "inner"), "data")

	osOps := &mockOS{}
	isTemp := mock.MatchedBy(func(p string) bool { return strings.Contains(p, ".swupd-") })
	isItem := mock.MatchedBy(func(p string) bool { return !strings.Contains(p, ".swupd-") })
	osOps.On("Rename", isTemp, mock.Anything).Return(nil)
	osOps.On("Rename", isItem, mock.Anything).Return(unix.EXDEV)

	h := NewHandler(env.handler.Resources, osOps, &schema.Unix{}, Options{StagingDir: env.staging})

	op := NewRemove(resource.New("/tmp/x", resource.File, resource.Target))

	require.NoError(t, op.Execute(h))
	assert.NoDirExists(t, filepath.Join(env.target, "tmp", "x"))
	assert.Equal(t, 1, stagingEntries(t, env.staging))

	require.NoError(t, op.Undo(h))
	assert.Equal(t, "data", readFile(t, filepath.Join(env.target, "tmp", "x", "inner")))

	osOps.AssertCalled(t, "Rename", isItem, mock.Anything)
}

func TestRemove_Fail_RenameRefused(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	writeFile(t, filepath.Join(env.target, "tmp", "x"), "data")

	osOps := &mockOS{}
	osOps.On("Rename", mock.Anything, mock.Anything).Return(unix.EBUSY).Once()

	h := NewHandler(env.handler.Resources, osOps, &schema.Unix{}, Options{StagingDir: env.staging})

	op := NewRemove(resource.New("/tmp/x", resource.File, resource.Target))

	err := op.Execute(h)
	require.ErrorIs(t, err, ErrBadResource)
	require.ErrorIs(t, err, unix.EBUSY)
	assert.FileExists(t, filepath.Join(env.target, "tmp", "x"))
	assert.Equal(t, 0, stagingEntries(t, env.staging))

	osOps.AssertExpectations(t)
}

func TestRemove_Fail_InvalidState(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	op := NewRemove(resource.New("/tmp/x", resource.File, resource.Target))

	require.ErrorIs(t, op.Undo(env.handler), ErrInvalidState)
	require.NoError(t, op.Discard(env.handler))

	_, err := os.Stat(env.staging)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
