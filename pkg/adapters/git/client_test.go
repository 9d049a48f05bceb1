package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func newRepo(t *testing.T) *Client {
	t.Helper()
	requireGit(t)
	ctx := context.Background()
	c := NewClient(t.TempDir(), nil)
	require.NoError(t, c.Init(ctx))
	_, err := c.Run(ctx, "config", "user.email", "test@example.com")
	require.NoError(t, err)
	_, err = c.Run(ctx, "config", "user.name", "Test")
	require.NoError(t, err)
	return c
}

func TestClient_Lock(t *testing.T) {
	dir := t.TempDir()
	c := NewClient(dir, nil)

	unlock, err := c.Lock(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, LockFileName))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = c.Lock(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.NoFileExists(t, filepath.Join(dir, LockFileName))
}

func TestClient_Init(t *testing.T) {
	c := newRepo(t)
	assert.DirExists(t, filepath.Join(c.WorkDir, ".git"))
	assert.True(t, c.IsRepo(context.Background()))
}

func TestClient_Commit(t *testing.T) {
	c := newRepo(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(c.WorkDir, "a.md"), []byte("# A\n"), 0o644))

	committed, err := c.Commit(ctx, "edit a.md", "a.md")
	require.NoError(t, err)
	assert.True(t, committed)

	log, err := c.Run(ctx, "log", "--format=%s")
	require.NoError(t, err)
	assert.Equal(t, "edit a.md", log)

	committed, err = c.Commit(ctx, "nothing", "a.md")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.NoFileExists(t, filepath.Join(c.WorkDir, LockFileName))
}

func TestClient_CommitOutsideRepo(t *testing.T) {
	requireGit(t)
	c := NewClient(t.TempDir(), nil)
	_, err := c.Commit(context.Background(), "msg", "a.md")
	assert.ErrorIs(t, err, ErrNotRepository)
}
