// Package git records saved documents as commits in an existing repository.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// LockFileName is created in the work dir while a commit is in progress.
const LockFileName = ".blockedit.lock"

// ErrNotRepository is returned when the work dir is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Client runs git in a working directory, serialising commits across
// processes with a lock file.
type Client struct {
	WorkDir string
	Logger  *slog.Logger

	lockPath string
	retry    time.Duration
}

// NewClient creates a client for workDir. A nil logger disables logging.
func NewClient(workDir string, logger *slog.Logger) *Client {
	return &Client{
		WorkDir:  workDir,
		Logger:   logger,
		lockPath: filepath.Join(workDir, LockFileName),
		retry:    10 * time.Millisecond,
	}
}

// Lock blocks until the lock file is created or ctx is done.
func (c *Client) Lock(ctx context.Context) (func(), error) {
	for {
		f, err := os.OpenFile(c.lockPath, os.O_CREATE|os.O_EXCL, 0o666)
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(c.lockPath) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-time.After(c.retry):
		}
	}
}

// Run executes git with args. It does not take the lock.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	if c.Logger != nil {
		c.Logger.Debug("executing git", "args", args, "dir", c.WorkDir)
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = c.WorkDir
	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, fmt.Errorf("git %s failed: %w\nOutput: %s", args[0], err, output)
	}
	return output, nil
}

// Init creates a repository in the work dir. Re-running it is safe.
func (c *Client) Init(ctx context.Context) error {
	_, err := c.Run(ctx, "init")
	return err
}

// IsRepo reports whether the work dir is inside a git work tree.
func (c *Client) IsRepo(ctx context.Context) bool {
	out, err := c.Run(ctx, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Status returns the porcelain status of the given paths, or of the whole
// tree when none are given.
func (c *Client) Status(ctx context.Context, paths ...string) (string, error) {
	return c.Run(ctx, append([]string{"status", "--porcelain", "--"}, paths...)...)
}

// Commit stages paths and commits them with msg. Paths are relative to the
// work dir. Nothing is committed when the paths have no changes, and the
// returned bool is false.
func (c *Client) Commit(ctx context.Context, msg string, paths ...string) (bool, error) {
	if len(paths) == 0 {
		return false, nil
	}
	if !c.IsRepo(ctx) {
		return false, fmt.Errorf("%s: %w", c.WorkDir, ErrNotRepository)
	}

	unlock, err := c.Lock(ctx)
	if err != nil {
		return false, err
	}
	defer unlock()

	status, err := c.Status(ctx, paths...)
	if err != nil {
		return false, err
	}
	if status == "" {
		return false, nil
	}
	if _, err := c.Run(ctx, append([]string{"add", "--"}, paths...)...); err != nil {
		return false, err
	}
	if _, err := c.Run(ctx, append([]string{"commit", "-m", msg, "--"}, paths...)...); err != nil {
		return false, err
	}
	return true, nil
}
