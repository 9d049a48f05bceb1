package blockedit

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/blockedit/internal/platform"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/session"
)

// --- Types ---

type (
	Block       = core.Block
	Document    = core.Document
	PendingDiff = core.PendingDiff
	Session     = session.Session
	Hooks       = session.Hooks
	CallResult  = session.CallResult
	Workspace   = platform.Workspace
)

// --- Configuration ---

// Option defines a functional option for configuring a session.
type Option = platform.Option

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithParser replaces the default markdown parser.
func WithParser(p core.Parser) Option {
	return platform.WithParser(p)
}

// WithHooks registers the document-switch and diff-created callbacks.
func WithHooks(h Hooks) Option {
	return platform.WithHooks(h)
}

// WithMaxBatch sets how many items of a tool call are processed.
func WithMaxBatch(n int) Option {
	return platform.WithMaxBatch(n)
}

// WithMaxContent sets the per-item content limit in characters.
func WithMaxContent(n int) Option {
	return platform.WithMaxContent(n)
}

// WithContextSize sets how many neighbours read_blocks returns on each side.
func WithContextSize(n int) Option {
	return platform.WithContextSize(n)
}

// WithTraceCapacity sets the number of tool calls kept for stuck detection.
func WithTraceCapacity(n int) Option {
	return platform.WithTraceCapacity(n)
}

// WithSwitchTimeout bounds how long a document switch may hold the switch lock.
func WithSwitchTimeout(d time.Duration) Option {
	return platform.WithSwitchTimeout(d)
}

// WithCacheSize sets the number of cached read results.
func WithCacheSize(n int) Option {
	return platform.WithCacheSize(n)
}

// WithConfigFile loads defaults from a YAML config file.
func WithConfigFile(path string) Option {
	return platform.WithConfigFile(path)
}

// --- Entry points ---

// New creates an empty session.
func New(opts ...Option) (*Session, error) {
	return platform.New(opts...)
}

// Open loads every file under root matching pattern into a new session.
func Open(ctx context.Context, root, pattern string, opts ...Option) (*Workspace, error) {
	return platform.Open(ctx, root, pattern, opts...)
}

// OpenFiles loads the given files into a new session.
func OpenFiles(paths []string, opts ...Option) (*Workspace, error) {
	return platform.OpenFiles(paths, opts...)
}
