package fs

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/lifecycle"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/blockedit/pkg/core"
)

// DefaultDebounce coalesces bursts of events on the same file.
const DefaultDebounce = 50 * time.Millisecond

// WatchOption configures Watch.
type WatchOption func(*watchConfig)

type watchConfig struct {
	logger       *slog.Logger
	debounce     time.Duration
	errorHandler func(error)
}

// WithWatchLogger sets the watcher logger.
func WithWatchLogger(l *slog.Logger) WatchOption {
	return func(c *watchConfig) { c.logger = l }
}

// WithDebounce sets the per-file debounce window.
func WithDebounce(d time.Duration) WatchOption {
	return func(c *watchConfig) { c.debounce = d }
}

// WithErrorHandler receives fsnotify errors and watcher panics.
func WithErrorHandler(fn func(error)) WatchOption {
	return func(c *watchConfig) { c.errorHandler = fn }
}

type watcher struct {
	root    string
	pattern string
	cfg     watchConfig
	fsw     *fsnotify.Watcher
	events  chan core.Event
	deb     *debouncer
}

// Watch reports changes to files under root matching pattern. Event IDs are
// slash-separated paths relative to root. The channel is closed once ctx is
// done and the watcher has shut down.
func Watch(ctx context.Context, root, pattern string, opts ...WatchOption) (<-chan core.Event, error) {
	cfg := watchConfig{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid pattern %q", pattern)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w := &watcher{
		root:    root,
		pattern: pattern,
		cfg:     cfg,
		fsw:     fsw,
		events:  make(chan core.Event),
		deb:     newDebouncer(cfg.debounce),
	}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	lifecycle.Go(ctx, w.run, lifecycle.WithErrorHandler(func(err error) {
		w.cfg.logger.Error("watcher stopped", "error", err)
		if w.cfg.errorHandler != nil {
			w.cfg.errorHandler(err)
		}
	}))
	return w.events, nil
}

// addRecursive watches dir and its subdirectories, skipping hidden ones.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *watcher) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.cfg.logger.Enabled(ctx, slog.LevelDebug) {
				w.cfg.logger.Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			}
		}
	}()
	defer close(w.events)
	defer w.deb.stopAndWait()
	defer w.fsw.Close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher events channel closed")
			}
			w.handle(ctx, event)

		case wErr, ok := <-w.fsw.Errors:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("watcher errors channel closed")
			}
			w.cfg.logger.Error("fsnotify error", "error", wErr)
			if w.cfg.errorHandler != nil {
				w.cfg.errorHandler(wErr)
			}
		}
	}
}

func (w *watcher) handle(ctx context.Context, event fsnotify.Event) {
	w.cfg.logger.Debug("event received", "name", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Lstat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
			return
		}
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, TempFilePrefix) || strings.HasPrefix(base, ".") {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if match, _ := doublestar.Match(w.pattern, rel); !match {
		return
	}

	var typ core.EventType
	switch {
	case event.Has(fsnotify.Create):
		typ = core.EventCreate
	case event.Has(fsnotify.Write):
		typ = core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		typ = core.EventDelete
	default:
		return
	}

	w.deb.add(core.Event{Type: typ, ID: rel, Timestamp: time.Now().Unix()}, func(e core.Event) {
		select {
		case w.events <- e:
		case <-ctx.Done():
		}
	})
}

// debouncer delivers the last event per id once no newer event for that id
// arrived within the window.
type debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func newDebouncer(window time.Duration) *debouncer {
	return &debouncer{window: window, timers: make(map[string]*time.Timer)}
}

func (d *debouncer) add(e core.Event, deliver func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[e.ID]; ok && t.Stop() {
		d.wg.Done()
	}
	d.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d.window, func() { d.fire(e, t, deliver) })
	d.timers[e.ID] = t
}

// fire delivers e unless t was replaced by a newer timer for the same id
// while it waited for the lock.
func (d *debouncer) fire(e core.Event, t *time.Timer, deliver func(core.Event)) {
	defer d.wg.Done()
	d.mu.Lock()
	current := d.timers[e.ID] == t
	if current {
		delete(d.timers, e.ID)
	}
	stopped := d.stopped
	d.mu.Unlock()
	if current && !stopped {
		deliver(e)
	}
}

// stopAndWait drops pending events and waits for in-flight deliveries.
func (d *debouncer) stopAndWait() {
	d.mu.Lock()
	d.stopped = true
	for id, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, id)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
