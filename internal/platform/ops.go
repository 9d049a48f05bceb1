package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sync"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/blockedit/pkg/adapters/fs"
	"github.com/aretw0/blockedit/pkg/adapters/git"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/session"
)

// Workspace binds a session to files on disk.
type Workspace struct {
	Session *session.Session
	Root    string

	logger *slog.Logger

	mu    sync.RWMutex
	paths map[string]string // doc id -> absolute path
	ids   map[string]string // relative name -> doc id
}

// Open loads every file under root matching pattern into a new session.
// The first file (by name) becomes the active document.
func Open(ctx context.Context, root, pattern string, opts ...Option) (*Workspace, error) {
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}
	files, err := fs.Load(ctx, abs, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no files match %q under %s", pattern, abs)
	}

	w := &Workspace{
		Session: s,
		Root:    abs,
		logger:  logger,
		paths:   make(map[string]string),
		ids:     make(map[string]string),
	}
	for _, f := range files {
		if err := w.add(f); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// OpenFiles loads individual files into a new session.
func OpenFiles(paths []string, opts ...Option) (*Workspace, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files given")
	}
	s, err := New(opts...)
	if err != nil {
		return nil, err
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	w := &Workspace{
		Session: s,
		Root:    filepath.Dir(paths[0]),
		logger:  logger,
		paths:   make(map[string]string),
		ids:     make(map[string]string),
	}
	if abs, err := filepath.Abs(w.Root); err == nil {
		w.Root = abs
	}
	for _, p := range paths {
		f, err := fs.LoadFile(p)
		if err != nil {
			return nil, err
		}
		if rel, err := filepath.Rel(w.Root, f.Path); err == nil {
			f.Name = filepath.ToSlash(rel)
		}
		if err := w.add(f); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *Workspace) add(f fs.File) error {
	doc, err := w.Session.AddDocument(f.Name, docType(f.Name), f.Content)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.paths[doc.ID] = f.Path
	w.ids[f.Name] = doc.ID
	w.mu.Unlock()
	return nil
}

func docType(name string) string {
	if ext := path.Ext(name); ext != "" {
		return ext[1:]
	}
	return "text"
}

// DocumentID resolves a file name relative to Root.
func (w *Workspace) DocumentID(name string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	id, ok := w.ids[filepath.ToSlash(name)]
	return id, ok
}

// Path returns the file backing a document.
func (w *Workspace) Path(docID string) (string, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.paths[docID]
	return p, ok
}

// Save applies a document's pending diffs and writes the result to disk.
func (w *Workspace) Save(docID string) (core.Document, error) {
	p, ok := w.Path(docID)
	if !ok {
		return core.Document{}, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, docID)
	}
	doc, err := w.Session.ApplyPending(docID)
	if err != nil {
		return core.Document{}, err
	}
	if !doc.Dirty {
		return doc, nil
	}
	if err := fs.WriteAtomic(p, []byte(doc.Content), 0o644); err != nil {
		return core.Document{}, err
	}
	if err := w.Session.Manager().MarkClean(docID); err != nil {
		return core.Document{}, err
	}
	doc.Dirty = false
	w.logger.Info("document saved", "doc", docID, "path", p)
	return doc, nil
}

// SaveAll saves every document that has pending diffs.
func (w *Workspace) SaveAll() ([]core.Document, error) {
	var saved []core.Document
	for _, doc := range w.Session.Manager().List() {
		pending, err := w.Session.PendingDiffs(doc.ID)
		if err != nil {
			return saved, err
		}
		if len(pending) == 0 {
			continue
		}
		d, err := w.Save(doc.ID)
		if err != nil {
			return saved, err
		}
		saved = append(saved, d)
	}
	return saved, nil
}

// Watch reloads documents whose files change on disk until ctx is done.
// Every event is also passed to onEvent, if set. Events for files that are
// not part of the workspace are ignored.
func (w *Workspace) Watch(ctx context.Context, pattern string, onEvent func(core.Event)) error {
	events, err := fs.Watch(ctx, w.Root, pattern, fs.WithWatchLogger(w.logger))
	if err != nil {
		return err
	}
	lifecycle.Go(ctx, func(context.Context) error {
		for e := range events {
			w.handleEvent(e)
			if onEvent != nil {
				onEvent(e)
			}
		}
		return nil
	}, lifecycle.WithErrorHandler(func(err error) {
		w.logger.Error("watch consumer stopped", "error", err)
	}))
	return nil
}

func (w *Workspace) handleEvent(e core.Event) {
	id, ok := w.DocumentID(e.ID)
	if !ok || e.Type == core.EventDelete {
		return
	}
	f, err := fs.LoadFile(filepath.Join(w.Root, filepath.FromSlash(e.ID)))
	if err != nil {
		w.logger.Error("reload failed", "doc", id, "error", err)
		return
	}
	if current, err := w.Session.Manager().Get(id); err == nil && current.Content == f.Content {
		return
	}
	if _, err := w.Session.ReloadDocument(id, f.Content); err != nil {
		w.logger.Error("reload failed", "doc", id, "error", err)
		return
	}
	w.logger.Info("document reloaded from disk", "doc", id, "path", f.Path)
}

// Commit records saved documents as one commit in the git repository that
// contains Root. It reports false when the files had no changes.
func (w *Workspace) Commit(ctx context.Context, msg string, docs []core.Document) (bool, error) {
	paths := make([]string, 0, len(docs))
	for _, d := range docs {
		p, ok := w.Path(d.ID)
		if !ok {
			return false, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, d.ID)
		}
		rel, err := filepath.Rel(w.Root, p)
		if err != nil {
			return false, err
		}
		paths = append(paths, filepath.ToSlash(rel))
	}

	client := git.NewClient(w.Root, w.logger)
	committed, err := client.Commit(ctx, msg, paths...)
	if err != nil {
		return false, err
	}
	if committed {
		w.logger.Info("documents committed", "files", len(paths), "message", msg)
	}
	return committed, nil
}
