// Package session wires the block index, guard, read cache, tool layer, trace
// and document manager into one multi-document editing session.
//
// A Session keeps one pending-diff list per document. Switching or removing
// documents goes through a docs.SwitchMutex; the hand-off that repoints the
// tools at a new document runs under the session lock, so tool calls never
// observe a half-switched state.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/blockedit/pkg/blocks"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/docs"
	"github.com/aretw0/blockedit/pkg/guard"
	"github.com/aretw0/blockedit/pkg/tools"
	"github.com/aretw0/blockedit/pkg/trace"
)

// Hooks let an orchestrator observe the session.
type Hooks struct {
	// OnDocumentSwitch fires after a hand-off with the new active document's
	// blocks. docID is empty when the last document was removed. It runs
	// after the session lock is released, inside the switch lock's window
	// for switches and removals, so a slow hook delays only that window.
	OnDocumentSwitch func(docID string, blocks []core.Block)
	// OnDiffCreated fires for every diff a tool call appends. It runs while
	// the session lock is held and must not call back into the Session.
	OnDiffCreated func(diff core.PendingDiff)
}

// Config configures a Session. Parser is required.
type Config struct {
	Parser        core.Parser
	Limits        tools.Limits
	CacheSize     int
	TraceCapacity int
	SwitchTimeout time.Duration
	Logger        *slog.Logger
	Hooks         Hooks
}

// CallResult is the outcome of one tool call.
type CallResult struct {
	Output string        `json:"output"`
	OK     bool          `json:"ok"`
	Stuck  trace.Verdict `json:"stuck"`
}

// Session is a multi-document editing session.
type Session struct {
	mu sync.Mutex

	manager  *docs.Manager
	index    *blocks.Index
	guard    *guard.Guard
	cache    *tools.Cache
	recorder *trace.Recorder
	lock     *docs.SwitchMutex
	toolset  *tools.Toolset

	diffs  map[string]*tools.MemoryDiffs
	active activeDiffs

	hooks  Hooks
	logger *slog.Logger
}

// activeDiffs is the DiffStore handed to the toolset. It forwards to the
// pending-diff list of whichever document is active.
type activeDiffs struct {
	current atomic.Pointer[tools.MemoryDiffs]
}

func (a *activeDiffs) DocID() string {
	if d := a.current.Load(); d != nil {
		return d.DocID()
	}
	return ""
}

func (a *activeDiffs) Pending() []core.PendingDiff {
	if d := a.current.Load(); d != nil {
		return d.Pending()
	}
	return nil
}

func (a *activeDiffs) Append(diff core.PendingDiff) {
	if d := a.current.Load(); d != nil {
		d.Append(diff)
	}
}

var _ tools.DiffStore = (*activeDiffs)(nil)

// New creates an empty session.
func New(cfg Config) (*Session, error) {
	if cfg.Parser == nil {
		return nil, errors.New("session: parser is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Session{
		manager:  docs.NewManager(cfg.Parser),
		index:    blocks.NewIndex(nil),
		guard:    guard.New(),
		cache:    tools.NewCache(cfg.CacheSize),
		recorder: trace.NewRecorder(cfg.TraceCapacity),
		lock:     docs.NewSwitchMutex(cfg.SwitchTimeout),
		diffs:    make(map[string]*tools.MemoryDiffs),
		hooks:    cfg.Hooks,
		logger:   logger,
	}
	s.toolset = tools.New(tools.Deps{
		Index:  s.index,
		Guard:  s.guard,
		Diffs:  &s.active,
		Cache:  s.cache,
		OnDiff: s.diffCreated,
		Limits: cfg.Limits,
		Logger: logger,
	})
	return s, nil
}

func (s *Session) diffCreated(d core.PendingDiff) {
	s.logger.Debug("diff created", "doc", d.DocID, "block", d.BlockID, "diff", d.ID, "action", d.Action)
	if s.hooks.OnDiffCreated != nil {
		s.hooks.OnDiffCreated(d)
	}
}

// Manager exposes the document manager for read access.
func (s *Session) Manager() *docs.Manager {
	return s.manager
}

// Trace returns the recorded tool calls, oldest first.
func (s *Session) Trace() []trace.Entry {
	return s.recorder.Buffer().Recent(0)
}

// ResetTrace clears the call trace, typically at the start of an agent turn.
func (s *Session) ResetTrace() {
	s.recorder.Reset()
}

// Limits returns the effective tool limits.
func (s *Session) Limits() tools.Limits {
	return s.toolset.Limits()
}

// AddDocument parses and stores a document. The first document added becomes
// active immediately.
func (s *Session) AddDocument(name, typ, content string) (core.Document, error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	hadActive := s.manager.ActiveID() != ""
	doc, err := s.manager.Add(name, typ, content)
	if err != nil {
		return core.Document{}, err
	}
	s.diffs[doc.ID] = tools.NewMemoryDiffs(doc.ID)
	s.logger.Debug("document added", "doc", doc.ID, "name", name, "blocks", len(doc.Blocks))

	if !hadActive {
		if n, err = s.handOff(doc.ID); err != nil {
			return core.Document{}, err
		}
	}
	return doc, nil
}

// SwitchDocument makes id the active document. The switch is queued behind
// any switch or removal already in flight.
func (s *Session) SwitchDocument(ctx context.Context, id string) <-chan docs.Outcome {
	return s.lock.WithLock(ctx, func(context.Context) error {
		return s.switchTo(id)
	})
}

func (s *Session) switchTo(id string) (err error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.manager.SetActive(id); err != nil {
		return err
	}
	n, err = s.handOff(id)
	return err
}

// RemoveDocument drops a document and its pending diffs. When the active
// document is removed, the first remaining document takes over.
func (s *Session) RemoveDocument(ctx context.Context, id string) <-chan docs.Outcome {
	return s.lock.WithLock(ctx, func(context.Context) error {
		return s.remove(id)
	})
}

func (s *Session) remove(id string) (err error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.manager.ActiveID() == id
	if err := s.manager.Remove(id); err != nil {
		return err
	}
	delete(s.diffs, id)
	s.logger.Debug("document removed", "doc", id)

	if !wasActive {
		return nil
	}
	if next := s.manager.ActiveID(); next != "" {
		n, err = s.handOff(next)
		return err
	}

	s.guard.Reset()
	s.index.SetBlocks(nil)
	s.active.current.Store(nil)
	s.cache.Invalidate()
	n = switchNotice{fire: true}
	return nil
}

// switchNotice is an OnDocumentSwitch call prepared under s.mu and made
// after it is released.
type switchNotice struct {
	fire   bool
	docID  string
	blocks []core.Block
}

func (s *Session) notify(n switchNotice) {
	if n.fire && s.hooks.OnDocumentSwitch != nil {
		s.hooks.OnDocumentSwitch(n.docID, n.blocks)
	}
}

// handOff repoints the tools at id, which must already be active in the
// manager. Caller holds s.mu and passes the notice to notify once unlocked.
//
// The outgoing document needs no capture step: the active store and the
// per-document map share the same *MemoryDiffs, so its diffs are already
// in s.diffs.
func (s *Session) handOff(id string) (switchNotice, error) {
	doc, err := s.manager.Get(id)
	if err != nil {
		return switchNotice{}, err
	}

	s.guard.Reset()
	s.index.SetBlocks(doc.Blocks)

	d, ok := s.diffs[id]
	if !ok {
		d = tools.NewMemoryDiffs(id)
		s.diffs[id] = d
	}
	s.active.current.Store(d)
	s.cache.Invalidate()

	s.logger.Debug("active document switched", "doc", id, "blocks", s.index.Len(), "pending", len(d.Pending()))
	return switchNotice{fire: true, docID: id, blocks: s.index.Blocks()}, nil
}

// ActiveDocument returns the active document.
func (s *Session) ActiveDocument() (core.Document, error) {
	doc, ok := s.manager.Active()
	if !ok {
		return core.Document{}, core.ErrNoActiveDocument
	}
	return doc, nil
}

// Call executes a tool against the active document, records it in the trace
// and reports whether the agent looks stuck.
//
// A non-nil error is returned for unknown tools, rejected arguments and a
// missing active document. Output is still set for rejected arguments.
func (s *Session) Call(ctx context.Context, name string, args json.RawMessage) (CallResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.manager.ActiveID() == "" {
		return CallResult{}, core.ErrNoActiveDocument
	}

	resp, err := s.toolset.Dispatch(ctx, name, args)
	status := trace.StatusSuccess
	if err != nil || !resp.OK {
		status = trace.StatusError
	}

	verdict := s.recorder.Record(ctx, name, canonicalArgs(args), status)
	if verdict.Stuck {
		s.logger.Warn("agent appears stuck", "tool", name, "reason", verdict.Reason)
	}
	return CallResult{Output: resp.Output, OK: status == trace.StatusSuccess, Stuck: verdict}, err
}

// canonicalArgs compacts args so that calls differing only in whitespace
// compare equal in the trace.
func canonicalArgs(args json.RawMessage) string {
	if len(args) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, args); err != nil {
		return string(args)
	}
	return buf.String()
}

// Definitions returns the tool schemas to bind to an LLM.
func (s *Session) Definitions() []tools.Definition {
	return tools.Definitions()
}

// PendingDiffs returns a copy of a document's pending diffs.
func (s *Session) PendingDiffs(docID string) ([]core.PendingDiff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.diffs[docID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrDocumentNotFound, docID)
	}
	return d.Pending(), nil
}

// ApplyPending merges a document's pending diffs into its content and clears
// them. If the document is active, the tools are handed the new blocks.
func (s *Session) ApplyPending(docID string) (_ core.Document, err error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.manager.Get(docID)
	if err != nil {
		return core.Document{}, err
	}
	pending := s.diffs[docID].Pending()
	if len(pending) == 0 {
		return doc, nil
	}

	applied := blocks.Apply(doc.Blocks, pending)
	content, err := s.manager.Serialize(docID, applied)
	if err != nil {
		return core.Document{}, fmt.Errorf("failed to serialize %s: %w", docID, err)
	}
	updated, err := s.manager.UpdateContent(docID, content)
	if err != nil {
		return core.Document{}, err
	}
	s.diffs[docID] = tools.NewMemoryDiffs(docID)
	s.logger.Info("pending diffs applied", "doc", docID, "diffs", len(pending), "blocks", len(updated.Blocks))

	if s.manager.ActiveID() == docID {
		if n, err = s.handOff(docID); err != nil {
			return core.Document{}, err
		}
	}
	return updated, nil
}

// RejectPending discards a document's pending diffs.
func (s *Session) RejectPending(docID string) (err error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.diffs[docID]; !ok {
		return fmt.Errorf("%w: %s", core.ErrDocumentNotFound, docID)
	}
	s.diffs[docID] = tools.NewMemoryDiffs(docID)
	s.logger.Info("pending diffs rejected", "doc", docID)

	if s.manager.ActiveID() == docID {
		n, err = s.handOff(docID)
	}
	return err
}

// ReloadDocument replaces a document's content with a fresh copy from its
// source, e.g. after the file changed on disk. Pending diffs are kept; diffs
// on blocks whose content changed no longer match a block id.
func (s *Session) ReloadDocument(docID, content string) (_ core.Document, err error) {
	var n switchNotice
	defer func() { s.notify(n) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.manager.UpdateContent(docID, content)
	if err != nil {
		return core.Document{}, err
	}
	if err := s.manager.MarkClean(docID); err != nil {
		return core.Document{}, err
	}
	doc.Dirty = false
	s.logger.Debug("document reloaded", "doc", docID, "blocks", len(doc.Blocks))

	if s.manager.ActiveID() == docID {
		if n, err = s.handOff(docID); err != nil {
			return core.Document{}, err
		}
	}
	return doc, nil
}

// Search returns the active document's blocks containing keyword, ignoring
// case. Pending diffs are not considered.
func (s *Session) Search(keyword string) []core.Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Search(keyword)
}
