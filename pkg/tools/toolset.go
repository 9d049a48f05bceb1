// Package tools implements the batch operations an agent uses to inspect and
// edit a document: list_blocks, read_blocks, edit_blocks, add_blocks and
// delete_blocks.
//
// Tools never merge changes into the block index. Every successful mutation
// appends a core.PendingDiff to the DiffStore; applying or rejecting those
// diffs is the caller's decision. Expected failures are reported per item and
// never abort the rest of a batch.
package tools

import (
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/blockedit/pkg/blocks"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/guard"
)

// DiffStore holds the pending diffs of the document the tools operate on.
type DiffStore interface {
	DocID() string
	Pending() []core.PendingDiff
	Append(d core.PendingDiff)
}

// MemoryDiffs is a DiffStore backed by a slice.
type MemoryDiffs struct {
	mu    sync.RWMutex
	docID string
	diffs []core.PendingDiff
}

// NewMemoryDiffs creates an empty store for docID.
func NewMemoryDiffs(docID string) *MemoryDiffs {
	return &MemoryDiffs{docID: docID}
}

func (m *MemoryDiffs) DocID() string {
	return m.docID
}

// Pending returns a copy of the diffs in creation order.
func (m *MemoryDiffs) Pending() []core.PendingDiff {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]core.PendingDiff, len(m.diffs))
	copy(out, m.diffs)
	return out
}

func (m *MemoryDiffs) Append(d core.PendingDiff) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.diffs = append(m.diffs, d)
}

// Deps are the collaborators a Toolset operates on.
type Deps struct {
	Index  *blocks.Index
	Guard  *guard.Guard
	Diffs  DiffStore
	Cache  *Cache
	OnDiff func(core.PendingDiff)
	Limits Limits
	Logger *slog.Logger
}

// Toolset executes tool calls against one document session.
type Toolset struct {
	mu     sync.Mutex
	index  *blocks.Index
	guard  *guard.Guard
	diffs  DiffStore
	cache  *Cache
	onDiff func(core.PendingDiff)
	limits Limits
	logger *slog.Logger
}

// New creates a Toolset. Index, Guard and Diffs are required; a missing one is
// a programming error and panics.
func New(deps Deps) *Toolset {
	if deps.Index == nil {
		panic(fmt.Errorf("tools: %w", core.ErrNilIndex))
	}
	if deps.Guard == nil {
		panic("tools: nil guard")
	}
	if deps.Diffs == nil {
		panic("tools: nil diff store")
	}
	if deps.Cache == nil {
		deps.Cache = NewCache(0)
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Toolset{
		index:  deps.Index,
		guard:  deps.Guard,
		diffs:  deps.Diffs,
		cache:  deps.Cache,
		onDiff: deps.OnDiff,
		limits: deps.Limits.withDefaults(),
		logger: deps.Logger,
	}
}

// Limits returns the effective limits.
func (t *Toolset) Limits() Limits {
	return t.limits
}

// ItemResult is the outcome of one item of a mutating batch.
type ItemResult struct {
	BlockID    string `json:"blockId"`
	NewBlockID string `json:"newBlockId,omitempty"`
	DiffID     string `json:"diffId,omitempty"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// BatchResult is returned by edit_blocks, add_blocks and delete_blocks.
type BatchResult struct {
	Results   []ItemResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

func (r *BatchResult) ok(item ItemResult) {
	item.OK = true
	r.Results = append(r.Results, item)
	r.Succeeded++
}

func (r *BatchResult) fail(item ItemResult, msg string) {
	item.OK = false
	item.Error = msg
	r.Results = append(r.Results, item)
	r.Failed++
}

// emit records a new diff and notifies the side channel.
func (t *Toolset) emit(d core.PendingDiff) {
	d.DocID = t.diffs.DocID()
	t.diffs.Append(d)
	if t.onDiff != nil {
		t.onDiff(d)
	}
}

func (t *Toolset) tooLong(content string) bool {
	return len([]rune(content)) > t.limits.MaxContent
}
