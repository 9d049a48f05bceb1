// Package guard enforces read-before-write for agent edits: the document
// structure must be known before anything changes, and a block's content must
// have been fetched in the current session before it is edited or deleted.
package guard

import (
	"fmt"
	"sort"
	"sync"
)

// Reason identifies why a modification was refused.
type Reason string

const (
	NeedsDocumentRead Reason = "needs_document_read"
	NeedsBlockRead    Reason = "needs_block_read"
)

// Denial is returned when a modification is not allowed.
type Denial struct {
	Reason  Reason
	BlockID string
}

func (d *Denial) Error() string {
	switch d.Reason {
	case NeedsDocumentRead:
		return "must call list_blocks or read_blocks before modifying the document"
	case NeedsBlockRead:
		return fmt.Sprintf("block %s has not been read; call read_blocks with this id first", d.BlockID)
	}
	return string(d.Reason)
}

// ReadState is a snapshot of what has been read in the current session.
type ReadState struct {
	DocumentRead bool     `json:"document_read"`
	ReadBlockIDs []string `json:"read_block_ids"`
}

// BatchCheck is the result of a batch permission check.
// Errors holds one message per refused id.
type BatchCheck struct {
	Allowed bool
	Errors  map[string]string
}

// Guard tracks reads for one document session.
type Guard struct {
	mu           sync.RWMutex
	documentRead bool
	readBlocks   map[string]struct{}
}

// New creates a guard with nothing read.
func New() *Guard {
	return &Guard{readBlocks: make(map[string]struct{})}
}

// MarkDocumentRead records that the document structure is known.
func (g *Guard) MarkDocumentRead() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.documentRead = true
}

// MarkBlocksRead records that the given blocks' content has been fetched.
func (g *Guard) MarkBlocksRead(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, id := range ids {
		g.readBlocks[id] = struct{}{}
	}
}

// DocumentRead reports whether the document-level flag is set.
func (g *Guard) DocumentRead() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.documentRead
}

// HasRead reports whether id has been read.
func (g *Guard) HasRead(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.readBlocks[id]
	return ok
}

// CanEdit returns a *Denial unless the document and the block have been read.
func (g *Guard) CanEdit(id string) error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.check(id)
}

// CanDelete applies the same rule as CanEdit.
func (g *Guard) CanDelete(id string) error {
	return g.CanEdit(id)
}

// CanAdd only requires the document structure to be known.
func (g *Guard) CanAdd() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if !g.documentRead {
		return &Denial{Reason: NeedsDocumentRead}
	}
	return nil
}

// CanEditBlocks checks a whole batch under a single lock.
func (g *Guard) CanEditBlocks(ids []string) BatchCheck {
	g.mu.RLock()
	defer g.mu.RUnlock()

	res := BatchCheck{Allowed: true, Errors: make(map[string]string)}
	for _, id := range ids {
		if err := g.check(id); err != nil {
			res.Allowed = false
			res.Errors[id] = err.Error()
		}
	}
	return res
}

// CanDeleteBlocks applies the same rule as CanEditBlocks.
func (g *Guard) CanDeleteBlocks(ids []string) BatchCheck {
	return g.CanEditBlocks(ids)
}

// check must be called with g.mu held.
func (g *Guard) check(id string) error {
	if !g.documentRead {
		return &Denial{Reason: NeedsDocumentRead, BlockID: id}
	}
	if _, ok := g.readBlocks[id]; !ok {
		return &Denial{Reason: NeedsBlockRead, BlockID: id}
	}
	return nil
}

// Reset forgets everything that was read.
func (g *Guard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.documentRead = false
	g.readBlocks = make(map[string]struct{})
}

// OnDocumentChange is called when the active document switches.
func (g *Guard) OnDocumentChange() {
	g.Reset()
}

// State returns a snapshot with block ids sorted.
func (g *Guard) State() ReadState {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ids := make([]string, 0, len(g.readBlocks))
	for id := range g.readBlocks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ReadState{DocumentRead: g.documentRead, ReadBlockIDs: ids}
}
