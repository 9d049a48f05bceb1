// Package blocks owns the ordered block list of a single document and the
// overlay rule that layers pending diffs on top of it.
package blocks

import (
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/blockedit/pkg/core"
)

// PreviewLength is the number of characters shown in a block summary.
const PreviewLength = 50

// Index is the authoritative, read-oriented view of one document's blocks.
// Structural positions only change through SetBlocks.
type Index struct {
	mu     sync.RWMutex
	blocks []core.Block
	byID   map[string]int
}

// NewIndex builds an index from the given blocks.
func NewIndex(blocks []core.Block) *Index {
	x := &Index{}
	x.SetBlocks(blocks)
	return x
}

// SetBlocks replaces the whole index. Blocks are ordered by their incoming
// Order (ties keep input position) and renumbered 0..n-1.
func (x *Index) SetBlocks(blocks []core.Block) {
	sorted := make([]core.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	byID := make(map[string]int, len(sorted))
	for i := range sorted {
		sorted[i].Order = i
		byID[sorted[i].ID] = i
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.blocks = sorted
	x.byID = byID
}

// Len returns the number of blocks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.blocks)
}

// Blocks returns a copy of all blocks in document order.
func (x *Index) Blocks() []core.Block {
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]core.Block, len(x.blocks))
	copy(out, x.blocks)
	return out
}

// Summaries returns the list_blocks view of the document.
func (x *Index) Summaries() []core.BlockSummary {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]core.BlockSummary, 0, len(x.blocks))
	for _, b := range x.blocks {
		out = append(out, Summarize(b))
	}
	return out
}

// Summarize builds the summary of a single block.
func Summarize(b core.Block) core.BlockSummary {
	return core.BlockSummary{
		ID:      b.ID,
		Type:    b.Type,
		Preview: Preview(b.Content),
		Order:   b.Order,
	}
}

// Preview truncates content to PreviewLength characters, adding "..." when cut.
func Preview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewLength {
		return content
	}
	return string(runes[:PreviewLength]) + "..."
}

// Get returns the block with the given id.
func (x *Index) Get(id string) (core.Block, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	i, ok := x.byID[id]
	if !ok {
		return core.Block{}, false
	}
	return x.blocks[i], true
}

// Has reports whether id names a block in the index.
func (x *Index) Has(id string) bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	_, ok := x.byID[id]
	return ok
}

// GetMany returns the known blocks in the order of ids. Unknown ids are dropped.
func (x *Index) GetMany(ids []string) []core.Block {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]core.Block, 0, len(ids))
	for _, id := range ids {
		if i, ok := x.byID[id]; ok {
			out = append(out, x.blocks[i])
		}
	}
	return out
}

// Context is a block together with its neighbours.
// Block is nil when the requested id is unknown.
type Context struct {
	Block  *core.Block
	Before []core.Block
	After  []core.Block
}

// WithContext returns the block plus up to size neighbours on each side.
func (x *Index) WithContext(id string, size int) Context {
	x.mu.RLock()
	defer x.mu.RUnlock()

	ctx := Context{Before: []core.Block{}, After: []core.Block{}}
	i, ok := x.byID[id]
	if !ok {
		return ctx
	}
	if size < 0 {
		size = 0
	}

	b := x.blocks[i]
	ctx.Block = &b

	start := max(i-size, 0)
	ctx.Before = append(ctx.Before, x.blocks[start:i]...)

	end := min(i+1+size, len(x.blocks))
	ctx.After = append(ctx.After, x.blocks[i+1:end]...)
	return ctx
}

// Search returns blocks whose raw content contains keyword, ignoring case.
func (x *Index) Search(keyword string) []core.Block {
	if keyword == "" {
		return nil
	}
	needle := strings.ToLower(keyword)

	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []core.Block
	for _, b := range x.blocks {
		if strings.Contains(strings.ToLower(b.Content), needle) {
			out = append(out, b)
		}
	}
	return out
}
