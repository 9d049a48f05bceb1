package tools

import (
	"github.com/aretw0/blockedit/pkg/core"
)

// ContextBlock is a neighbour returned alongside a read block.
type ContextBlock struct {
	ID      string         `json:"id"`
	Type    core.BlockType `json:"type"`
	Content string         `json:"content"`
}

// ReadItem is the outcome of reading one block. Content reflects pending diffs.
type ReadItem struct {
	ID      string         `json:"id"`
	OK      bool           `json:"ok"`
	Type    core.BlockType `json:"type,omitempty"`
	Level   int            `json:"level,omitempty"`
	Content *string        `json:"content,omitempty"`
	Before  []ContextBlock `json:"before,omitempty"`
	After   []ContextBlock `json:"after,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ReadResult is returned by read_blocks.
type ReadResult struct {
	Blocks []ReadItem `json:"blocks"`
}

// ReadBlocks returns the effective content of the requested blocks and marks
// them (and any context blocks) as read.
func (t *Toolset) ReadBlocks(args ReadArgs) ReadResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	ids := capBatch(args.IDs, t.limits.MaxBatch)
	diffs := t.diffs.Pending()
	version := len(diffs)

	t.guard.MarkDocumentRead()
	t.guard.MarkBlocksRead(ids...)

	res := ReadResult{Blocks: make([]ReadItem, 0, len(ids))}
	for _, id := range ids {
		key := CacheKey(id, args.WithContext, version)
		if hit, ok := t.cache.get(key); ok {
			t.guard.MarkBlocksRead(hit.covered...)
			res.Blocks = append(res.Blocks, hit.item)
			continue
		}

		item, covered := t.readOne(id, args.WithContext, diffs)
		t.guard.MarkBlocksRead(covered...)
		t.cache.set(key, cachedRead{item: item, covered: covered})
		res.Blocks = append(res.Blocks, item)
	}
	return res
}

func (t *Toolset) readOne(id string, withContext bool, diffs []core.PendingDiff) (ReadItem, []string) {
	b, ok := t.index.EffectiveBlock(id, diffs)
	if !ok {
		return ReadItem{ID: id, OK: false, Error: "Block not found"}, []string{id}
	}

	content := b.Content
	item := ReadItem{ID: id, OK: true, Type: b.Type, Level: b.Level, Content: &content}
	covered := []string{id}
	if !withContext {
		return item, covered
	}

	ctx := t.index.WithContext(id, t.limits.ContextSize)
	item.Before = t.contextBlocks(ctx.Before, diffs, &covered)
	item.After = t.contextBlocks(ctx.After, diffs, &covered)
	return item, covered
}

// contextBlocks resolves neighbours through the overlay, skipping deleted ones.
func (t *Toolset) contextBlocks(neighbours []core.Block, diffs []core.PendingDiff, covered *[]string) []ContextBlock {
	out := make([]ContextBlock, 0, len(neighbours))
	for _, n := range neighbours {
		b, ok := t.index.EffectiveBlock(n.ID, diffs)
		if !ok {
			continue
		}
		out = append(out, ContextBlock{ID: b.ID, Type: b.Type, Content: b.Content})
		*covered = append(*covered, b.ID)
	}
	return out
}
