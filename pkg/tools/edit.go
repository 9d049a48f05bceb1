package tools

import (
	"fmt"

	"github.com/aretw0/blockedit/pkg/core"
)

// EditBlocks proposes new content for existing blocks. Each edit records the
// current effective content as OldContent, so successive edits of one block chain.
func (t *Toolset) EditBlocks(args EditArgs) BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	edits := capBatch(args.Edits, t.limits.MaxBatch)
	res := BatchResult{Results: make([]ItemResult, 0, len(edits))}

	for _, e := range edits {
		item := ItemResult{BlockID: e.BlockID}

		if err := t.guard.CanEdit(e.BlockID); err != nil {
			res.fail(item, err.Error())
			continue
		}
		if t.tooLong(e.Content) {
			res.fail(item, fmt.Sprintf("Content exceeds maximum length of %d characters", t.limits.MaxContent))
			continue
		}

		current, ok := t.index.EffectiveContent(e.BlockID, t.diffs.Pending())
		if !ok {
			res.fail(item, fmt.Sprintf("Block %s not found or deleted", e.BlockID))
			continue
		}

		d := core.PendingDiff{
			ID:         core.NewID("diff"),
			BlockID:    e.BlockID,
			Action:     core.ActionUpdate,
			OldContent: current,
			NewContent: e.Content,
			Reason:     e.Reason,
		}
		t.emit(d)
		item.DiffID = d.ID
		res.ok(item)
	}

	if res.Succeeded > 0 {
		t.cache.Invalidate()
	}
	t.logger.Debug("edit_blocks", "ok", res.Succeeded, "failed", res.Failed)
	return res
}
