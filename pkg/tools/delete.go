package tools

import (
	"fmt"

	"github.com/aretw0/blockedit/pkg/core"
)

// DeleteBlocks proposes removing blocks. The guard is consulted once for the
// whole batch.
func (t *Toolset) DeleteBlocks(args DeleteArgs) BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	deletions := capBatch(args.Deletions, t.limits.MaxBatch)
	res := BatchResult{Results: make([]ItemResult, 0, len(deletions))}

	ids := make([]string, len(deletions))
	for i, d := range deletions {
		ids[i] = d.BlockID
	}
	check := t.guard.CanDeleteBlocks(ids)

	for _, del := range deletions {
		item := ItemResult{BlockID: del.BlockID}

		if msg, denied := check.Errors[del.BlockID]; denied {
			res.fail(item, msg)
			continue
		}

		current, ok := t.index.EffectiveContent(del.BlockID, t.diffs.Pending())
		if !ok {
			if t.index.Has(del.BlockID) {
				res.fail(item, fmt.Sprintf("Block %s already deleted", del.BlockID))
			} else {
				res.fail(item, fmt.Sprintf("Block %s not found", del.BlockID))
			}
			continue
		}

		d := core.PendingDiff{
			ID:         core.NewID("diff"),
			BlockID:    del.BlockID,
			Action:     core.ActionDelete,
			OldContent: current,
			Reason:     del.Reason,
		}
		t.emit(d)
		item.DiffID = d.ID
		res.ok(item)
	}

	if res.Succeeded > 0 {
		t.cache.Invalidate()
	}
	t.logger.Debug("delete_blocks", "ok", res.Succeeded, "failed", res.Failed)
	return res
}
