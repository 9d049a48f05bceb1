package tools

import (
	"fmt"
	"strings"

	"github.com/aretw0/blockedit/pkg/core"
)

// AddBlocks proposes new blocks.
//
// Within one call, every addition after the first successful one is anchored
// to the block created just before it, whatever AfterBlockID says. This keeps
// the batch in order even when the caller repeats a stale anchor. Block ids
// are allocated before the diff is recorded so later items can reference them.
func (t *Toolset) AddBlocks(args AddArgs) BatchResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	additions := capBatch(args.Additions, t.limits.MaxBatch)
	res := BatchResult{Results: make([]ItemResult, 0, len(additions))}

	batchLocal := make(map[string]struct{})
	var previous string

	for _, a := range additions {
		item := ItemResult{BlockID: a.AfterBlockID}

		if strings.TrimSpace(a.Content) == "" {
			res.fail(item, "Content cannot be empty")
			continue
		}
		if t.tooLong(a.Content) {
			res.fail(item, fmt.Sprintf("Content exceeds maximum length of %d characters", t.limits.MaxContent))
			continue
		}
		if err := t.guard.CanAdd(); err != nil {
			res.fail(item, err.Error())
			continue
		}

		anchor, err := t.resolveAnchor(a.AfterBlockID, previous, batchLocal)
		if err != nil {
			res.fail(item, err.Error())
			continue
		}
		item.BlockID = anchor

		payload := core.AddPayload{Type: core.BlockType(a.Type), Content: a.Content, Level: a.Level}
		if payload.Type == "" {
			payload.Type = core.BlockParagraph
		}
		if payload.Type != core.BlockHeading {
			payload.Level = 0
		} else if payload.Level == 0 {
			payload.Level = DefaultHeadingLevel
		}

		newID := core.NewID("blk")
		d := core.PendingDiff{
			ID:         core.NewID("diff"),
			BlockID:    anchor,
			NewBlockID: newID,
			Action:     core.ActionAdd,
			NewContent: payload.Encode(),
			Reason:     a.Reason,
		}
		t.emit(d)

		batchLocal[newID] = struct{}{}
		previous = newID

		item.NewBlockID = newID
		item.DiffID = d.ID
		res.ok(item)
	}

	if res.Succeeded > 0 {
		t.cache.Invalidate()
	}
	t.logger.Debug("add_blocks", "ok", res.Succeeded, "failed", res.Failed)
	return res
}

// resolveAnchor picks the insertion anchor for one addition.
func (t *Toolset) resolveAnchor(requested, previous string, batchLocal map[string]struct{}) (string, error) {
	if previous != "" {
		return previous, nil
	}
	if requested == "" || requested == core.StartOfDocument {
		return core.StartOfDocument, nil
	}
	if _, ok := batchLocal[requested]; ok {
		return requested, nil
	}
	if !t.index.Has(requested) {
		return "", fmt.Errorf("Anchor block %s not found", requested)
	}
	return requested, nil
}
