package blocks

import "github.com/aretw0/blockedit/pkg/core"

// Overlay resolves a block's content against pending diffs without touching
// the original. The newest update or delete for the id wins; add diffs are
// anchors, not targets, and are skipped.
func Overlay(id, original string, diffs []core.PendingDiff) (string, bool) {
	for i := len(diffs) - 1; i >= 0; i-- {
		d := diffs[i]
		if d.BlockID != id {
			continue
		}
		switch d.Action {
		case core.ActionDelete:
			return "", false
		case core.ActionUpdate:
			return d.NewContent, true
		}
	}
	return original, true
}

// EffectiveContent returns the content of id after pending diffs.
// ok is false when the block is unknown or deleted in the overlay.
func (x *Index) EffectiveContent(id string, diffs []core.PendingDiff) (string, bool) {
	b, found := x.Get(id)
	if !found {
		return "", false
	}
	return Overlay(id, b.Content, diffs)
}

// EffectiveBlock is EffectiveContent applied to the whole block.
func (x *Index) EffectiveBlock(id string, diffs []core.PendingDiff) (core.Block, bool) {
	b, found := x.Get(id)
	if !found {
		return core.Block{}, false
	}
	content, ok := Overlay(id, b.Content, diffs)
	if !ok {
		return core.Block{}, false
	}
	b.Content = content
	return b, true
}
