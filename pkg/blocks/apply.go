package blocks

import (
	"sort"

	"github.com/aretw0/blockedit/pkg/core"
)

type slot struct {
	block   core.Block
	deleted bool
}

// Apply materializes pending diffs onto blocks in creation order and returns
// the resulting document with orders renumbered.
//
// Deleted blocks stay as tombstones until the end so that add diffs anchored
// to them still land in the right place. Adds whose anchor is unknown are
// appended; adds with an unreadable payload are skipped.
func Apply(blocks []core.Block, diffs []core.PendingDiff) []core.Block {
	sorted := make([]core.Block, len(blocks))
	copy(sorted, blocks)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Order < sorted[j].Order
	})

	slots := make([]slot, 0, len(sorted)+len(diffs))
	for _, b := range sorted {
		slots = append(slots, slot{block: b})
	}

	find := func(id string) int {
		for i := range slots {
			if slots[i].block.ID == id {
				return i
			}
		}
		return -1
	}

	for _, d := range diffs {
		switch d.Action {
		case core.ActionUpdate:
			if i := find(d.BlockID); i >= 0 && !slots[i].deleted {
				slots[i].block.Content = d.NewContent
			}
		case core.ActionDelete:
			if i := find(d.BlockID); i >= 0 {
				slots[i].deleted = true
			}
		case core.ActionAdd:
			p, err := core.DecodeAddPayload(d.NewContent)
			if err != nil {
				continue
			}
			nb := slot{block: core.Block{
				ID:      d.NewBlockID,
				Type:    p.Type,
				Content: p.Content,
				Level:   p.Level,
			}}

			pos := len(slots)
			if d.BlockID == "" || d.BlockID == core.StartOfDocument {
				pos = 0
			} else if i := find(d.BlockID); i >= 0 {
				pos = i + 1
			}
			slots = append(slots, slot{})
			copy(slots[pos+1:], slots[pos:])
			slots[pos] = nb
		}
	}

	out := make([]core.Block, 0, len(slots))
	for _, s := range slots {
		if s.deleted {
			continue
		}
		s.block.Order = len(out)
		out = append(out, s.block)
	}
	return out
}
