package tools

import "github.com/aretw0/blockedit/pkg/core"

// ListResult is returned by list_blocks.
type ListResult struct {
	Blocks       []core.BlockSummary `json:"blocks"`
	Total        int                 `json:"total"`
	PendingDiffs int                 `json:"pendingDiffs"`
}

// ListBlocks marks the document as read and returns every block summary.
func (t *Toolset) ListBlocks() ListResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.guard.MarkDocumentRead()
	summaries := t.index.Summaries()
	return ListResult{
		Blocks:       summaries,
		Total:        len(summaries),
		PendingDiffs: len(t.diffs.Pending()),
	}
}
