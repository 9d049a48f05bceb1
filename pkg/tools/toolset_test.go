package tools_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blockedit/pkg/blocks"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/guard"
	"github.com/aretw0/blockedit/pkg/tools"
)

type fixture struct {
	index *blocks.Index
	guard *guard.Guard
	diffs *tools.MemoryDiffs
	cache *tools.Cache
	seen  []core.PendingDiff
	ts    *tools.Toolset
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWith(t, []core.Block{
		{ID: "h1", Type: core.BlockHeading, Content: "Title", Level: 1, Order: 0},
		{ID: "p1", Type: core.BlockParagraph, Content: "First paragraph", Order: 1},
		{ID: "p2", Type: core.BlockParagraph, Content: "Second paragraph", Order: 2},
		{ID: "c1", Type: core.BlockCode, Content: "fmt.Println()", Order: 3},
		{ID: "l1", Type: core.BlockListItem, Content: "item", Order: 4},
	})
}

func newFixtureWith(t *testing.T, bs []core.Block) *fixture {
	t.Helper()
	f := &fixture{
		index: blocks.NewIndex(bs),
		guard: guard.New(),
		diffs: tools.NewMemoryDiffs("doc-1"),
		cache: tools.NewCache(0),
	}
	f.ts = tools.New(tools.Deps{
		Index:  f.index,
		Guard:  f.guard,
		Diffs:  f.diffs,
		Cache:  f.cache,
		OnDiff: func(d core.PendingDiff) { f.seen = append(f.seen, d) },
	})
	return f
}

func TestNew_PanicsWithoutRequiredDeps(t *testing.T) {
	assert.Panics(t, func() { tools.New(tools.Deps{}) })
	assert.Panics(t, func() { tools.New(tools.Deps{Index: blocks.NewIndex(nil)}) })
	assert.Panics(t, func() {
		tools.New(tools.Deps{Index: blocks.NewIndex(nil), Guard: guard.New()})
	})
}

func TestListBlocks_MarksDocumentRead(t *testing.T) {
	f := newFixture(t)
	assert.False(t, f.guard.DocumentRead())

	res := f.ts.ListBlocks()
	assert.True(t, f.guard.DocumentRead())
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Blocks, 5)
	assert.Equal(t, "h1", res.Blocks[0].ID)
	assert.Equal(t, 0, res.PendingDiffs)
}

func TestEdit_RequiresReads(t *testing.T) {
	f := newFixture(t)

	res := f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "x"}}})
	require.Len(t, res.Results, 1)
	assert.False(t, res.Results[0].OK)
	assert.Contains(t, res.Results[0].Error, "list_blocks")

	f.ts.ListBlocks()
	res = f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "x"}}})
	assert.False(t, res.Results[0].OK)
	assert.Contains(t, res.Results[0].Error, "read_blocks")

	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})
	res = f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "x"}}})
	assert.True(t, res.Results[0].OK)
	assert.NotEmpty(t, res.Results[0].DiffID)
	assert.Len(t, f.diffs.Pending(), 1)
}

func TestEdit_ChainedEditsRecordPreviousContent(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})

	f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "v1"}}})
	f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "v2"}}})

	diffs := f.diffs.Pending()
	require.Len(t, diffs, 2)
	assert.Equal(t, "First paragraph", diffs[0].OldContent)
	assert.Equal(t, "v1", diffs[1].OldContent)
	assert.Equal(t, "v2", diffs[1].NewContent)
	assert.Equal(t, "doc-1", diffs[1].DocID)
	assert.Equal(t, diffs, f.seen)
}

func TestEdit_PartialSuccess(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1", "p2", "ghost"}})

	res := f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{
		{BlockID: "p1", Content: "ok"},
		{BlockID: "ghost", Content: "nope"},
		{BlockID: "p2", Content: strings.Repeat("x", tools.DefaultMaxContent+1)},
		{BlockID: "p2", Content: "ok too"},
	}})

	require.Len(t, res.Results, 4)
	assert.True(t, res.Results[0].OK)
	assert.False(t, res.Results[1].OK)
	assert.Contains(t, res.Results[1].Error, "not found or deleted")
	assert.False(t, res.Results[2].OK)
	assert.Contains(t, res.Results[2].Error, "maximum length")
	assert.True(t, res.Results[3].OK)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
}

func TestEdit_DeletedBlockFails(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})
	f.ts.DeleteBlocks(tools.DeleteArgs{Deletions: []tools.Deletion{{BlockID: "p1"}}})

	res := f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "late"}}})
	assert.False(t, res.Results[0].OK)
	assert.Contains(t, res.Results[0].Error, "not found or deleted")
}

func TestEdit_ContentCapCountsCharacters(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})

	// Multi-byte runes: byte length exceeds the cap, character count does not.
	content := strings.Repeat("é", tools.DefaultMaxContent)
	res := f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: content}}})
	assert.True(t, res.Results[0].OK)
}

func TestBatchCap_DropsExtraItems(t *testing.T) {
	f := newFixture(t)
	f.ts.ListBlocks()

	additions := make([]tools.Addition, 30)
	for i := range additions {
		additions[i] = tools.Addition{Content: fmt.Sprintf("line %d", i)}
	}
	res := f.ts.AddBlocks(tools.AddArgs{Additions: additions})

	assert.Len(t, res.Results, tools.DefaultMaxBatch)
	assert.Equal(t, tools.DefaultMaxBatch, res.Succeeded)
	assert.Len(t, f.diffs.Pending(), tools.DefaultMaxBatch)
}

func TestBatchCap_AllBatchTools(t *testing.T) {
	const n = 30
	bs := make([]core.Block, n)
	ids := make([]string, n)
	for i := range bs {
		ids[i] = fmt.Sprintf("b%02d", i)
		bs[i] = core.Block{ID: ids[i], Type: core.BlockParagraph, Content: fmt.Sprintf("para %d", i), Order: i}
	}

	tests := []struct {
		name  string
		run   func(f *fixture) []string
		diffs int
	}{
		{
			name: "read_blocks",
			run: func(f *fixture) []string {
				res := f.ts.ReadBlocks(tools.ReadArgs{IDs: ids})
				out := make([]string, 0, len(res.Blocks))
				for _, b := range res.Blocks {
					assert.True(t, b.OK, b.ID)
					out = append(out, b.ID)
				}
				return out
			},
		},
		{
			name: "edit_blocks",
			run: func(f *fixture) []string {
				edits := make([]tools.Edit, n)
				for i, id := range ids {
					edits[i] = tools.Edit{BlockID: id, Content: "edited"}
				}
				return okIDs(t, f.ts.EditBlocks(tools.EditArgs{Edits: edits}))
			},
			diffs: tools.DefaultMaxBatch,
		},
		{
			name: "delete_blocks",
			run: func(f *fixture) []string {
				dels := make([]tools.Deletion, n)
				for i, id := range ids {
					dels[i] = tools.Deletion{BlockID: id}
				}
				return okIDs(t, f.ts.DeleteBlocks(tools.DeleteArgs{Deletions: dels}))
			},
			diffs: tools.DefaultMaxBatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtureWith(t, bs)
			f.ts.ListBlocks()
			f.guard.MarkBlocksRead(ids...)

			processed := tt.run(f)
			assert.Equal(t, ids[:tools.DefaultMaxBatch], processed)
			assert.Len(t, f.diffs.Pending(), tt.diffs)
		})
	}
}

func okIDs(t *testing.T, res tools.BatchResult) []string {
	t.Helper()
	out := make([]string, 0, len(res.Results))
	for _, r := range res.Results {
		assert.True(t, r.OK, r.Error)
		out = append(out, r.BlockID)
	}
	assert.Equal(t, len(res.Results), res.Succeeded)
	return out
}

func TestAdd_OnlyNeedsDocumentRead(t *testing.T) {
	f := newFixture(t)

	res := f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{{AfterBlockID: "p1", Content: "new"}}})
	assert.False(t, res.Results[0].OK)

	f.ts.ListBlocks()
	res = f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{{AfterBlockID: "p1", Content: "new"}}})
	assert.True(t, res.Results[0].OK)
	assert.NotEmpty(t, res.Results[0].NewBlockID)
}

func TestAdd_AutoChainsWithinBatch(t *testing.T) {
	f := newFixture(t)
	f.ts.ListBlocks()

	res := f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{
		{AfterBlockID: "p1", Content: "A"},
		{AfterBlockID: "p1", Content: "B"},
		{AfterBlockID: "p1", Content: "C"},
	}})
	require.Equal(t, 3, res.Succeeded)

	diffs := f.diffs.Pending()
	assert.Equal(t, "p1", diffs[0].BlockID)
	assert.Equal(t, diffs[0].NewBlockID, diffs[1].BlockID)
	assert.Equal(t, diffs[1].NewBlockID, diffs[2].BlockID)

	applied := blocks.Apply(f.index.Blocks(), diffs)
	var order []string
	for _, b := range applied {
		order = append(order, b.Content)
	}
	assert.Equal(t, []string{"Title", "First paragraph", "A", "B", "C", "Second paragraph", "fmt.Println()", "item"}, order)
}

func TestAdd_ChainSkipsFailedItems(t *testing.T) {
	f := newFixture(t)
	f.ts.ListBlocks()

	res := f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{
		{AfterBlockID: "p1", Content: "A"},
		{AfterBlockID: "p1", Content: "   "},
		{AfterBlockID: "p1", Content: "B"},
	}})
	require.Len(t, res.Results, 3)
	assert.Contains(t, res.Results[1].Error, "Content cannot be empty")

	diffs := f.diffs.Pending()
	require.Len(t, diffs, 2)
	assert.Equal(t, diffs[0].NewBlockID, diffs[1].BlockID)
}

func TestAdd_Anchors(t *testing.T) {
	f := newFixture(t)
	f.ts.ListBlocks()

	res := f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{{AfterBlockID: "missing", Content: "x"}}})
	assert.False(t, res.Results[0].OK)
	assert.Contains(t, res.Results[0].Error, "not found")

	res = f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{{Content: "top"}}})
	require.True(t, res.Results[0].OK)
	assert.Equal(t, core.StartOfDocument, f.diffs.Pending()[0].BlockID)

	res = f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{{AfterBlockID: core.StartOfDocument, Content: "top again"}}})
	assert.True(t, res.Results[0].OK)
}

func TestAdd_PayloadDefaults(t *testing.T) {
	f := newFixture(t)
	f.ts.ListBlocks()

	f.ts.AddBlocks(tools.AddArgs{Additions: []tools.Addition{
		{Content: "plain"},
		{Type: "heading", Content: "Section"},
		{Type: "code", Content: "x := 1", Level: 3},
	}})
	diffs := f.diffs.Pending()
	require.Len(t, diffs, 3)

	p, err := core.DecodeAddPayload(diffs[0].NewContent)
	require.NoError(t, err)
	assert.Equal(t, core.BlockParagraph, p.Type)

	h, err := core.DecodeAddPayload(diffs[1].NewContent)
	require.NoError(t, err)
	assert.Equal(t, core.BlockHeading, h.Type)
	assert.Equal(t, tools.DefaultHeadingLevel, h.Level)

	c, err := core.DecodeAddPayload(diffs[2].NewContent)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Level)
}

func TestDelete_NotFoundVersusAlreadyDeleted(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p2", "ghost"}})

	res := f.ts.DeleteBlocks(tools.DeleteArgs{Deletions: []tools.Deletion{{BlockID: "p2"}}})
	require.True(t, res.Results[0].OK)
	assert.Equal(t, "Second paragraph", f.diffs.Pending()[0].OldContent)

	res = f.ts.DeleteBlocks(tools.DeleteArgs{Deletions: []tools.Deletion{
		{BlockID: "p2"},
		{BlockID: "ghost"},
		{BlockID: "p1"},
	}})
	require.Len(t, res.Results, 3)
	assert.Contains(t, res.Results[0].Error, "already deleted")
	assert.Contains(t, res.Results[1].Error, "not found")
	assert.NotContains(t, res.Results[1].Error, "already")
	assert.Contains(t, res.Results[2].Error, "read_blocks")
	assert.Equal(t, 0, res.Succeeded)
}

func TestRead_OverlayAndUnknown(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})
	f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "edited"}}})

	res := f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1", "nope"}})
	require.Len(t, res.Blocks, 2)
	require.True(t, res.Blocks[0].OK)
	assert.Equal(t, "edited", *res.Blocks[0].Content)
	assert.False(t, res.Blocks[1].OK)
	assert.Equal(t, "Block not found", res.Blocks[1].Error)
}

func TestRead_WithContextMarksNeighbours(t *testing.T) {
	f := newFixture(t)

	res := f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p2"}, WithContext: true})
	require.True(t, res.Blocks[0].OK)
	assert.Len(t, res.Blocks[0].Before, 2)
	assert.Len(t, res.Blocks[0].After, 2)

	for _, id := range []string{"h1", "p1", "p2", "c1", "l1"} {
		assert.True(t, f.guard.HasRead(id), id)
	}
}

func TestRead_CacheHitStillMarksGuard(t *testing.T) {
	f := newFixture(t)

	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p2"}, WithContext: true})
	assert.Equal(t, 1, f.cache.Len())

	f.guard.Reset()
	res := f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p2"}, WithContext: true})
	require.True(t, res.Blocks[0].OK)
	assert.True(t, f.guard.DocumentRead())
	assert.True(t, f.guard.HasRead("p1"))
	assert.True(t, f.guard.HasRead("c1"))
}

func TestRead_MutationInvalidatesCache(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})
	require.Equal(t, 1, f.cache.Len())

	f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p1", Content: "fresh"}}})
	assert.Equal(t, 0, f.cache.Len())

	res := f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})
	assert.Equal(t, "fresh", *res.Blocks[0].Content)
}

func TestRead_FailedMutationKeepsCache(t *testing.T) {
	f := newFixture(t)
	f.ts.ReadBlocks(tools.ReadArgs{IDs: []string{"p1"}})

	f.ts.EditBlocks(tools.EditArgs{Edits: []tools.Edit{{BlockID: "p2", Content: "unread"}}})
	assert.Equal(t, 1, f.cache.Len())
}

func TestLimits_ZeroSelectsDefaults(t *testing.T) {
	ts := tools.New(tools.Deps{
		Index:  blocks.NewIndex(nil),
		Guard:  guard.New(),
		Diffs:  tools.NewMemoryDiffs("doc-1"),
		Limits: tools.Limits{MaxBatch: 0, MaxContent: -1, ContextSize: 0},
	})
	assert.Equal(t, tools.Limits{
		MaxBatch:    tools.DefaultMaxBatch,
		MaxContent:  tools.DefaultMaxContent,
		ContextSize: tools.DefaultContextSize,
	}, ts.Limits())
}
