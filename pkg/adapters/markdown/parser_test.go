package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blockedit/pkg/adapters/markdown"
	"github.com/aretw0/blockedit/pkg/core"
)

const sample = `---
title: Release notes
tags:
  - go
---
# Release notes

Intro paragraph
spanning two lines.

## Changes

- first change
- second change
  continued
1. numbered

` + "```go\nfmt.Println(\"hi\")\n\n// blank line above stays inside\n```" + `

Closing words.
`

func TestParseDocument(t *testing.T) {
	p := markdown.New()
	meta, blocks, err := p.ParseDocument(sample)
	require.NoError(t, err)

	assert.Equal(t, "Release notes", meta["title"])

	type want struct {
		typ     core.BlockType
		content string
		level   int
		start   int
	}
	expected := []want{
		{core.BlockHeading, "Release notes", 1, 6},
		{core.BlockParagraph, "Intro paragraph\nspanning two lines.", 0, 8},
		{core.BlockHeading, "Changes", 2, 11},
		{core.BlockListItem, "- first change", 0, 13},
		{core.BlockListItem, "- second change\n  continued", 0, 14},
		{core.BlockListItem, "1. numbered", 0, 16},
		{core.BlockCode, "```go\nfmt.Println(\"hi\")\n\n// blank line above stays inside\n```", 0, 18},
		{core.BlockParagraph, "Closing words.", 0, 24},
	}
	require.Len(t, blocks, len(expected))
	for i, w := range expected {
		assert.Equal(t, w.typ, blocks[i].Type, "block %d", i)
		assert.Equal(t, w.content, blocks[i].Content, "block %d", i)
		assert.Equal(t, w.level, blocks[i].Level, "block %d", i)
		assert.Equal(t, w.start, blocks[i].LineStart, "block %d", i)
		assert.Equal(t, i, blocks[i].Order)
	}
	assert.Equal(t, 15, blocks[4].LineEnd)
	assert.Equal(t, 22, blocks[6].LineEnd)
}

func TestRoundTrip(t *testing.T) {
	p := markdown.New()
	meta, blocks, err := p.ParseDocument(sample)
	require.NoError(t, err)

	out, err := p.SerializeDocument(meta, blocks)
	require.NoError(t, err)

	_, again, err := p.ParseDocument(out)
	require.NoError(t, err)
	require.Len(t, again, len(blocks))
	for i := range blocks {
		assert.Equal(t, blocks[i].ID, again[i].ID)
		assert.Equal(t, blocks[i].Content, again[i].Content)
	}
}

func TestStableIDs(t *testing.T) {
	p := markdown.New()
	a, err := p.Parse("# Title\n\nSame\n\nSame\n")
	require.NoError(t, err)
	b, err := p.Parse("# Title\n\nInserted\n\nSame\n\nSame\n")
	require.NoError(t, err)

	assert.NotEqual(t, a[1].ID, a[2].ID, "duplicate content gets distinct ids")
	assert.Equal(t, a[0].ID, b[0].ID)
	assert.Equal(t, a[1].ID, b[2].ID)
	assert.Equal(t, a[2].ID, b[3].ID)
}

func TestHeadings(t *testing.T) {
	p := markdown.New()
	blocks, err := p.Parse("# C#\n### Closed ###\n#nospace\n")
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, "C#", blocks[0].Content)
	assert.Equal(t, "Closed", blocks[1].Content)
	assert.Equal(t, 3, blocks[1].Level)
	assert.Equal(t, core.BlockParagraph, blocks[2].Type)
}

func TestSerializeAddsMarkup(t *testing.T) {
	p := markdown.New()
	out, err := p.Serialize([]core.Block{
		{Type: core.BlockHeading, Content: "Title"},
		{Type: core.BlockParagraph, Content: "Text"},
		{Type: core.BlockListItem, Content: "bare item"},
		{Type: core.BlockListItem, Content: "* starred"},
		{Type: core.BlockCode, Content: "x := 1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nText\n\n- bare item\n* starred\n\n```\nx := 1\n```\n", out)
}

func TestSerializeKeepsBlockStructure(t *testing.T) {
	tests := []struct {
		name   string
		blocks []core.Block
		want   []core.BlockType
		first  string
	}{
		{
			name: "unclosed fence is closed",
			blocks: []core.Block{
				{Type: core.BlockCode, Content: "```go\nx := 2"},
				{Type: core.BlockParagraph, Content: "After one."},
				{Type: core.BlockHeading, Content: "Heading", Level: 1},
			},
			want:  []core.BlockType{core.BlockCode, core.BlockParagraph, core.BlockHeading},
			first: "```go\nx := 2\n```",
		},
		{
			name: "unclosed tilde fence",
			blocks: []core.Block{
				{Type: core.BlockCode, Content: "~~~\nraw"},
				{Type: core.BlockParagraph, Content: "After."},
			},
			want:  []core.BlockType{core.BlockCode, core.BlockParagraph},
			first: "~~~\nraw\n~~~",
		},
		{
			name:   "paragraph starting with heading marker",
			blocks: []core.Block{{Type: core.BlockParagraph, Content: "# not a heading"}},
			want:   []core.BlockType{core.BlockParagraph},
			first:  "\\# not a heading",
		},
		{
			name:   "paragraph lines with list and fence markers",
			blocks: []core.Block{{Type: core.BlockParagraph, Content: "intro\n- not a list\n1. nor this\n```"}},
			want:   []core.BlockType{core.BlockParagraph},
			first:  "intro\n\\- not a list\n1\\. nor this\n\\```",
		},
		{
			name:   "unfenced code containing a fence",
			blocks: []core.Block{{Type: core.BlockCode, Content: "```\ninner\n```"}},
			want:   []core.BlockType{core.BlockCode},
			first:  "```\ninner\n```",
		},
		{
			name: "bare code containing a fence line",
			blocks: []core.Block{
				{Type: core.BlockCode, Content: "echo\n```\ndone"},
				{Type: core.BlockParagraph, Content: "After."},
			},
			want:  []core.BlockType{core.BlockCode, core.BlockParagraph},
			first: "````\necho\n```\ndone\n````",
		},
		{
			name: "list item with unindented continuation",
			blocks: []core.Block{
				{Type: core.BlockListItem, Content: "first\nsecond"},
				{Type: core.BlockParagraph, Content: "After."},
			},
			want:  []core.BlockType{core.BlockListItem, core.BlockParagraph},
			first: "- first\n  second",
		},
	}

	p := markdown.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Serialize(tt.blocks)
			require.NoError(t, err)

			parsed, err := p.Parse(out)
			require.NoError(t, err)
			types := make([]core.BlockType, len(parsed))
			for i, b := range parsed {
				types[i] = b.Type
			}
			assert.Equal(t, tt.want, types, out)
			assert.Equal(t, tt.first, parsed[0].Content)

			again, err := p.Serialize(parsed)
			require.NoError(t, err)
			assert.Equal(t, out, again, "serialization is stable once parsed")
		})
	}
}

func TestFrontmatter(t *testing.T) {
	p := markdown.New()

	meta, blocks, err := p.ParseDocument("---\n---\nbody\n")
	require.NoError(t, err)
	assert.Empty(t, meta)
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].LineStart)

	_, _, err = p.ParseDocument("---\ntitle: x\nno closing\n")
	assert.Error(t, err)

	_, _, err = p.ParseDocument("---\nkey: [unclosed\n---\n")
	assert.Error(t, err)

	out, err := p.SerializeDocument(nil, []core.Block{{Type: core.BlockParagraph, Content: "plain"}})
	require.NoError(t, err)
	assert.Equal(t, "plain\n", out)
}

func TestEmptyDocument(t *testing.T) {
	p := markdown.New()
	blocks, err := p.Parse("")
	require.NoError(t, err)
	assert.Empty(t, blocks)

	out, err := p.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
