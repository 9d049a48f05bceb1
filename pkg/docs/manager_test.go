package docs_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/docs"
)

// lineParser turns every non-empty line into a paragraph.
type lineParser struct{}

func (lineParser) Parse(content string) ([]core.Block, error) {
	if strings.Contains(content, "\x00") {
		return nil, errors.New("binary content")
	}
	var out []core.Block
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, core.Block{ID: core.NewID("blk"), Type: core.BlockParagraph, Content: line, Order: len(out)})
	}
	return out, nil
}

func (lineParser) Serialize(blocks []core.Block) (string, error) {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = b.Content
	}
	return strings.Join(lines, "\n"), nil
}

func TestManager_AddActivatesFirst(t *testing.T) {
	m := docs.NewManager(lineParser{})
	assert.Equal(t, "", m.ActiveID())

	a, err := m.Add("a.md", "markdown", "one\ntwo")
	require.NoError(t, err)
	assert.Len(t, a.Blocks, 2)
	assert.False(t, a.Dirty)
	assert.Equal(t, a.ID, m.ActiveID())

	b, err := m.Add("b.md", "markdown", "three")
	require.NoError(t, err)
	assert.Equal(t, a.ID, m.ActiveID(), "adding a second document keeps the active one")

	require.NoError(t, m.SetActive(b.ID))
	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "b.md", active.Name)
}

func TestManager_ParseError(t *testing.T) {
	m := docs.NewManager(lineParser{})
	_, err := m.Add("bad", "markdown", "a\x00b")
	assert.Error(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManager_SetActiveUnknown(t *testing.T) {
	m := docs.NewManager(lineParser{})
	a, _ := m.Add("a.md", "markdown", "x")

	err := m.SetActive("doc_missing")
	assert.ErrorIs(t, err, core.ErrDocumentNotFound)
	assert.Equal(t, a.ID, m.ActiveID())
}

func TestManager_RemoveReassignsActive(t *testing.T) {
	m := docs.NewManager(lineParser{})
	a, _ := m.Add("a.md", "markdown", "x")
	b, _ := m.Add("b.md", "markdown", "y")
	c, _ := m.Add("c.md", "markdown", "z")

	require.NoError(t, m.SetActive(b.ID))
	require.NoError(t, m.Remove(b.ID))
	assert.Equal(t, a.ID, m.ActiveID())

	require.NoError(t, m.Remove(c.ID))
	assert.Equal(t, a.ID, m.ActiveID(), "removing an inactive document keeps the pointer")

	require.NoError(t, m.Remove(a.ID))
	assert.Equal(t, "", m.ActiveID())
	_, ok := m.Active()
	assert.False(t, ok)

	assert.ErrorIs(t, m.Remove(a.ID), core.ErrDocumentNotFound)
}

func TestManager_UpdateContentMarksDirty(t *testing.T) {
	m := docs.NewManager(lineParser{})
	a, _ := m.Add("a.md", "markdown", "x")

	updated, err := m.UpdateContent(a.ID, "x\ny\nz")
	require.NoError(t, err)
	assert.True(t, updated.Dirty)
	assert.Len(t, updated.Blocks, 3)

	require.NoError(t, m.MarkClean(a.ID))
	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.False(t, got.Dirty)
	assert.Equal(t, "x\ny\nz", got.Content)
}

func TestManager_ListKeepsInsertionOrder(t *testing.T) {
	m := docs.NewManager(lineParser{})
	for _, n := range []string{"c", "a", "b"} {
		_, err := m.Add(n, "markdown", n)
		require.NoError(t, err)
	}
	var names []string
	for _, d := range m.List() {
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"c", "a", "b"}, names)

	found, ok := m.FindByName("a")
	require.True(t, ok)
	assert.Equal(t, "a", found.Content)
}

func TestManager_ReturnsCopies(t *testing.T) {
	m := docs.NewManager(lineParser{})
	a, _ := m.Add("a.md", "markdown", "x")
	a.Blocks[0].Content = "mutated"

	got, _ := m.Get(a.ID)
	assert.Equal(t, "x", got.Blocks[0].Content)
}

func TestManager_State(t *testing.T) {
	m := docs.NewManager(lineParser{})
	a, _ := m.Add("a.md", "markdown", "x")
	_, _ = m.UpdateContent(a.ID, "y")

	st, ok := m.State().(docs.ManagerState)
	require.True(t, ok)
	assert.Equal(t, a.ID, st.Active)
	assert.Equal(t, []string{a.ID}, st.Dirty)
	assert.Equal(t, "document-manager", m.ComponentType())
}
