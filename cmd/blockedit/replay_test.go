package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/pkg/session"
)

func openWorkspace(t *testing.T) *blockedit.Workspace {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.md"), []byte("# A\n\nAlpha.\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("# B\n\nBeta.\n"), 0o644))

	ws, err := blockedit.Open(context.Background(), root, "*.md")
	require.NoError(t, err)
	return ws
}

func TestReplayScript_Decodes(t *testing.T) {
	src := `
documents: "*.md"
steps:
  - tool: list_blocks
  - tool: read_blocks
    args: {ids: [x], withContext: true}
  - switch: b.md
`
	var script replayScript
	require.NoError(t, yaml.Unmarshal([]byte(src), &script))
	require.Len(t, script.Steps, 3)
	assert.Equal(t, "list_blocks", script.Steps[0].Tool)
	assert.Equal(t, true, script.Steps[1].Args["withContext"])
	assert.Equal(t, "b.md", script.Steps[2].Switch)
}

func TestRunStep(t *testing.T) {
	ws := openWorkspace(t)
	ctx := context.Background()

	require.NoError(t, runStep(ctx, ws, 1, replayStep{Tool: "list_blocks"}))
	require.NoError(t, runStep(ctx, ws, 2, replayStep{Switch: "b.md"}))

	active, err := ws.Session.ActiveDocument()
	require.NoError(t, err)
	assert.Equal(t, "b.md", active.Name)

	// Rejected arguments still produce output and do not stop the replay.
	require.NoError(t, runStep(ctx, ws, 3, replayStep{Tool: "read_blocks", Args: map[string]any{"ids": []any{}}}))

	assert.Error(t, runStep(ctx, ws, 4, replayStep{Switch: "missing.md"}))
	assert.Error(t, runStep(ctx, ws, 5, replayStep{}))
	assert.Error(t, runStep(ctx, ws, 6, replayStep{Tool: "format_disk"}))
}

func TestReadEverythingAllowsEdits(t *testing.T) {
	ws := openWorkspace(t)
	ctx := context.Background()

	require.NoError(t, readEverything(ctx, ws.Session))
	assert.Empty(t, ws.Session.Trace())

	doc, err := ws.Session.ActiveDocument()
	require.NoError(t, err)
	res, err := ws.Session.Call(ctx, "delete_blocks", []byte(`{"deletions":[{"blockId":"`+doc.Blocks[1].ID+`"}]}`))
	require.NoError(t, err)
	assert.True(t, res.OK)
}

func TestBuildSessionTree(t *testing.T) {
	ws := openWorkspace(t)
	st := ws.Session.State()

	tree := buildSessionTree(ws, st.(session.SessionState))
	assert.Equal(t, "Session", tree.Name)
	require.Len(t, tree.Children, 4)
	require.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, "running", tree.Children[0].Children[0].Status)
	assert.Equal(t, "suspended", tree.Children[0].Children[1].Status)
}
