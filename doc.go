// Package blockedit is the composition root of a block-level document editing
// runtime for LLM agents.
//
// A document is parsed into blocks (headings, paragraphs, code blocks, list
// items). An agent inspects and changes it through five batch tools:
// list_blocks, read_blocks, edit_blocks, add_blocks and delete_blocks. Changes
// never touch the document directly; they accumulate as pending diffs that a
// human or orchestrator later applies or rejects.
//
// Features:
//
//   - **Read before write**: edits and deletions are refused for blocks the agent has not read.
//   - **Diff overlay**: reads always reflect pending diffs.
//   - **Partial success**: every item of a batch succeeds or fails on its own.
//   - **Stuck detection**: repeated non-progressing tool calls are flagged.
//   - **Multi-document sessions**: each document keeps its own pending diffs across switches.
//
// Usage:
//
//	ws, err := blockedit.Open(ctx, "./docs", "**/*.md", blockedit.WithLogger(logger))
//	res, err := ws.Session.Call(ctx, "list_blocks", nil)
//	if res.Stuck.Stuck {
//		// nudge or stop the agent
//	}
//	_, err = ws.SaveAll()
package blockedit
