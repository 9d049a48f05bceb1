package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/pkg/tools"
)

var callWrite bool

var callCmd = &cobra.Command{
	Use:   "call [file] [tool] [json-args]",
	Short: "Run one tool call against a document",
	Long: `Run a single tool call against a document and print its JSON result.
Every block is listed and read first, so edits and deletions are allowed.
With --write, pending diffs are applied and the file is rewritten.`,
	Example: `  blockedit call README.md edit_blocks '{"edits":[{"blockId":"blk_1a2b3c4d5e6f","content":"New text"}]}'`,
	Args:    cobra.RangeArgs(2, 3),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := blockedit.OpenFiles(args[:1], sessionOptions()...)
		if err != nil {
			fatal("Error opening document", err)
		}
		ctx := context.Background()

		if err := readEverything(ctx, ws.Session); err != nil {
			fatal("Error reading document", err)
		}

		var raw json.RawMessage
		if len(args) == 3 {
			raw = json.RawMessage(args[2])
		}
		res, err := ws.Session.Call(ctx, args[1], raw)
		if res.Output != "" {
			fmt.Println(res.Output)
		}
		if err != nil {
			fatal("Tool call failed", err)
		}

		if callWrite {
			saveWorkspace(ctx, ws)
		}
	},
}

// readEverything lists the active document and reads all of its blocks.
func readEverything(ctx context.Context, s *blockedit.Session) error {
	res, err := s.Call(ctx, "list_blocks", nil)
	if err != nil {
		return err
	}
	var list tools.ListResult
	if err := json.Unmarshal([]byte(res.Output), &list); err != nil {
		return err
	}

	batch := s.Limits().MaxBatch
	for start := 0; start < len(list.Blocks); start += batch {
		end := min(start+batch, len(list.Blocks))
		ids := make([]string, 0, end-start)
		for _, b := range list.Blocks[start:end] {
			ids = append(ids, b.ID)
		}
		args, err := json.Marshal(tools.ReadArgs{IDs: ids})
		if err != nil {
			return err
		}
		if _, err := s.Call(ctx, "read_blocks", args); err != nil {
			return err
		}
	}
	// The warm-up calls are not agent behaviour.
	s.ResetTrace()
	return nil
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callWrite, "write", false, "Apply pending diffs and write the file")
	callCmd.Flags().StringVar(&commitMessage, "commit", "", "With --write, commit the saved files to git with this message")
}
