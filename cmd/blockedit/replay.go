package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/blockedit"
)

var replayWrite bool

// replayScript is a recorded agent session.
//
//	documents: "docs/**/*.md"
//	steps:
//	  - tool: list_blocks
//	  - tool: read_blocks
//	    args: {ids: [blk_1a2b3c4d5e6f]}
//	  - switch: docs/other.md
type replayScript struct {
	Documents string       `yaml:"documents"`
	Steps     []replayStep `yaml:"steps"`
}

type replayStep struct {
	Tool   string         `yaml:"tool"`
	Args   map[string]any `yaml:"args"`
	Switch string         `yaml:"switch"`
}

var replayCmd = &cobra.Command{
	Use:   "replay [script.yaml]",
	Short: "Replay a scripted sequence of tool calls",
	Long: `Replay a YAML script of tool calls and document switches against the documents
it names, printing every result and stuck warning. Paths are relative to the
script. With --write, pending diffs are applied and files are rewritten.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("Error reading script", err)
		}
		var script replayScript
		if err := yaml.Unmarshal(data, &script); err != nil {
			fatal("Error parsing script", err)
		}
		if script.Documents == "" {
			fatal("Error parsing script", fmt.Errorf("documents pattern is required"))
		}

		ctx := context.Background()
		ws, err := blockedit.Open(ctx, filepath.Dir(args[0]), script.Documents, sessionOptions()...)
		if err != nil {
			fatal("Error opening documents", err)
		}

		for i, step := range script.Steps {
			if err := runStep(ctx, ws, i+1, step); err != nil {
				fatal(fmt.Sprintf("Step %d failed", i+1), err)
			}
		}

		if replayWrite {
			saveWorkspace(ctx, ws)
		}
	},
}

func runStep(ctx context.Context, ws *blockedit.Workspace, n int, step replayStep) error {
	switch {
	case step.Switch != "":
		id, ok := ws.DocumentID(step.Switch)
		if !ok {
			return fmt.Errorf("unknown document %q", step.Switch)
		}
		out := <-ws.Session.SwitchDocument(ctx, id)
		if out.TimedOut {
			slog.Warn("switch timed out", "document", step.Switch)
		}
		if out.Err != nil {
			return out.Err
		}
		fmt.Printf("# %d switch %s\n", n, step.Switch)
		return nil

	case step.Tool != "":
		var raw json.RawMessage
		if step.Args != nil {
			data, err := json.Marshal(step.Args)
			if err != nil {
				return fmt.Errorf("invalid args: %w", err)
			}
			raw = data
		}
		res, err := ws.Session.Call(ctx, step.Tool, raw)
		fmt.Printf("# %d %s\n%s\n", n, step.Tool, res.Output)
		if res.Stuck.Stuck {
			slog.Warn("agent appears stuck", "step", n, "reason", res.Stuck.Reason)
		}
		// Rejected arguments are part of the replay, not a reason to stop.
		if err != nil && res.Output == "" {
			return err
		}
		return nil

	default:
		return fmt.Errorf("step needs either tool or switch")
	}
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayWrite, "write", false, "Apply pending diffs and write the files")
	replayCmd.Flags().StringVar(&commitMessage, "commit", "", "With --write, commit the saved files to git with this message")
}
