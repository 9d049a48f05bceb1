package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/pkg/blocks"
	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/tools"
)

var (
	blocksJSON bool
	blocksGrep string
)

var blocksCmd = &cobra.Command{
	Use:   "blocks [file]",
	Short: "List the blocks of a document",
	Long:  `Parse a document and print one line per block: id, type and a preview. With --grep only blocks containing the keyword are shown.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ws, err := blockedit.OpenFiles(args, sessionOptions()...)
		if err != nil {
			fatal("Error opening document", err)
		}

		var summaries []core.BlockSummary
		if blocksGrep != "" {
			for _, b := range ws.Session.Search(blocksGrep) {
				summaries = append(summaries, blocks.Summarize(b))
			}
		} else {
			res, err := ws.Session.Call(context.Background(), "list_blocks", nil)
			if err != nil {
				fatal("Error listing blocks", err)
			}
			var list tools.ListResult
			if err := json.Unmarshal([]byte(res.Output), &list); err != nil {
				fatal("Error decoding blocks", err)
			}
			summaries = list.Blocks
		}

		if blocksJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(summaries); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, s := range summaries {
			fmt.Printf("%3d  %-18s %-10s %s\n", s.Order, s.ID, s.Type, s.Preview)
		}
	},
}

func init() {
	rootCmd.AddCommand(blocksCmd)
	blocksCmd.Flags().BoolVar(&blocksJSON, "json", false, "Output in JSON format")
	blocksCmd.Flags().StringVar(&blocksGrep, "grep", "", "Only show blocks containing this keyword")
}
