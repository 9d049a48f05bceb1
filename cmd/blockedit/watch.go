package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/pkg/adapters/lifecycle"
	"github.com/aretw0/blockedit/pkg/core"
)

var watchPattern string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Keep documents in sync with the filesystem",
	Long:  `Load every document under dir matching --pattern and reload them when they change on disk. Prints one line per change until interrupted.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws, err := blockedit.Open(ctx, dir, watchPattern, sessionOptions()...)
		if err != nil {
			fatal("Error opening documents", err)
		}

		changes := make(chan core.Event)
		if err := ws.Watch(ctx, watchPattern, func(e core.Event) {
			select {
			case changes <- e:
			case <-ctx.Done():
			}
		}); err != nil {
			fatal("Error starting watcher", err)
		}

		src := lifecycle.NewSource(changes)
		if err := src.Start(ctx); err != nil {
			fatal("Error starting event source", err)
		}
		fmt.Printf("watching %d documents in %s\n", ws.Session.Manager().Len(), ws.Root)
		for e := range src.Events() {
			fmt.Println(e.String())
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&watchPattern, "pattern", "**/*.md", "Glob of documents to load and watch")
}
