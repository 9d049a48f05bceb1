package main

import (
	"context"
	"log/slog"

	"github.com/aretw0/blockedit"
)

// commitMessage, when set with --write, commits the saved files.
var commitMessage string

func saveWorkspace(ctx context.Context, ws *blockedit.Workspace) {
	saved, err := ws.SaveAll()
	if err != nil {
		fatal("Error saving documents", err)
	}
	for _, d := range saved {
		slog.Info("saved", "name", d.Name)
	}
	if commitMessage == "" || len(saved) == 0 {
		return
	}
	committed, err := ws.Commit(ctx, commitMessage, saved)
	if err != nil {
		fatal("Error committing documents", err)
	}
	if committed {
		slog.Info("committed", "files", len(saved))
	}
}
