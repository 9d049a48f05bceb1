package blockedit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/aretw0/blockedit"
	"github.com/aretw0/blockedit/pkg/tools"
)

// Example_basic loads a document, edits one block the way an agent would and
// applies the pending diff.
func Example_basic() {
	s, err := blockedit.New()
	if err != nil {
		log.Fatal(err)
	}

	doc, err := s.AddDocument("notes.md", "md", "# Notes\n\nDraft text.\n")
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()

	// 1. Inspect the document
	res, err := s.Call(ctx, "list_blocks", nil)
	if err != nil {
		log.Fatal(err)
	}
	var list tools.ListResult
	if err := json.Unmarshal([]byte(res.Output), &list); err != nil {
		log.Fatal(err)
	}
	target := list.Blocks[1].ID

	// 2. Read the block before editing it
	args, _ := json.Marshal(tools.ReadArgs{IDs: []string{target}})
	if _, err := s.Call(ctx, "read_blocks", args); err != nil {
		log.Fatal(err)
	}

	// 3. Propose an edit
	args, _ = json.Marshal(tools.EditArgs{Edits: []tools.Edit{{BlockID: target, Content: "Final text."}}})
	res, err = s.Call(ctx, "edit_blocks", args)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("edit ok:", res.OK)

	// 4. Apply it
	applied, err := s.ApplyPending(doc.ID)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(applied.Content)
	// Output:
	// edit ok: true
	// # Notes
	//
	// Final text.
}
