// Package core holds the domain model shared by every blockedit component:
// blocks, pending diffs and the documents that own them.
package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlockType is the kind of content a block carries.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockCode      BlockType = "code"
	BlockListItem  BlockType = "list-item"
)

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case BlockHeading, BlockParagraph, BlockCode, BlockListItem:
		return true
	}
	return false
}

// Block is the smallest addressable unit of a document.
// ID is stable for the lifetime of the document; Order is its dense 0-based position.
type Block struct {
	ID        string    `json:"id"`
	Type      BlockType `json:"type"`
	Content   string    `json:"content"`
	Order     int       `json:"order"`
	Level     int       `json:"level,omitempty"`
	LineStart int       `json:"lineStart,omitempty"`
	LineEnd   int       `json:"lineEnd,omitempty"`
}

// BlockSummary is the compact view returned by list_blocks.
type BlockSummary struct {
	ID      string    `json:"id"`
	Type    BlockType `json:"type"`
	Preview string    `json:"preview"`
	Order   int       `json:"order"`
}

// DiffAction is the kind of change a pending diff proposes.
type DiffAction string

const (
	ActionUpdate DiffAction = "update"
	ActionAdd    DiffAction = "add"
	ActionDelete DiffAction = "delete"
)

// StartOfDocument is the anchor used by add diffs that insert before the first block.
const StartOfDocument = "__start__"

// PendingDiff is an uncommitted change layered over the block index.
// Diffs are never mutated once created.
//
// For update and delete, BlockID is the target block. For add, BlockID is the
// block after which to insert (or StartOfDocument) and NewBlockID is the id
// pre-allocated for the inserted block.
type PendingDiff struct {
	ID         string     `json:"id"`
	BlockID    string     `json:"blockId"`
	NewBlockID string     `json:"newBlockId,omitempty"`
	Action     DiffAction `json:"action"`
	OldContent string     `json:"oldContent"`
	NewContent string     `json:"newContent"`
	Reason     string     `json:"reason"`
	DocID      string     `json:"docId,omitempty"`
}

// AddPayload is the block description carried in an add diff's NewContent.
type AddPayload struct {
	Type    BlockType `json:"type"`
	Content string    `json:"content"`
	Level   int       `json:"level,omitempty"`
}

// Encode serializes the payload for storage in PendingDiff.NewContent.
func (p AddPayload) Encode() string {
	data, err := json.Marshal(p)
	if err != nil {
		// Only strings and ints; cannot fail.
		panic(fmt.Sprintf("encode add payload: %v", err))
	}
	return string(data)
}

// DecodeAddPayload parses the NewContent of an add diff.
func DecodeAddPayload(s string) (AddPayload, error) {
	var p AddPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return AddPayload{}, fmt.Errorf("invalid add payload: %w", err)
	}
	if p.Type == "" {
		p.Type = BlockParagraph
	}
	return p, nil
}

// Metadata represents the flexible key-value pairs attached to a document (e.g. frontmatter).
type Metadata map[string]any

// Document is an editable document held by the document manager.
// Blocks is always the parse of Content.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	Blocks    []Block   `json:"blocks"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	Dirty     bool      `json:"isDirty"`
	CreatedAt time.Time `json:"createdAt"`
}

// EventType represents the type of change observed on a document source.
type EventType string

const (
	EventCreate EventType = "CREATE"
	EventModify EventType = "MODIFY"
	EventDelete EventType = "DELETE"
)

// Event represents a change in a watched document source.
type Event struct {
	Type      EventType
	ID        string
	Timestamp int64 // Unix timestamp
}

func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.ID)
}
