package tools

import (
	"encoding/json"

	"github.com/aretw0/blockedit/pkg/trace"
)

// Definition describes a tool to an LLM provider.
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Definitions returns the schemas of the five block tools.
func Definitions() []Definition {
	return []Definition{
		{
			Name:        trace.ToolListBlocks,
			Description: "List every block of the active document with its id, type and a short preview. Call this before making changes.",
			Parameters:  json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
		},
		{
			Name:        trace.ToolReadBlocks,
			Description: "Read the full current content of blocks, including pending changes. A block must be read before it can be edited or deleted.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"ids": {"type": "array", "items": {"type": "string"}, "maxItems": 25, "description": "Block ids to read"},
					"withContext": {"type": "boolean", "description": "Also return neighbouring blocks"}
				},
				"required": ["ids"]
			}`),
		},
		{
			Name:        trace.ToolEditBlocks,
			Description: "Propose new content for existing blocks. Changes stay pending until accepted.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"edits": {
						"type": "array",
						"maxItems": 25,
						"items": {
							"type": "object",
							"properties": {
								"blockId": {"type": "string"},
								"content": {"type": "string"},
								"reason": {"type": "string"}
							},
							"required": ["blockId", "content"]
						}
					}
				},
				"required": ["edits"]
			}`),
		},
		{
			Name:        trace.ToolAddBlocks,
			Description: "Propose new blocks. The first addition goes after afterBlockId (or at the start when it is empty or \"__start__\"); each following addition goes after the previous one.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"additions": {
						"type": "array",
						"maxItems": 25,
						"items": {
							"type": "object",
							"properties": {
								"afterBlockId": {"type": "string"},
								"type": {"type": "string", "enum": ["heading", "paragraph", "code", "list-item"]},
								"content": {"type": "string"},
								"level": {"type": "integer", "minimum": 1, "maximum": 6},
								"reason": {"type": "string"}
							},
							"required": ["content"]
						}
					}
				},
				"required": ["additions"]
			}`),
		},
		{
			Name:        trace.ToolDeleteBlocks,
			Description: "Propose removing blocks. Each block must have been read first.",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"deletions": {
						"type": "array",
						"maxItems": 25,
						"items": {
							"type": "object",
							"properties": {
								"blockId": {"type": "string"},
								"reason": {"type": "string"}
							},
							"required": ["blockId"]
						}
					}
				},
				"required": ["deletions"]
			}`),
		},
	}
}
