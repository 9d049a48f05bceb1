package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/blockedit/pkg/core"
	"github.com/aretw0/blockedit/pkg/trace"
)

// Response is the serialized result of one tool call.
// OK is false when the arguments were rejected or a mutating batch had no
// successful item.
type Response struct {
	Output string
	OK     bool
}

type errorOutput struct {
	Error string `json:"error"`
}

// Dispatch runs the named tool with raw JSON arguments.
//
// Per-item failures are part of the output and never an error. Rejected
// arguments produce an {"error": ...} output together with an error wrapping
// core.ErrInvalidArguments; an unknown tool name yields core.ErrUnknownTool.
func (t *Toolset) Dispatch(ctx context.Context, name string, raw json.RawMessage) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}

	var (
		result any
		ok     = true
	)

	switch name {
	case trace.ToolListBlocks:
		result = t.ListBlocks()

	case trace.ToolReadBlocks:
		var args ReadArgs
		if err := decodeArgs(raw, &args, func(a *ReadArgs) { a.IDs = capBatch(a.IDs, t.limits.MaxBatch) }); err != nil {
			return t.reject(name, err)
		}
		result = t.ReadBlocks(args)

	case trace.ToolEditBlocks:
		var args EditArgs
		if err := decodeArgs(raw, &args, func(a *EditArgs) { a.Edits = capBatch(a.Edits, t.limits.MaxBatch) }); err != nil {
			return t.reject(name, err)
		}
		r := t.EditBlocks(args)
		result, ok = r, r.Succeeded > 0

	case trace.ToolAddBlocks:
		var args AddArgs
		if err := decodeArgs(raw, &args, func(a *AddArgs) { a.Additions = capBatch(a.Additions, t.limits.MaxBatch) }); err != nil {
			return t.reject(name, err)
		}
		r := t.AddBlocks(args)
		result, ok = r, r.Succeeded > 0

	case trace.ToolDeleteBlocks:
		var args DeleteArgs
		if err := decodeArgs(raw, &args, func(a *DeleteArgs) { a.Deletions = capBatch(a.Deletions, t.limits.MaxBatch) }); err != nil {
			return t.reject(name, err)
		}
		r := t.DeleteBlocks(args)
		result, ok = r, r.Succeeded > 0

	default:
		return Response{}, fmt.Errorf("%w: %s", core.ErrUnknownTool, name)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode %s result: %w", name, err)
	}
	return Response{Output: string(out), OK: ok}, nil
}

// Execute is Dispatch without the status flag. The output is set whenever
// the tool name is known, even if an error is returned.
func (t *Toolset) Execute(ctx context.Context, name string, raw json.RawMessage) (string, error) {
	resp, err := t.Dispatch(ctx, name, raw)
	return resp.Output, err
}

func (t *Toolset) reject(name string, err error) (Response, error) {
	t.logger.Debug("rejected tool arguments", "tool", name, "error", err)
	out, _ := json.Marshal(errorOutput{Error: err.Error()})
	return Response{Output: string(out), OK: false}, err
}
