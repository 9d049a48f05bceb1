package trace

import "fmt"

const (
	repeatWindow   = 3
	progressWindow = 10
)

// Tool names inspected by the detector.
const (
	ToolListBlocks   = "list_blocks"
	ToolReadBlocks   = "read_blocks"
	ToolEditBlocks   = "edit_blocks"
	ToolAddBlocks    = "add_blocks"
	ToolDeleteBlocks = "delete_blocks"
)

// Verdict is the detector's output. It is advisory only.
type Verdict struct {
	Stuck  bool   `json:"isStuck"`
	Reason string `json:"reason,omitempty"`
}

// IsMutation reports whether name is one of the document-changing tools.
func IsMutation(name string) bool {
	switch name {
	case ToolEditBlocks, ToolAddBlocks, ToolDeleteBlocks:
		return true
	}
	return false
}

// Detect inspects a trace (oldest first) and reports whether the agent
// looks stuck. Only successful calls count as repetition.
func Detect(entries []Entry) Verdict {
	if len(entries) < repeatWindow {
		return Verdict{}
	}

	last := entries[len(entries)-repeatWindow:]
	if allSuccessful(last, ToolListBlocks) {
		return repeated(ToolListBlocks)
	}
	if allSuccessful(last, ToolReadBlocks) && sameArgs(last) {
		return repeated(ToolReadBlocks)
	}

	if len(entries) >= progressWindow {
		window := entries[len(entries)-progressWindow:]
		progress := false
		for _, e := range window {
			if e.Status == StatusSuccess && IsMutation(e.Name) {
				progress = true
				break
			}
		}
		if !progress {
			return Verdict{
				Stuck:  true,
				Reason: fmt.Sprintf("%d tool calls without any edit/add/delete", progressWindow),
			}
		}
	}

	return Verdict{}
}

func allSuccessful(entries []Entry, name string) bool {
	for _, e := range entries {
		if e.Name != name || e.Status != StatusSuccess {
			return false
		}
	}
	return true
}

func sameArgs(entries []Entry) bool {
	for _, e := range entries[1:] {
		if e.Args != entries[0].Args {
			return false
		}
	}
	return true
}

func repeated(name string) Verdict {
	return Verdict{
		Stuck:  true,
		Reason: fmt.Sprintf("%s called %d times in a row with no progress", name, repeatWindow),
	}
}
