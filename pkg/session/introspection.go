package session

import (
	"github.com/aretw0/introspection"

	"github.com/aretw0/blockedit/pkg/docs"
	"github.com/aretw0/blockedit/pkg/guard"
)

// SessionState exposes internal state for observability.
type SessionState struct {
	ActiveDocument string            `json:"active_document"`
	Documents      docs.ManagerState `json:"documents"`
	PendingDiffs   map[string]int    `json:"pending_diffs"`
	Guard          guard.ReadState   `json:"guard"`
	IndexedBlocks  int               `json:"indexed_blocks"`
	CachedReads    int               `json:"cached_reads"`
	TraceEntries   int               `json:"trace_entries"`
	Switch         docs.MutexState   `json:"switch"`
}

// State implements introspection.Introspectable.
func (s *Session) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]int, len(s.diffs))
	for id, d := range s.diffs {
		pending[id] = len(d.Pending())
	}

	st := SessionState{
		ActiveDocument: s.manager.ActiveID(),
		PendingDiffs:   pending,
		Guard:          s.guard.State(),
		IndexedBlocks:  s.index.Len(),
		CachedReads:    s.cache.Len(),
		TraceEntries:   s.recorder.Buffer().Len(),
	}
	if ms, ok := s.manager.State().(docs.ManagerState); ok {
		st.Documents = ms
	}
	if ms, ok := s.lock.State().(docs.MutexState); ok {
		st.Switch = ms
	}
	return st
}

// ComponentType implements introspection.Component.
func (s *Session) ComponentType() string {
	return "session"
}

var _ introspection.Introspectable = (*Session)(nil)
var _ introspection.Component = (*Session)(nil)
