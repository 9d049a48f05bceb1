package tools

// Defaults applied by Limits.withDefaults.
const (
	DefaultMaxBatch     = 25
	DefaultMaxContent   = 50000
	DefaultContextSize  = 2
	DefaultHeadingLevel = 2
)

// Limits bounds what a single tool call may do. A zero or negative field
// selects its default, so ContextSize cannot be 0; callers that want no
// neighbours read without withContext.
type Limits struct {
	// MaxBatch is the number of items processed per call; the rest are dropped.
	MaxBatch int
	// MaxContent is the maximum content length in characters, checked per item.
	MaxContent int
	// ContextSize is the number of neighbours returned on each side by read_blocks with context.
	ContextSize int
}

func (l Limits) withDefaults() Limits {
	if l.MaxBatch <= 0 {
		l.MaxBatch = DefaultMaxBatch
	}
	if l.MaxContent <= 0 {
		l.MaxContent = DefaultMaxContent
	}
	if l.ContextSize <= 0 {
		l.ContextSize = DefaultContextSize
	}
	return l
}

func capBatch[T any](items []T, max int) []T {
	if len(items) > max {
		return items[:max]
	}
	return items
}
