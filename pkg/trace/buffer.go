// Package trace records the tool calls an agent makes and flags call
// patterns that indicate the agent is looping without making progress.
package trace

import (
	"sync"
	"time"
)

// DefaultCapacity is the number of entries kept by NewBuffer(0).
const DefaultCapacity = 30

// Status is the outcome of a tool call.
type Status string

const (
	StatusCalling Status = "calling"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Entry is one executed tool call. Args holds the serialized arguments.
type Entry struct {
	Name      string    `json:"name"`
	Args      string    `json:"args"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Buffer is a fixed-capacity ring of entries; the oldest is evicted first.
type Buffer struct {
	mu      sync.Mutex
	entries []Entry
	start   int
	size    int
}

// NewBuffer creates a ring buffer. capacity <= 0 selects DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Entry, capacity)}
}

// Cap returns the buffer capacity.
func (b *Buffer) Cap() int {
	return len(b.entries)
}

// Len returns the number of stored entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Add appends an entry, evicting the oldest when full.
func (b *Buffer) Add(e Entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	if b.size < len(b.entries) {
		b.entries[(b.start+b.size)%len(b.entries)] = e
		b.size++
		return
	}
	b.entries[b.start] = e
	b.start = (b.start + 1) % len(b.entries)
}

// Recent returns the last n entries, oldest first. n <= 0 returns everything.
func (b *Buffer) Recent(n int) []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n <= 0 || n > b.size {
		n = b.size
	}
	out := make([]Entry, n)
	skip := b.size - n
	for i := 0; i < n; i++ {
		out[i] = b.entries[(b.start+skip+i)%len(b.entries)]
	}
	return out
}

// Clear drops all entries.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.start, b.size = 0, 0
}
