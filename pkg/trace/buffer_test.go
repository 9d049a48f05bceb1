package trace

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_EvictsOldest(t *testing.T) {
	b := NewBuffer(3)
	for i := 0; i < 5; i++ {
		b.Add(Entry{Name: fmt.Sprintf("call-%d", i), Status: StatusSuccess})
	}

	require.Equal(t, 3, b.Len())
	got := b.Recent(0)
	assert.Equal(t, []string{"call-2", "call-3", "call-4"}, names(got))

	last := b.Recent(2)
	assert.Equal(t, []string{"call-3", "call-4"}, names(last))

	assert.Len(t, b.Recent(10), 3)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestBuffer_DefaultCapacityAndClear(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, DefaultCapacity, b.Cap())

	b.Add(Entry{Name: "x"})
	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Recent(0))
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}
