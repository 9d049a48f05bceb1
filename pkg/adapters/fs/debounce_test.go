package fs

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/blockedit/pkg/core"
)

func TestDebouncer_SupersededTimerDoesNotDeliver(t *testing.T) {
	d := newDebouncer(time.Hour)

	var (
		mu        sync.Mutex
		delivered []core.Event
	)
	deliver := func(e core.Event) {
		mu.Lock()
		delivered = append(delivered, e)
		mu.Unlock()
	}

	first := core.Event{Type: core.EventModify, ID: "a.md", Timestamp: 1}
	second := core.Event{Type: core.EventModify, ID: "a.md", Timestamp: 2}

	d.add(first, deliver)
	d.mu.Lock()
	stale := d.timers["a.md"]
	d.mu.Unlock()
	d.add(second, deliver)

	// The first timer fired just before being replaced and only now got the lock.
	d.wg.Add(1)
	d.fire(first, stale, deliver)
	assert.Empty(t, delivered)

	d.mu.Lock()
	current := d.timers["a.md"]
	d.mu.Unlock()
	require.NotNil(t, current)
	require.NotSame(t, stale, current)

	require.True(t, current.Stop())
	d.fire(second, current, deliver)
	assert.Equal(t, []core.Event{second}, delivered)

	d.mu.Lock()
	assert.Empty(t, d.timers)
	d.mu.Unlock()
	d.stopAndWait()
}

func TestDebouncer_DeliversLastEvent(t *testing.T) {
	d := newDebouncer(10 * time.Millisecond)
	got := make(chan core.Event, 4)

	for i := range 3 {
		d.add(core.Event{Type: core.EventModify, ID: "a.md", Timestamp: int64(i)}, func(e core.Event) { got <- e })
	}

	select {
	case e := <-got:
		assert.Equal(t, int64(2), e.Timestamp)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
	d.stopAndWait()
	assert.Empty(t, got)
}
