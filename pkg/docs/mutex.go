package docs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/introspection"
)

// DefaultSwitchTimeout bounds how long one operation may hold a SwitchMutex.
const DefaultSwitchTimeout = 2 * time.Second

// Outcome reports how a lock window closed.
//
// TimedOut means the lock was force-released while the operation was still
// running; the operation may yet complete in the background and its effects
// are unconfirmed.
type Outcome struct {
	Err      error
	TimedOut bool
}

// SwitchMutex runs submitted operations one at a time in submission order.
// Each operation holds the lock until it returns, panics or exceeds the
// timeout, whichever happens first.
type SwitchMutex struct {
	timeout time.Duration

	mu     sync.Mutex
	locked bool
	queue  []*lockRequest

	completed atomic.Int64
	timedOut  atomic.Int64
}

type lockRequest struct {
	ctx  context.Context
	op   func(context.Context) error
	done chan Outcome
}

// NewSwitchMutex creates a mutex. timeout <= 0 selects DefaultSwitchTimeout.
func NewSwitchMutex(timeout time.Duration) *SwitchMutex {
	if timeout <= 0 {
		timeout = DefaultSwitchTimeout
	}
	return &SwitchMutex{timeout: timeout}
}

// WithLock submits op and returns immediately. The returned channel receives
// exactly one Outcome when op's lock window closes.
//
// ctx is handed to op unchanged; the timeout does not cancel it. An op whose
// ctx is already done when its turn comes is skipped.
func (s *SwitchMutex) WithLock(ctx context.Context, op func(context.Context) error) <-chan Outcome {
	req := &lockRequest{ctx: ctx, op: op, done: make(chan Outcome, 1)}

	s.mu.Lock()
	if s.locked {
		s.queue = append(s.queue, req)
		s.mu.Unlock()
		return req.done
	}
	s.locked = true
	s.mu.Unlock()

	go s.drain(req)
	return req.done
}

// drain runs req and then every queued request until the queue is empty.
func (s *SwitchMutex) drain(req *lockRequest) {
	for req != nil {
		req.done <- s.execute(req)
		req = s.next()
	}
}

func (s *SwitchMutex) next() *lockRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		s.locked = false
		return nil
	}
	req := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return req
}

func (s *SwitchMutex) execute(req *lockRequest) Outcome {
	defer s.completed.Add(1)

	if err := req.ctx.Err(); err != nil {
		return Outcome{Err: err}
	}

	settled := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("switch operation panicked: %v", p)
			}
			settled <- err
		}()
		err = req.op(req.ctx)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case err := <-settled:
		return Outcome{Err: err}
	case <-timer.C:
		s.timedOut.Add(1)
		return Outcome{TimedOut: true}
	}
}

// Locked reports whether an operation currently holds the lock.
func (s *SwitchMutex) Locked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Pending returns the number of queued operations.
func (s *SwitchMutex) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *SwitchMutex) Timeout() time.Duration {
	return s.timeout
}

// MutexState exposes internal state for observability.
type MutexState struct {
	Locked    bool   `json:"locked"`
	Pending   int    `json:"pending"`
	Timeout   string `json:"timeout"`
	Completed int64  `json:"completed"`
	TimedOut  int64  `json:"timed_out"`
}

// State implements introspection.Introspectable.
func (s *SwitchMutex) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return MutexState{
		Locked:    s.locked,
		Pending:   len(s.queue),
		Timeout:   s.timeout.String(),
		Completed: s.completed.Load(),
		TimedOut:  s.timedOut.Load(),
	}
}

// ComponentType implements introspection.Component.
func (s *SwitchMutex) ComponentType() string {
	return "switch-mutex"
}

var _ introspection.Introspectable = (*SwitchMutex)(nil)
var _ introspection.Component = (*SwitchMutex)(nil)
