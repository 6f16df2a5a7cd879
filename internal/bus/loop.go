// Package bus provides the single logical thread every controller runs on, and the
// broadcast feed that carries events to UI listeners.
package bus

import (
	"context"
	"errors"
	"sync"

	"github.com/quantumauth-io/quantum-go-utils/log"
)

var ErrClosed = errors.New("bus: loop closed")

// Loop runs posted closures one at a time, in order, on a single goroutine.
// State owned by controllers is only touched from inside those closures.
type Loop struct {
	mu      sync.Mutex
	idle    *sync.Cond
	queue   []func()
	pending int // queued closures + outstanding Go work
	closed  bool
	wake    chan struct{}
}

func NewLoop() *Loop {
	l := &Loop{wake: make(chan struct{}, 1)}
	l.idle = sync.NewCond(&l.mu)
	return l
}

// Post enqueues fn. It never blocks and reports false once the loop has stopped.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.pending++
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it to finish. Calling Do from inside the loop deadlocks.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrClosed
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run executes posted closures until ctx is cancelled. Anything still queued is dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer l.close()

	for {
		fn, ok := l.next()
		if !ok {
			select {
			case <-l.wake:
				continue
			case <-ctx.Done():
				return nil
			}
		}
		if ctx.Err() != nil {
			l.release(1)
			return nil
		}
		l.run(fn)
		l.release(1)
	}
}

// Wait blocks until the queue is empty and no Go work is outstanding.
func (l *Loop) Wait() {
	l.mu.Lock()
	for l.pending > 0 {
		l.idle.Wait()
	}
	l.mu.Unlock()
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("bus: recovered panic in loop task", "panic", r)
		}
	}()
	fn()
}

func (l *Loop) acquire() {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()
}

func (l *Loop) release(n int) {
	l.mu.Lock()
	l.pending -= n
	if l.pending <= 0 {
		l.pending = 0
		l.idle.Broadcast()
	}
	l.mu.Unlock()
}

func (l *Loop) close() {
	l.mu.Lock()
	l.closed = true
	dropped := len(l.queue)
	l.queue = nil
	l.mu.Unlock()
	if dropped > 0 {
		log.Warn("bus: loop stopped with queued tasks", "dropped", dropped)
	}
	l.release(dropped)
}
