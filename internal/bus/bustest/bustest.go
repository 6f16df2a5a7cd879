// Package bustest runs a bus.Loop for the lifetime of a test.
package bustest

import (
	"context"
	"sync"
	"testing"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/messages"
)

func Start(t testing.TB) *bus.Loop {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	loop := bus.NewLoop()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return loop
}

// Recorder is a Broadcaster that keeps every published event.
type Recorder struct {
	mu     sync.Mutex
	events []messages.Event
}

func (r *Recorder) Publish(ev messages.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *Recorder) Events() []messages.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]messages.Event(nil), r.events...)
}

func (r *Recorder) OfType(t messages.Type) []messages.Event {
	var out []messages.Event
	for _, ev := range r.Events() {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

func (r *Recorder) Last(t messages.Type) (messages.Event, bool) {
	evs := r.OfType(t)
	if len(evs) == 0 {
		return messages.Event{}, false
	}
	return evs[len(evs)-1], true
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
