package storage

import (
	"context"
	"encoding/json"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
)

// Queue runs every store operation on its own goroutine in submission order, so a
// read never overtakes an earlier write. Set is fire-and-forget.
type Queue struct {
	store Store
	loop  *bus.Loop
}

func NewQueue(store Store) *Queue {
	return &Queue{store: store, loop: bus.NewLoop()}
}

// Run processes queued operations until ctx is cancelled.
func (q *Queue) Run(ctx context.Context) error {
	return q.loop.Run(ctx)
}

// Pending is the eventual result of a Get.
type Pending struct {
	done   chan struct{}
	values map[string][]byte
	err    error
}

func (p *Pending) Done() <-chan struct{} { return p.done }

func (p *Pending) Wait(ctx context.Context) (map[string][]byte, error) {
	select {
	case <-p.done:
		return p.values, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Get enqueues a read of keys behind every write submitted so far.
func (q *Queue) Get(keys ...string) *Pending {
	p := &Pending{done: make(chan struct{})}
	ok := q.loop.Post(func() {
		defer close(p.done)
		p.values, p.err = q.store.Get(context.Background(), keys...)
	})
	if !ok {
		p.err = bus.ErrClosed
		close(p.done)
	}
	return p
}

// Set snapshots values as JSON now and writes them later. Failures are logged.
func (q *Queue) Set(values map[string]any) {
	raw := make(map[string][]byte, len(values))
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			log.Error("storage: marshal value", "key", k, "error", err)
			return
		}
		raw[k] = b
	}

	if !q.loop.Post(func() {
		if err := q.store.Set(context.Background(), raw); err != nil {
			log.Error("storage: write failed", "keys", keysOf(raw), "error", err)
		}
	}) {
		log.Warn("storage: write dropped, queue stopped", "keys", keysOf(raw))
	}
}

// Flush waits until every operation submitted before the call has completed.
func (q *Queue) Flush(ctx context.Context) error {
	return q.loop.Do(ctx, func() {})
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
