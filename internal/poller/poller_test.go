package poller_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/bus/bustest"
	"github.com/althash-leandro/altmask/internal/poller"
	"github.com/althash-leandro/altmask/internal/shared"
)

// registry records refreshes; it is only touched on the loop.
type registry struct {
	tokens   []shared.Token
	refresh  []string
	currents []func() bool
}

func (r *registry) Tokens() []shared.Token { return r.tokens }

func (r *registry) RefreshBalance(t shared.Token, current func() bool) {
	r.refresh = append(r.refresh, t.Symbol)
	r.currents = append(r.currents, current)
}

func newRegistry() *registry {
	return &registry{tokens: []shared.Token{
		shared.NewToken("Alpha", "AAA", 8, "0000000000000000000000000000000000000001"),
		shared.NewToken("Beta", "BBB", 18, "0000000000000000000000000000000000000002"),
	}}
}

func on(t *testing.T, loop *bus.Loop, fn func()) {
	t.Helper()
	require.NoError(t, loop.Do(context.Background(), fn))
}

func TestStart_RunsCycleImmediately(t *testing.T) {
	loop := bustest.Start(t)
	reg := newRegistry()
	p := poller.New(loop, reg, time.Hour)

	on(t, loop, p.Start)

	on(t, loop, func() {
		assert.True(t, p.Running())
		assert.Equal(t, uint64(1), p.Cycles())
		assert.Equal(t, []string{"AAA", "BBB"}, reg.refresh)
		assert.True(t, reg.currents[0]())
	})
	on(t, loop, p.Stop)
}

func TestStart_IsIdempotent(t *testing.T) {
	loop := bustest.Start(t)
	reg := newRegistry()
	p := poller.New(loop, reg, time.Hour)

	on(t, loop, p.Start)
	on(t, loop, p.Start)

	on(t, loop, func() {
		assert.True(t, p.Running())
		assert.Equal(t, uint64(2), p.Cycles())
		p.Stop()
		assert.False(t, p.Running())
	})
}

func TestTimerCycles(t *testing.T) {
	loop := bustest.Start(t)
	p := poller.New(loop, newRegistry(), 10*time.Millisecond)

	on(t, loop, p.Start)
	assert.Eventually(t, func() bool {
		var n uint64
		_ = loop.Do(context.Background(), func() { n = p.Cycles() })
		return n >= 3
	}, 2*time.Second, 5*time.Millisecond)
	on(t, loop, p.Stop)
}

func TestStop_InvalidatesInFlightCycles(t *testing.T) {
	loop := bustest.Start(t)
	reg := newRegistry()
	p := poller.New(loop, reg, time.Hour)

	on(t, loop, p.Start)
	on(t, loop, p.Stop)

	on(t, loop, func() {
		require.NotEmpty(t, reg.currents)
		for _, current := range reg.currents {
			assert.False(t, current())
		}
	})
}

func TestStop_NoTicksAfterStop(t *testing.T) {
	loop := bustest.Start(t)
	p := poller.New(loop, newRegistry(), 5*time.Millisecond)

	on(t, loop, p.Start)
	on(t, loop, p.Stop)
	var before uint64
	on(t, loop, func() { before = p.Cycles() })

	time.Sleep(50 * time.Millisecond)
	on(t, loop, func() { assert.Equal(t, before, p.Cycles()) })
}

func TestStopWhenStopped(t *testing.T) {
	loop := bustest.Start(t)
	p := poller.New(loop, newRegistry(), time.Hour)

	on(t, loop, func() {
		p.Stop()
		assert.False(t, p.Running())
		assert.Zero(t, p.Cycles())
	})
}
