// Package poller refreshes token balances on a fixed interval.
package poller

import (
	"context"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/althash-leandro/altmask/internal/bus"
	"github.com/althash-leandro/altmask/internal/constants"
	"github.com/althash-leandro/altmask/internal/shared"
)

type Registry interface {
	Tokens() []shared.Token
	RefreshBalance(token shared.Token, current func() bool)
}

// Poller is Stopped or Running. Start and Stop run on the loop; the timer goroutine only
// posts cycles to it.
type Poller struct {
	loop     *bus.Loop
	registry Registry
	interval time.Duration

	running    bool
	generation uint64
	cancel     context.CancelFunc
	cycles     uint64
}

func New(loop *bus.Loop, registry Registry, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = constants.GetBalancesInterval
	}
	return &Poller{loop: loop, registry: registry, interval: interval}
}

func (p *Poller) Running() bool { return p.running }

// Cycles counts the cycles started so far.
func (p *Poller) Cycles() uint64 { return p.cycles }

// Start runs a cycle now and arms the timer unless it is already armed.
func (p *Poller) Start() {
	p.cycle()
	if p.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.running = true
	p.cancel = cancel
	go p.tick(ctx, p.generation)
	log.Info("poller: started", "interval", p.interval)
}

// Stop disarms the timer. Balances still in flight from earlier cycles are dropped on arrival.
func (p *Poller) Stop() {
	p.generation++
	if !p.running {
		return
	}
	p.cancel()
	p.cancel = nil
	p.running = false
	log.Info("poller: stopped", "cycles", p.cycles)
}

func (p *Poller) tick(ctx context.Context, gen uint64) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			p.loop.Post(func() {
				if gen == p.generation {
					p.cycle()
				}
			})
			timer.Reset(p.interval)
		}
	}
}

func (p *Poller) cycle() {
	p.cycles++
	gen := p.generation
	current := func() bool { return gen == p.generation }
	for _, t := range p.registry.Tokens() {
		p.registry.RefreshBalance(t, current)
	}
}
