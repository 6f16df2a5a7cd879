package bus

import (
	"github.com/ethereum/go-ethereum/event"

	"github.com/althash-leandro/altmask/internal/messages"
)

// Feed fans every published event out to all subscribers. Publish blocks until each
// subscriber channel has accepted the event, so subscribers must keep draining.
type Feed struct {
	feed event.Feed
}

func NewFeed() *Feed { return &Feed{} }

func (f *Feed) Publish(ev messages.Event) {
	f.feed.Send(ev)
}

func (f *Feed) Subscribe(ch chan<- messages.Event) event.Subscription {
	return f.feed.Subscribe(ch)
}
