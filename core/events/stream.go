package events

import (
	"sync"

	"swapdex/core/types"
)

const subscriberBuffer = 64

// Broadcaster fans emitted events out to live subscribers. A slow consumer
// never blocks the engine; events beyond a subscriber's buffer are dropped.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan *types.Event]struct{}
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan *types.Event]struct{})}
}

// Subscribe registers a live event channel. The cancel function must be called
// when the consumer goes away.
func (b *Broadcaster) Subscribe() (<-chan *types.Event, func()) {
	ch := make(chan *types.Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch, func() {
		b.mu.Lock()
		delete(b.subs, ch)
		b.mu.Unlock()
	}
}

// Emit implements the Emitter interface.
func (b *Broadcaster) Emit(evt Event) {
	src, ok := evt.(attributed)
	if !ok {
		return
	}
	rendered := src.Event()
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- rendered:
		default:
		}
	}
}
