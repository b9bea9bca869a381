package identity

import (
	"log/slog"
	"sync"

	"github.com/Champagnepapi06/olas-nigerian-kitchen/internal/session"
)

const subscriberBuffer = 16

// Broadcaster fans change notifications out to subscribers. Each subscriber
// gets its own goroutine so a slow one never blocks a sign-in.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan session.Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan session.Event)}
}

func (b *Broadcaster) Subscribe(fn func(session.Event)) func() {
	ch := make(chan session.Event, subscriberBuffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		for ev := range ch {
			fn(ev)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			close(ch)
		})
	}
}

func (b *Broadcaster) Publish(ev session.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			slog.Warn("Dropping identity event for slow subscriber", "subscriber", id, "kind", ev.Kind.String(), "seq", ev.Seq)
		}
	}
}

// Subscribers reports how many listeners are attached.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
