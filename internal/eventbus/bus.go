package eventbus

import "sync"

// Bus fans out Events to every subscriber. Publish never blocks on a slow
// handler: each subscriber gets its own buffered channel and a goroutine
// draining it, so a stalled consumer only loses events once its own buffer
// is full, and never stalls the producer or other consumers.
type Bus struct {
	mu   sync.RWMutex
	subs []*subscription
}

type subscription struct {
	ch     chan Event
	closed chan struct{}
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers handler to be called for every future Event.
// The returned func unsubscribes; call it to stop receiving events.
func Subscribe(b *Bus, handler func(Event)) func() {
	sub := &subscription{
		ch:     make(chan Event, 64),
		closed: make(chan struct{}),
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	go func() {
		for {
			select {
			case ev := <-sub.ch:
				handler(ev)
			case <-sub.closed:
				return
			}
		}
	}()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s == sub {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		close(sub.closed)
	}
}

// Publish delivers ev to every current subscriber. Non-blocking: a
// subscriber whose buffer is full drops the event rather than stalling the
// publisher, per the fire-and-forget policy of spec §5.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.ch <- ev:
		default:
		}
	}
}
