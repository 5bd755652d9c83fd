package playback

import (
	"sync"

	"github.com/llehouerou/riptide/internal/metrics"
)

// DefaultEventBuffer is the per-subscription buffer when none is configured.
const DefaultEventBuffer = 64

// Subscription receives events published after it was created.
// When the buffer is full the oldest pending event is dropped.
type Subscription struct {
	Events <-chan Event
	// Done is closed by Close or when the player shuts down.
	Done <-chan struct{}

	// Internal write channels
	eventCh chan Event
	doneCh  chan struct{}
	b       *broadcaster
}

// Close unsubscribes. It is safe to call more than once.
func (s *Subscription) Close() {
	s.b.remove(s)
}

// broadcaster fans events out to subscriptions without ever blocking the
// publisher.
type broadcaster struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	size   int
	closed bool
}

func newBroadcaster(size int) *broadcaster {
	if size <= 0 {
		size = DefaultEventBuffer
	}
	return &broadcaster{subs: make(map[*Subscription]struct{}), size: size}
}

func (b *broadcaster) subscribe() *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, b.size),
		doneCh:  make(chan struct{}),
		b:       b,
	}
	s.Events = s.eventCh
	s.Done = s.doneCh

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(s.doneCh)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

func (b *broadcaster) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; !ok {
		return
	}
	delete(b.subs, s)
	close(s.doneCh)
}

func (b *broadcaster) publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for s := range b.subs {
		s.send(e)
	}
}

// close ends every subscription; later subscriptions start closed.
func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for s := range b.subs {
		close(s.doneCh)
	}
	clear(b.subs)
}

// send delivers e, dropping the oldest buffered event if the buffer is full.
// Only the publisher sends, under b.mu, so a freed slot stays free.
func (s *Subscription) send(e Event) {
	select {
	case s.eventCh <- e:
		return
	default:
	}

	select {
	case <-s.eventCh:
		metrics.RecordEventDropped()
	default:
		// reader drained it meanwhile
	}
	s.eventCh <- e
}
