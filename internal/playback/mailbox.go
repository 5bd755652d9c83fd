package playback

import (
	"sync"

	"github.com/llehouerou/riptide/internal/errmsg"
)

// mailbox is an unbounded FIFO of commands with many senders and a single
// receiver. Senders never block.
type mailbox struct {
	mu     sync.Mutex
	queue  []command
	closed bool

	// wake holds at most one pending signal; the receiver drains the whole
	// queue on each signal.
	wake chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) send(c command) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errmsg.ErrChannelClosed
	}
	m.queue = append(m.queue, c)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	return nil
}

// take removes and returns every queued command in arrival order.
func (m *mailbox) take() []command {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := m.queue
	m.queue = nil
	return q
}

// close rejects further sends and returns whatever was still queued.
func (m *mailbox) close() []command {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	q := m.queue
	m.queue = nil
	return q
}
