package game

import "sync"

// mailbox is an unbounded queue with a single consumer. Push never blocks,
// which lets the dealer post messages to a player without waiting on it.
type mailbox[T any] struct {
	mu     sync.Mutex
	items  []T
	notify chan struct{}
}

func newMailbox[T any]() *mailbox[T] {
	return &mailbox[T]{notify: make(chan struct{}, 1)}
}

func (m *mailbox[T]) push(item T) {
	m.mu.Lock()
	m.items = append(m.items, item)
	m.mu.Unlock()

	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// drain takes everything queued so far, in push order
func (m *mailbox[T]) drain() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items
	m.items = nil
	return items
}

// ready is signalled at least once after every push
func (m *mailbox[T]) ready() <-chan struct{} {
	return m.notify
}
