package channel

import (
	"errors"
	"sync"
)

// ErrClosed is returned by mock operations after Close.
var ErrClosed = errors.New("channel closed")

// Mock is an in-memory Conn for testing room logic without a server.
type Mock struct {
	mu     sync.Mutex
	queue  chan []byte
	sent   []any
	closed bool
}

// NewMock creates a mock channel.
func NewMock() *Mock {
	return &Mock{
		queue: make(chan []byte, 64),
	}
}

// Receive returns the next queued frame, blocking until one is available or
// the mock is closed.
func (m *Mock) Receive() ([]byte, error) {
	data, ok := <-m.queue
	if !ok {
		return nil, ErrClosed
	}
	return data, nil
}

// Send records the outbound message.
func (m *Mock) Send(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.sent = append(m.sent, v)
	return nil
}

// Close ends the mock; pending Receive calls return ErrClosed.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
	return nil
}

// --- Test helpers ---

// Deliver queues an inbound frame as if the server sent it.
func (m *Mock) Deliver(data []byte) {
	m.queue <- data
}

// SentMessages returns a copy of everything sent so far.
func (m *Mock) SentMessages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]any{}, m.sent...)
}

// Clear drops all recorded outbound messages.
func (m *Mock) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = m.sent[:0]
}
