package pipeline

import (
	"sync"

	"github.com/MeKo-Tech/lumo/internal/frame"
)

// mailbox is a single-slot frame buffer between the source and the worker.
// put overwrites an unconsumed frame, releasing the old one and counting the
// drop, so the worker always sees the most recently arrived frame and the
// queue depth never exceeds one.
type mailbox struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending *frame.Raw
	closed  bool
	dropped uint64
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// put places a frame in the slot. An unconsumed previous frame is released
// and counted as dropped. Returns false (and releases the frame) when the
// mailbox is closed.
func (m *mailbox) put(f *frame.Raw) bool {
	if f == nil {
		return false
	}
	m.mu.Lock()
	if m.closed {
		m.dropped++
		m.mu.Unlock()
		f.Release()
		return false
	}
	old := m.pending
	m.pending = f
	if old != nil {
		m.dropped++
	}
	m.cond.Signal()
	m.mu.Unlock()

	if old != nil {
		old.Release()
		framesDropped.Inc()
	}
	return true
}

// take blocks until a frame is available or the mailbox closes. The second
// return is false once the mailbox is closed and drained.
func (m *mailbox) take() (*frame.Raw, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.pending == nil && !m.closed {
		m.cond.Wait()
	}
	if m.pending == nil {
		return nil, false
	}
	f := m.pending
	m.pending = nil
	return f, true
}

// close rejects future puts, releases any pending frame, and wakes the
// waiting worker. Idempotent.
func (m *mailbox) close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	pending := m.pending
	m.pending = nil
	m.cond.Broadcast()
	m.mu.Unlock()

	if pending != nil {
		pending.Release()
	}
}

// drops returns the number of frames overwritten or rejected so far.
func (m *mailbox) drops() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}
