// Frame delivery between the capture goroutine and the processing worker
package capture

import (
	"context"
	"io"
	"sync"

	"lensflare-camera/internal/core"
)

// Slot is a single-slot overwrite buffer. A Put replaces any frame the
// consumer has not taken yet, so the consumer always sees the newest frame.
type Slot struct {
	mu      sync.Mutex
	frame   *core.Frame
	closed  bool
	ready   chan struct{}
	dropped uint64
}

func NewSlot() *Slot {
	return &Slot{ready: make(chan struct{}, 1)}
}

// Put stores f, dropping any unconsumed frame. It reports false once the
// slot is closed.
func (s *Slot) Put(f *core.Frame) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	if s.frame != nil {
		s.dropped++
	}
	s.frame = f
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return true
}

// Next blocks until a frame is available, the slot is closed and empty
// (io.EOF), or ctx is done.
func (s *Slot) Next(ctx context.Context) (*core.Frame, error) {
	for {
		s.mu.Lock()
		if f := s.frame; f != nil {
			s.frame = nil
			s.mu.Unlock()
			return f, nil
		}
		if s.closed {
			s.mu.Unlock()
			return nil, io.EOF
		}
		s.mu.Unlock()

		select {
		case <-s.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Dropped returns how many frames were overwritten before being consumed.
func (s *Slot) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close wakes any waiting consumer. A pending frame can still be taken.
func (s *Slot) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
}
