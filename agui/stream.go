package agui

import (
	"context"
	"sync"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/event"
)

// Stream is an event.Collector that maps baton events through a Mapper and
// delivers the AG-UI events on a channel. Sends block until the reader
// takes the event or the run's context ends, so no event is dropped.
type Stream struct {
	mu     sync.Mutex
	mapper *Mapper
	ch     chan events.Event
	closed bool
}

// NewStream creates a stream with the given channel buffer size.
func NewStream(m *Mapper, size int) *Stream {
	return &Stream{mapper: m, ch: make(chan events.Event, max(size, 0))}
}

// Collect implements event.Collector.
func (s *Stream) Collect(ctx context.Context, e event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for _, ev := range s.mapper.MapEvent(e) {
		select {
		case s.ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Events returns the AG-UI event channel. It is closed by Close.
func (s *Stream) Events() <-chan events.Event { return s.ch }

// Close closes the event channel. Later events are discarded.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
