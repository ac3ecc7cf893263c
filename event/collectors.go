package event

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// DefaultBuffer is the capacity used by NewChannel.
const DefaultBuffer = 100

// Channel forwards events to a buffered channel without blocking. Events
// are dropped when the buffer is full.
type Channel struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewChannel creates a Channel with the given buffer size, or DefaultBuffer
// when size is not positive.
func NewChannel(size int) *Channel {
	if size <= 0 {
		size = DefaultBuffer
	}
	return &Channel{ch: make(chan Event, size)}
}

// Collect sends e unless the buffer is full.
func (c *Channel) Collect(_ context.Context, e Event) {
	select {
	case c.ch <- e:
	default:
		c.dropped.Add(1)
	}
}

// Events returns the receive side.
func (c *Channel) Events() <-chan Event { return c.ch }

// Dropped returns how many events were discarded.
func (c *Channel) Dropped() int64 { return c.dropped.Load() }

// Close closes the channel. Collect must not be called afterwards.
func (c *Channel) Close() { close(c.ch) }

// Multi fans events out to several collectors in order.
type Multi []Collector

// Collect forwards e to every non-nil collector.
func (m Multi) Collect(ctx context.Context, e Event) {
	for _, c := range m {
		if c != nil {
			c.Collect(ctx, e)
		}
	}
}

// Logger writes events to a slog.Logger. Start events log at Debug; end
// events log at Info, or Warn when they carry an error.
type Logger struct {
	L *slog.Logger
}

// NewLogger returns a Logger writing to l, or slog.Default() when l is nil.
func NewLogger(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{L: l}
}

// Collect logs e.
func (l *Logger) Collect(ctx context.Context, e Event) {
	attrs := []slog.Attr{
		slog.String("event_id", e.ID),
		slog.String("run_id", e.RunID),
		slog.String("agent", e.Agent),
		slog.Int("iteration", e.Iteration),
		slog.String("name", e.Name),
	}
	level := slog.LevelDebug
	if e.Ended() {
		level = slog.LevelInfo
		attrs = append(attrs, slog.Duration("duration", e.Duration()))
	}
	if e.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}
	for k, v := range e.Metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.L.LogAttrs(ctx, level, string(e.Type), attrs...)
}
