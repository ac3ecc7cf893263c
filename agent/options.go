package agent

import (
	"log/slog"

	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/tool"
)

// DefaultMaxHandoffDepth bounds handoff chains and nested agent tools.
const DefaultMaxHandoffDepth = 8

type options struct {
	collector event.Collector
	logger    *slog.Logger
	renderer  *tool.Renderer
	maxDepth  int
	runID     string
}

// Option configures a Runner or a single run. Options passed to Run
// override those passed to NewRunner.
type Option func(*options)

// WithCollector sets the event collector. Nil disables events.
func WithCollector(c event.Collector) Option {
	return func(o *options) {
		o.collector = event.OrNop(c)
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRenderer sets how tool outcomes become transcript text.
func WithRenderer(r *tool.Renderer) Option {
	return func(o *options) {
		if r != nil {
			o.renderer = r
		}
	}
}

// WithMaxHandoffDepth bounds how many handoffs one run may chain.
// Default is DefaultMaxHandoffDepth.
func WithMaxHandoffDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}

// WithRunID sets the run ID instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

func defaultOptions() options {
	return options{
		collector: event.Nop{},
		logger:    slog.Default(),
		renderer:  tool.NewRenderer(),
		maxDepth:  DefaultMaxHandoffDepth,
	}
}
