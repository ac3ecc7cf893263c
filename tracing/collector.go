package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/spetersoncode/baton/event"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// maxAttrLen truncates input and output attributes.
const maxAttrLen = 4096

var spanNames = map[event.Type]string{
	event.RunStart:        "agent.run",
	event.RunEnd:          "agent.run",
	event.GenerationStart: "model.generate",
	event.GenerationEnd:   "model.generate",
	event.ToolStart:       "tool.execute",
	event.ToolEnd:         "tool.execute",
}

type openSpan struct {
	ctx  context.Context
	span trace.Span
}

// Collector is an event.Collector that records one span per operation.
// Events with a ParentID nest under that operation's span; handoffs become
// span events on the enclosing run.
type Collector struct {
	tracer trace.Tracer

	mu    sync.Mutex
	spans map[string]openSpan
}

// NewCollector creates a Collector using tracer.
func NewCollector(tracer trace.Tracer) *Collector {
	return &Collector{tracer: tracer, spans: make(map[string]openSpan)}
}

// Collect starts or ends the span for e.
func (c *Collector) Collect(ctx context.Context, e event.Event) {
	if e.Type == event.Handoff {
		c.handoff(e)
		return
	}
	name, ok := spanNames[e.Type]
	if !ok {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s, open := c.spans[e.ID]
	if !open {
		parent := ctx
		if p, ok := c.spans[e.ParentID]; ok {
			parent = p.ctx
		}
		spanCtx, span := c.tracer.Start(parent, name,
			trace.WithTimestamp(e.StartTime),
			trace.WithAttributes(
				attribute.String("baton.run_id", e.RunID),
				attribute.String("baton.agent", e.Agent),
				attribute.Int("baton.iteration", e.Iteration),
				attribute.String("baton.name", e.Name),
			),
		)
		s = openSpan{ctx: spanCtx, span: span}
		if e.Input != nil {
			span.SetAttributes(attribute.String("baton.input", encode(e.Input)))
		}
	}

	if !e.Ended() {
		c.spans[e.ID] = s
		return
	}

	delete(c.spans, e.ID)
	if e.Output != nil {
		s.span.SetAttributes(attribute.String("baton.output", encode(e.Output)))
	}
	setMetadata(s.span, e.Metadata)
	if e.Error != nil {
		s.span.RecordError(e.Error)
		s.span.SetStatus(codes.Error, e.Error.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End(trace.WithTimestamp(e.EndTime))
}

func (c *Collector) handoff(e event.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.spans[e.ParentID]
	if !ok {
		return
	}
	p.span.AddEvent("handoff", trace.WithTimestamp(e.StartTime), trace.WithAttributes(
		attribute.String("baton.from", e.Agent),
		attribute.String("baton.to", e.Name),
	))
}

// Open returns the number of spans started but not yet ended.
func (c *Collector) Open() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.spans)
}

func setMetadata(span trace.Span, md map[string]any) {
	for k, v := range md {
		key := "baton." + k
		switch val := v.(type) {
		case string:
			span.SetAttributes(attribute.String(key, val))
		case int:
			span.SetAttributes(attribute.Int(key, val))
		case int64:
			span.SetAttributes(attribute.Int64(key, val))
		case float64:
			span.SetAttributes(attribute.Float64(key, val))
		case bool:
			span.SetAttributes(attribute.Bool(key, val))
		default:
			span.SetAttributes(attribute.String(key, fmt.Sprint(val)))
		}
	}
}

func encode(v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case json.RawMessage:
		s = string(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			s = fmt.Sprint(val)
		} else {
			s = string(b)
		}
	}
	if len(s) > maxAttrLen {
		n := maxAttrLen
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n] + "...(truncated)"
	}
	return s
}
