package tool

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultBinaryFields are the field names whose values never appear in
// the transcript text.
var DefaultBinaryFields = []string{"imageData", "image_data", "image", "screenshot", "base64", "binary"}

// DefaultMaxInlineBase64 is the length above which a string that looks like
// base64 is treated as a binary payload.
const DefaultMaxInlineBase64 = 2048

var base64Pattern = regexp.MustCompile(`^[A-Za-z0-9+/=\r\n_-]+$`)

// Renderer produces the transcript text for a tool outcome.
type Renderer struct {
	binaryFields map[string]bool
	maxBase64    int
}

// RenderOption configures a Renderer.
type RenderOption func(*Renderer)

// WithBinaryFields replaces the set of field names stripped from the text.
// Matching is case-insensitive.
func WithBinaryFields(names ...string) RenderOption {
	return func(r *Renderer) {
		r.binaryFields = make(map[string]bool, len(names))
		for _, n := range names {
			r.binaryFields[strings.ToLower(n)] = true
		}
	}
}

// WithMaxInlineBase64 sets the length above which base64-looking strings
// are stripped. Zero or less disables the check.
func WithMaxInlineBase64(n int) RenderOption {
	return func(r *Renderer) {
		r.maxBase64 = n
	}
}

// NewRenderer creates a Renderer with the default binary field set.
func NewRenderer(opts ...RenderOption) *Renderer {
	r := &Renderer{maxBase64: DefaultMaxInlineBase64}
	WithBinaryFields(DefaultBinaryFields...)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render returns the text shown to the model and the raw data kept for
// callers. Failures render as their message. Successes render as canonical
// JSON (object keys sorted) with binary payloads removed; plain string
// outputs are used verbatim.
func (r *Renderer) Render(o Outcome) (text string, data any) {
	if o.Failed() {
		return o.Message(), o.Data
	}
	return r.text(o.Data), o.Data
}

func (r *Renderer) text(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		if r.isBinaryString(v) {
			return ""
		}
		return v
	case json.RawMessage:
		return r.textFromJSON(v)
	case []byte:
		return r.textFromJSON(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "unserializable tool output"
	}
	return r.textFromJSON(data)
}

func (r *Renderer) textFromJSON(data []byte) string {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return string(data)
	}
	tree, _ = r.strip(tree)
	out, err := json.Marshal(tree)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// strip removes binary payloads from a decoded JSON tree. The boolean is
// false when the value itself is a binary payload.
func (r *Renderer) strip(v any) (any, bool) {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			if r.binaryFields[strings.ToLower(k)] {
				continue
			}
			if kept, ok := r.strip(child); ok {
				out[k] = kept
			}
		}
		return out, true
	case []any:
		out := make([]any, 0, len(v))
		for _, child := range v {
			if kept, ok := r.strip(child); ok {
				out = append(out, kept)
			}
		}
		return out, true
	case string:
		return v, !r.isBinaryString(v)
	default:
		return v, true
	}
}

func (r *Renderer) isBinaryString(s string) bool {
	if strings.HasPrefix(s, "data:") && strings.Contains(s[:min(len(s), 100)], ";base64,") {
		return true
	}
	return r.maxBase64 > 0 && len(s) > r.maxBase64 && base64Pattern.MatchString(s)
}
