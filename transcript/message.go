package transcript

import "encoding/json"

// Kind names a message variant.
type Kind string

const (
	KindUser       Kind = "user"
	KindToolCall   Kind = "tool_call"
	KindFinal      Kind = "final"
	KindToolResult Kind = "tool_result"
)

// Message is one entry of a run's log. The set of implementations is closed.
type Message interface {
	Kind() Kind
	isMessage()
}

// User is text supplied by the caller.
type User struct {
	Text string
}

// ToolCall records the model's request to invoke a tool.
type ToolCall struct {
	ToolName   string
	ToolArgs   json.RawMessage
	ToolCallID string
	Reasoning  string
}

// Final records the model's final answer.
type Final struct {
	Answer    string
	Reasoning string
}

// ToolResult records the outcome of a tool call. ResultText is what the
// model sees; ResultData carries the raw output, including any binary
// payloads stripped from the text, and is never serialized.
type ToolResult struct {
	ToolCallID string
	ToolName   string
	ResultText string
	ResultData any
	IsError    bool
	ErrorText  string
}

func (User) Kind() Kind       { return KindUser }
func (ToolCall) Kind() Kind   { return KindToolCall }
func (Final) Kind() Kind      { return KindFinal }
func (ToolResult) Kind() Kind { return KindToolResult }

func (User) isMessage()       {}
func (ToolCall) isMessage()   {}
func (Final) isMessage()      {}
func (ToolResult) isMessage() {}

// IsModel reports whether m was produced by the model.
func IsModel(m Message) bool {
	switch m.(type) {
	case ToolCall, Final:
		return true
	default:
		return false
	}
}
