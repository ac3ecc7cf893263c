package transcript

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	ai "github.com/spetersoncode/baton"
)

// ErrUnpairedToolCall is returned by CheckPairing when a ToolCall is not
// answered by exactly one matching ToolResult.
var ErrUnpairedToolCall = errors.New("transcript: unpaired tool call")

// Log is an append-only, ordered sequence of messages.
type Log struct {
	mu       sync.RWMutex
	messages []Message
}

// NewLog creates a log holding a copy of msgs.
func NewLog(msgs ...Message) *Log {
	return &Log{messages: slices.Clone(msgs)}
}

// Append adds messages to the end of the log.
func (l *Log) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msgs...)
}

// Messages returns a copy of all messages.
func (l *Log) Messages() []Message {
	if l == nil {
		return nil
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.messages)
}

// Len returns the number of messages.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// At returns the message at index i.
func (l *Log) At(i int) Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.messages[i]
}

// Last returns the final message, if any.
func (l *Log) Last() (Message, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.messages) == 0 {
		return nil, false
	}
	return l.messages[len(l.messages)-1], true
}

// Clone returns an independent copy of the log.
func (l *Log) Clone() *Log {
	return NewLog(l.Messages()...)
}

// Since returns a new log holding the messages from index i onwards.
func (l *Log) Since(i int) *Log {
	msgs := l.Messages()
	if i >= len(msgs) {
		return NewLog()
	}
	return NewLog(msgs[max(i, 0):]...)
}

// Concat returns a new log holding the messages of each log in order.
func Concat(logs ...*Log) *Log {
	out := NewLog()
	for _, l := range logs {
		out.messages = append(out.messages, l.Messages()...)
	}
	return out
}

// ToProviderFormat maps every message to the provider wire shape. The
// mapping is deterministic: User becomes a user message, ToolCall an
// assistant message carrying one tool invocation, Final an assistant text
// message and ToolResult a tool message keyed by its ToolCallID.
func (l *Log) ToProviderFormat() []ai.Message {
	msgs := l.Messages()
	out := make([]ai.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m := m.(type) {
		case User:
			out = append(out, ai.Message{Role: ai.RoleUser, Content: m.Text})
		case ToolCall:
			args := string(m.ToolArgs)
			if args == "" {
				args = "{}"
			}
			out = append(out, ai.Message{
				Role: ai.RoleAssistant,
				ToolCalls: []ai.ToolCall{{
					ID:        m.ToolCallID,
					Name:      m.ToolName,
					Arguments: args,
				}},
			})
		case Final:
			out = append(out, ai.Message{Role: ai.RoleAssistant, Content: m.Answer})
		case ToolResult:
			out = append(out, ai.NewToolResultMessage(ai.ToolResult{
				ToolCallID: m.ToolCallID,
				Content:    m.ResultText,
				IsError:    m.IsError,
			}))
		default:
			panic(fmt.Sprintf("transcript: unknown message type %T", m))
		}
	}
	return out
}

// FilterForHandoff returns the subset of the log transferred to another
// agent. User and Final messages are always kept. ToolCall and ToolResult
// pairs are kept only when allowed is nil or names the tool; a non-nil empty
// list drops every pair.
func (l *Log) FilterForHandoff(allowed []string) *Log {
	msgs := l.Messages()
	if allowed == nil {
		return NewLog(msgs...)
	}

	callNames := make(map[string]string)
	for _, m := range msgs {
		if tc, ok := m.(ToolCall); ok {
			callNames[tc.ToolCallID] = tc.ToolName
		}
	}

	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		switch m := m.(type) {
		case User, Final:
			out = append(out, m)
		case ToolCall:
			if slices.Contains(allowed, m.ToolName) {
				out = append(out, m)
			}
		case ToolResult:
			name, ok := callNames[m.ToolCallID]
			if !ok {
				name = m.ToolName
			}
			if name != "" && slices.Contains(allowed, name) {
				out = append(out, m)
			}
		default:
			panic(fmt.Sprintf("transcript: unknown message type %T", m))
		}
	}
	return NewLog(out...)
}

// CheckPairing verifies that every ToolCall is followed, before the next
// model message, by exactly one ToolResult with the same ToolCallID.
// ToolResults that answer no call are allowed.
func (l *Log) CheckPairing() error {
	var pending string
	answered := make(map[string]bool)

	for i, m := range l.Messages() {
		switch m := m.(type) {
		case User:
		case ToolCall:
			if pending != "" {
				return fmt.Errorf("%w: %s not answered before message %d", ErrUnpairedToolCall, pending, i)
			}
			pending = m.ToolCallID
		case Final:
			if pending != "" {
				return fmt.Errorf("%w: %s not answered before message %d", ErrUnpairedToolCall, pending, i)
			}
		case ToolResult:
			if m.ToolCallID == pending {
				pending = ""
				answered[m.ToolCallID] = true
				continue
			}
			if answered[m.ToolCallID] {
				return fmt.Errorf("%w: %s answered twice at message %d", ErrUnpairedToolCall, m.ToolCallID, i)
			}
		default:
			panic(fmt.Sprintf("transcript: unknown message type %T", m))
		}
	}

	if pending != "" {
		return fmt.Errorf("%w: %s never answered", ErrUnpairedToolCall, pending)
	}
	return nil
}
