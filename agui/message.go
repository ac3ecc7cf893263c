package agui

import (
	"encoding/json"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/transcript"
)

// Role constants matching AG-UI protocol.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	RoleTool      = "tool"
)

// ToTranscript converts AG-UI messages to transcript messages. Assistant
// messages with several tool calls become one ToolCall each. System
// messages have no transcript form and are skipped.
func ToTranscript(msgs []events.Message) []transcript.Message {
	result := make([]transcript.Message, 0, len(msgs))
	names := make(map[string]string)
	for _, msg := range msgs {
		content := ""
		if msg.Content != nil {
			content = *msg.Content
		}

		switch msg.Role {
		case RoleAssistant:
			for _, tc := range msg.ToolCalls {
				names[tc.ID] = tc.Function.Name
				args := json.RawMessage(tc.Function.Arguments)
				if len(args) == 0 || !json.Valid(args) {
					args = json.RawMessage("{}")
				}
				result = append(result, transcript.ToolCall{
					ToolName:   tc.Function.Name,
					ToolArgs:   args,
					ToolCallID: tc.ID,
				})
			}
			if content != "" {
				result = append(result, transcript.Final{Answer: content})
			}
		case RoleTool:
			if msg.ToolCallID == nil {
				continue
			}
			result = append(result, transcript.ToolResult{
				ToolCallID: *msg.ToolCallID,
				ToolName:   names[*msg.ToolCallID],
				ResultText: content,
			})
		case RoleSystem:
		default:
			result = append(result, transcript.User{Text: content})
		}
	}
	return result
}

// FromTranscript converts a transcript to AG-UI messages, for
// MESSAGES_SNAPSHOT events.
func FromTranscript(msgs []transcript.Message) []events.Message {
	result := make([]events.Message, 0, len(msgs))
	for _, m := range msgs {
		out := events.Message{ID: events.GenerateMessageID()}
		switch m := m.(type) {
		case transcript.User:
			out.Role = RoleUser
			out.Content = &m.Text
		case transcript.ToolCall:
			out.Role = RoleAssistant
			out.ToolCalls = []events.ToolCall{{
				ID:   m.ToolCallID,
				Type: "function",
				Function: events.Function{
					Name:      m.ToolName,
					Arguments: string(m.ToolArgs),
				},
			}}
		case transcript.Final:
			out.Role = RoleAssistant
			out.Content = &m.Answer
		case transcript.ToolResult:
			out.Role = RoleTool
			out.ToolCallID = &m.ToolCallID
			out.Content = &m.ResultText
		default:
			continue
		}
		result = append(result, out)
	}
	return result
}
