package transcript

import (
	"encoding/json"
	"fmt"
)

// wireMessage is the serialized form of every variant, discriminated by Type.
type wireMessage struct {
	Type       Kind            `json:"type"`
	Text       string          `json:"text,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	ToolArgs   json.RawMessage `json:"toolArgs,omitempty"`
	ToolCallID string          `json:"toolCallId,omitempty"`
	Answer     string          `json:"answer,omitempty"`
	Reasoning  string          `json:"reasoning,omitempty"`
	ResultText string          `json:"resultText,omitempty"`
	IsError    bool            `json:"isError,omitempty"`
	ErrorText  string          `json:"errorText,omitempty"`
}

func toWire(m Message) wireMessage {
	switch m := m.(type) {
	case User:
		return wireMessage{Type: KindUser, Text: m.Text}
	case ToolCall:
		return wireMessage{
			Type:       KindToolCall,
			ToolName:   m.ToolName,
			ToolArgs:   m.ToolArgs,
			ToolCallID: m.ToolCallID,
			Reasoning:  m.Reasoning,
		}
	case Final:
		return wireMessage{Type: KindFinal, Answer: m.Answer, Reasoning: m.Reasoning}
	case ToolResult:
		return wireMessage{
			Type:       KindToolResult,
			ToolCallID: m.ToolCallID,
			ToolName:   m.ToolName,
			ResultText: m.ResultText,
			IsError:    m.IsError,
			ErrorText:  m.ErrorText,
		}
	default:
		panic(fmt.Sprintf("transcript: unknown message type %T", m))
	}
}

func fromWire(w wireMessage) (Message, error) {
	switch w.Type {
	case KindUser:
		return User{Text: w.Text}, nil
	case KindToolCall:
		if w.ToolName == "" || w.ToolCallID == "" {
			return nil, fmt.Errorf("transcript: tool_call requires toolName and toolCallId")
		}
		return ToolCall{
			ToolName:   w.ToolName,
			ToolArgs:   w.ToolArgs,
			ToolCallID: w.ToolCallID,
			Reasoning:  w.Reasoning,
		}, nil
	case KindFinal:
		return Final{Answer: w.Answer, Reasoning: w.Reasoning}, nil
	case KindToolResult:
		if w.ToolCallID == "" {
			return nil, fmt.Errorf("transcript: tool_result requires toolCallId")
		}
		return ToolResult{
			ToolCallID: w.ToolCallID,
			ToolName:   w.ToolName,
			ResultText: w.ResultText,
			IsError:    w.IsError,
			ErrorText:  w.ErrorText,
		}, nil
	default:
		return nil, fmt.Errorf("transcript: unknown message type %q", w.Type)
	}
}

// MarshalMessages encodes messages as a JSON array with a "type" field on
// each element. ResultData is not encoded.
func MarshalMessages(msgs []Message) ([]byte, error) {
	wire := make([]wireMessage, len(msgs))
	for i, m := range msgs {
		wire[i] = toWire(m)
	}
	return json.Marshal(wire)
}

// UnmarshalMessages decodes the output of MarshalMessages.
func UnmarshalMessages(data []byte) ([]Message, error) {
	var wire []wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("transcript: decode: %w", err)
	}
	msgs := make([]Message, len(wire))
	for i, w := range wire {
		m, err := fromWire(w)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = m
	}
	return msgs, nil
}

// MarshalJSON implements json.Marshaler.
func (l *Log) MarshalJSON() ([]byte, error) {
	return MarshalMessages(l.Messages())
}

// UnmarshalJSON implements json.Unmarshaler, replacing the log's contents.
func (l *Log) UnmarshalJSON(data []byte) error {
	msgs, err := UnmarshalMessages(data)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = msgs
	return nil
}
