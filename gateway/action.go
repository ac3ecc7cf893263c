package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// EnvelopeMarker must appear in text before it is parsed as a JSON tool-call
// envelope.
const EnvelopeMarker = `"action"`

// ActionKind is the kind of decision a reply encodes.
type ActionKind int

const (
	ActionUnparsable ActionKind = iota
	ActionToolCall
	ActionFinal
)

func (k ActionKind) String() string {
	switch k {
	case ActionToolCall:
		return "tool_call"
	case ActionFinal:
		return "final_answer"
	default:
		return "unparsable"
	}
}

// Action is the interpreted form of a Reply.
type Action struct {
	Kind ActionKind

	// Set for ActionToolCall.
	ToolName   string
	ToolArgs   json.RawMessage
	ToolCallID string

	// Set for ActionFinal.
	Answer string

	Reasoning string
}

type envelope struct {
	Action   string          `json:"action"`
	ToolName string          `json:"toolName"`
	ToolArgs json.RawMessage `json:"toolArgs"`
}

// Interpret turns a reply into one action. A structured function call wins;
// then a JSON envelope {"action":"tool","toolName":..,"toolArgs":..} in the
// text; then any non-empty text is the final answer. A reply with neither is
// unparsable.
func Interpret(r *Reply) Action {
	if r == nil {
		return Action{Kind: ActionUnparsable}
	}
	if fc := r.FunctionCall; fc != nil && fc.Name != "" {
		id := fc.ID
		if id == "" {
			id = NewCallID()
		}
		return Action{
			Kind:       ActionToolCall,
			ToolName:   fc.Name,
			ToolArgs:   normalizeArgs([]byte(fc.Arguments)),
			ToolCallID: id,
			Reasoning:  r.Reasoning,
		}
	}

	text := strings.TrimSpace(r.Text)
	if strings.HasPrefix(text, "{") && strings.Contains(text, EnvelopeMarker) {
		var env envelope
		if err := json.Unmarshal([]byte(text), &env); err == nil && env.Action == "tool" && env.ToolName != "" {
			return Action{
				Kind:       ActionToolCall,
				ToolName:   env.ToolName,
				ToolArgs:   normalizeArgs(env.ToolArgs),
				ToolCallID: NewCallID(),
				Reasoning:  r.Reasoning,
			}
		}
	}

	if text != "" {
		return Action{Kind: ActionFinal, Answer: r.Text, Reasoning: r.Reasoning}
	}
	return Action{Kind: ActionUnparsable, Reasoning: r.Reasoning}
}

// NewCallID returns a fresh tool-call ID.
func NewCallID() string {
	return "call_" + uuid.NewString()
}

// normalizeArgs returns args as a JSON object, "{}" when empty or null. A
// string holding JSON (as some models emit) is unwrapped.
func normalizeArgs(args []byte) json.RawMessage {
	args = bytes.TrimSpace(args)
	if len(args) == 0 || bytes.Equal(args, []byte("null")) {
		return json.RawMessage("{}")
	}
	if args[0] == '"' {
		var inner string
		if err := json.Unmarshal(args, &inner); err == nil && json.Valid([]byte(inner)) {
			return normalizeArgs([]byte(inner))
		}
	}
	return json.RawMessage(append([]byte(nil), args...))
}
