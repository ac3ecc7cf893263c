package gateway

import (
	"strings"
	"testing"

	ai "github.com/spetersoncode/baton"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret(t *testing.T) {
	t.Run("function call wins over text", func(t *testing.T) {
		a := Interpret(&Reply{
			Text:         "I'll look that up",
			FunctionCall: &ai.ToolCall{ID: "t1", Name: "search", Arguments: `{"q":"go"}`},
			Reasoning:    "need data",
		})
		assert.Equal(t, ActionToolCall, a.Kind)
		assert.Equal(t, "search", a.ToolName)
		assert.Equal(t, "t1", a.ToolCallID)
		assert.JSONEq(t, `{"q":"go"}`, string(a.ToolArgs))
		assert.Equal(t, "need data", a.Reasoning)
	})

	t.Run("function call without id gets one", func(t *testing.T) {
		a := Interpret(&Reply{FunctionCall: &ai.ToolCall{Name: "clock"}})
		assert.Equal(t, ActionToolCall, a.Kind)
		assert.True(t, strings.HasPrefix(a.ToolCallID, "call_"))
		assert.JSONEq(t, `{}`, string(a.ToolArgs))
	})

	t.Run("envelope in text", func(t *testing.T) {
		a := Interpret(&Reply{Text: ` {"action":"tool","toolName":"calc","toolArgs":{"a":1}} `})
		require.Equal(t, ActionToolCall, a.Kind)
		assert.Equal(t, "calc", a.ToolName)
		assert.JSONEq(t, `{"a":1}`, string(a.ToolArgs))
		assert.NotEmpty(t, a.ToolCallID)
	})

	t.Run("envelope with stringified args", func(t *testing.T) {
		a := Interpret(&Reply{Text: `{"action":"tool","toolName":"calc","toolArgs":"{\"a\":2}"}`})
		require.Equal(t, ActionToolCall, a.Kind)
		assert.JSONEq(t, `{"a":2}`, string(a.ToolArgs))
	})

	t.Run("malformed envelope falls back to final", func(t *testing.T) {
		text := `{"action":"tool","toolName":`
		a := Interpret(&Reply{Text: text})
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, text, a.Answer)
	})

	t.Run("json without marker is a final answer", func(t *testing.T) {
		a := Interpret(&Reply{Text: `{"temperature": 3}`})
		assert.Equal(t, ActionFinal, a.Kind)
	})

	t.Run("envelope with other action is a final answer", func(t *testing.T) {
		a := Interpret(&Reply{Text: `{"action":"final","answer":"x"}`})
		assert.Equal(t, ActionFinal, a.Kind)
	})

	t.Run("plain text", func(t *testing.T) {
		a := Interpret(&Reply{Text: "Paris", Reasoning: "geography"})
		assert.Equal(t, ActionFinal, a.Kind)
		assert.Equal(t, "Paris", a.Answer)
		assert.Equal(t, "geography", a.Reasoning)
	})

	t.Run("empty reply is unparsable", func(t *testing.T) {
		assert.Equal(t, ActionUnparsable, Interpret(&Reply{Text: "  \n"}).Kind)
		assert.Equal(t, ActionUnparsable, Interpret(nil).Kind)
		assert.Equal(t, ActionUnparsable, Interpret(&Reply{FunctionCall: &ai.ToolCall{}}).Kind)
	})
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "tool_call", ActionToolCall.String())
	assert.Equal(t, "final_answer", ActionFinal.String())
	assert.Equal(t, "unparsable", ActionUnparsable.String())
}
