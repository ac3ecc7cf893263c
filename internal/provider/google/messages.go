package google

import (
	"encoding/json"

	ai "github.com/spetersoncode/baton"
	"google.golang.org/genai"
)

// convertMessages maps messages onto Gemini contents. System messages are
// joined into a system instruction. Function responses need the function
// name, which is recovered from the earlier call with the same ID.
func convertMessages(messages []ai.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var system *genai.Content
	names := make(map[string]string)

	for _, msg := range messages {
		var parts []*genai.Part
		role := "user"

		switch msg.Role {
		case ai.RoleSystem:
			if msg.Content == "" {
				continue
			}
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: msg.Content})
			continue
		case ai.RoleAssistant:
			role = "model"
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				names[tc.ID] = tc.Name
				var args map[string]any
				_ = json.Unmarshal([]byte(tc.Arguments), &args)
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{ID: tc.ID, Name: tc.Name, Args: args},
				})
			}
		case ai.RoleTool:
			for _, tr := range msg.ToolResults {
				var result map[string]any
				if err := json.Unmarshal([]byte(tr.Content), &result); err != nil || result == nil {
					result = map[string]any{"result": tr.Content}
				}
				if tr.IsError {
					result = map[string]any{"error": result}
				}
				name := names[tr.ToolCallID]
				if name == "" {
					name = tr.ToolCallID
				}
				parts = append(parts, &genai.Part{
					FunctionResponse: &genai.FunctionResponse{ID: tr.ToolCallID, Name: name, Response: result},
				})
			}
		default:
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
		}

		if len(parts) > 0 {
			contents = append(contents, &genai.Content{Role: role, Parts: parts})
		}
	}

	return contents, system
}
