package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
)

// PromptData is the data a system prompt template is rendered with.
type PromptData struct {
	Agent         string
	Description   string
	Iteration     int // 0-indexed
	MaxIterations int
	// Args holds the run arguments when they are a JSON object. Other
	// argument shapes leave it nil and only appear in the appended
	// "Task arguments" line.
	Args    map[string]any
	Context string
}

func parsePrompt(name, text string) (*template.Template, error) {
	return template.New(name).Option("missingkey=zero").Parse(text)
}

// systemPrompt renders the agent's template and appends the iteration
// line, the caller's context and the run arguments.
func systemPrompt(tmpl *template.Template, d Definition, iteration int, args json.RawMessage, extra string) (string, error) {
	data := PromptData{
		Agent:         d.Name,
		Description:   d.Description,
		Iteration:     iteration,
		MaxIterations: d.MaxIterations,
		Context:       extra,
	}
	data.Args, _ = argsObject(args)

	var buf bytes.Buffer
	if tmpl == nil {
		buf.WriteString(d.SystemPrompt)
	} else if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}

	fmt.Fprintf(&buf, "\n\nIteration %d of %d.", iteration+1, d.MaxIterations)
	if c := strings.TrimSpace(extra); c != "" {
		fmt.Fprintf(&buf, "\n\nContext:\n%s", c)
	}
	if hasArgs(args) {
		fmt.Fprintf(&buf, "\n\nTask arguments: %s", compactJSON(args))
	}
	return buf.String(), nil
}

// argsObject decodes run arguments for templates. Absent arguments yield
// nil without an error.
func argsObject(args json.RawMessage) (map[string]any, error) {
	if !hasArgs(args) {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal(args, &obj); err != nil {
		return nil, fmt.Errorf("run arguments are not a JSON object: %w", err)
	}
	return obj, nil
}

func hasArgs(args json.RawMessage) bool {
	s := strings.TrimSpace(string(args))
	return s != "" && s != "null" && s != "{}"
}

func compactJSON(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
