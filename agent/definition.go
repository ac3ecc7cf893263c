package agent

import (
	"slices"
	"strings"
)

// DefaultMaxIterations is the budget used when neither an agent nor the
// agent it took over from sets one.
const DefaultMaxIterations = 10

// HandoffToolPrefix prefixes the synthesized tool that transfers a task to
// another agent.
const HandoffToolPrefix = "handoff_to_"

// HandoffToolName returns the tool name offered to the model for target.
func HandoffToolName(target string) string {
	return HandoffToolPrefix + target
}

// Trigger is the condition that activates a handoff rule.
type Trigger string

const (
	// TriggerToolCall fires when the model calls the rule's handoff tool.
	TriggerToolCall Trigger = "explicit_tool_call"

	// TriggerMaxIterations fires when the agent exhausts its budget.
	TriggerMaxIterations Trigger = "max_iterations_exceeded"
)

// HandoffRule declares when and how an agent delegates to another.
type HandoffRule struct {
	Target  string  `yaml:"target" json:"target"`
	Trigger Trigger `yaml:"trigger" json:"trigger"`

	// Description is shown to the model on the handoff tool.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// IncludeToolResults limits which tool call/result pairs are transferred.
	// Nil transfers everything; an empty list transfers no pairs.
	IncludeToolResults []string `yaml:"include_tool_results" json:"includeToolResults"`
}

// Definition configures an agent. The SystemPrompt is a text/template
// rendered with PromptData each iteration.
type Definition struct {
	Name          string        `yaml:"name" json:"name"`
	Description   string        `yaml:"description" json:"description"`
	SystemPrompt  string        `yaml:"system_prompt" json:"systemPrompt"`
	Model         string        `yaml:"model" json:"model,omitempty"`
	ToolNames     []string      `yaml:"tools" json:"tools"`
	MaxIterations int           `yaml:"max_iterations" json:"maxIterations,omitempty"`
	Temperature   *float64      `yaml:"temperature" json:"temperature,omitempty"`
	HandoffRules  []HandoffRule `yaml:"handoffs" json:"handoffs,omitempty"`

	// IncludeIntermediateStepsOnReturn applies when this agent is the target
	// of a handoff: the returned log then keeps the delegator's history.
	IncludeIntermediateStepsOnReturn bool `yaml:"include_intermediate_steps_on_return" json:"includeIntermediateStepsOnReturn,omitempty"`
}

// Clone returns a deep copy of d. A nil ToolNames or IncludeToolResults
// stays nil.
func (d Definition) Clone() Definition {
	c := d
	c.ToolNames = slices.Clone(d.ToolNames)
	if d.Temperature != nil {
		t := *d.Temperature
		c.Temperature = &t
	}
	if d.HandoffRules != nil {
		c.HandoffRules = make([]HandoffRule, len(d.HandoffRules))
		for i, r := range d.HandoffRules {
			r.IncludeToolResults = slices.Clone(r.IncludeToolResults)
			c.HandoffRules[i] = r
		}
	}
	return c
}

// ruleForTool returns the tool-call rule whose handoff tool is name.
func (d Definition) ruleForTool(name string) (HandoffRule, bool) {
	if !strings.HasPrefix(name, HandoffToolPrefix) {
		return HandoffRule{}, false
	}
	for _, r := range d.HandoffRules {
		if r.Trigger == TriggerToolCall && HandoffToolName(r.Target) == name {
			return r, true
		}
	}
	return HandoffRule{}, false
}

// ruleForBudget returns the first rule triggered by budget exhaustion.
func (d Definition) ruleForBudget() (HandoffRule, bool) {
	for _, r := range d.HandoffRules {
		if r.Trigger == TriggerMaxIterations {
			return r, true
		}
	}
	return HandoffRule{}, false
}

// inherit fills fields the target leaves unset from the delegating agent.
func (d Definition) inherit(from Definition) Definition {
	out := d.Clone()
	if out.Model == "" {
		out.Model = from.Model
	}
	if out.ToolNames == nil {
		out.ToolNames = slices.Clone(from.ToolNames)
	}
	if out.MaxIterations <= 0 {
		out.MaxIterations = from.MaxIterations
	}
	if out.Temperature == nil && from.Temperature != nil {
		t := *from.Temperature
		out.Temperature = &t
	}
	return out
}
