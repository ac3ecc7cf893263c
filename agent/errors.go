package agent

import (
	"errors"
	"fmt"
)

// Sentinel errors for terminal run conditions.
var (
	// ErrIterationBudgetExceeded ends a run with StatusMaxIterations.
	ErrIterationBudgetExceeded = errors.New("agent: iteration budget exceeded")

	// ErrHandoffDepthExceeded ends a run whose handoff chain grew past the
	// configured depth.
	ErrHandoffDepthExceeded = errors.New("agent: handoff depth exceeded")
)

// ConfigurationError reports an agent definition that cannot run. A run
// that hits one refuses to start.
type ConfigurationError struct {
	Agent  string
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("agent %q: %s", e.Agent, e.Reason)
	}
	return fmt.Sprintf("agent %q: %s: %s", e.Agent, e.Field, e.Reason)
}

// UnparsableActionError is returned when a model reply holds neither a tool
// call nor answer text.
type UnparsableActionError struct {
	Agent     string
	Iteration int
}

func (e *UnparsableActionError) Error() string {
	return fmt.Sprintf("agent %q: unparsable model reply at iteration %d", e.Agent, e.Iteration)
}

// UnknownToolError is returned when the model calls a tool the agent was
// not offered.
type UnknownToolError struct {
	Agent string
	Tool  string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("agent %q: unknown tool %q", e.Agent, e.Tool)
}
