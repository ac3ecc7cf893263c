package agent

import (
	"encoding/json"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/transcript"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusFinalAnswer   Status = "final_answer"
	StatusError         Status = "error"
	StatusMaxIterations Status = "max_iterations"
	StatusCancelled     Status = "cancelled"

	// StatusHandedOff marks the delegating agent's own run_end event. The
	// overall result carries the target's status.
	StatusHandedOff Status = "handed_off"
)

// TerminationReason is the cause of a run ending. A run that ends with a
// final answer leaves it empty unless it was handed off.
type TerminationReason string

const (
	ReasonError         TerminationReason = "error"
	ReasonMaxIterations TerminationReason = "max_iterations"
	ReasonHandedOff     TerminationReason = "handed_off"
	ReasonCancelled     TerminationReason = "cancelled"
)

// RunResult is the outcome of Runner.Run. Every failure mode produces one.
type RunResult struct {
	RunID string `json:"runId"`

	// Agent is the agent that produced the outcome: the last one in
	// HandoffChain.
	Agent string `json:"agent"`

	Status    Status `json:"status"`
	Output    string `json:"output,omitempty"`
	ErrorText string `json:"error,omitempty"`

	// Err keeps the typed error for errors.As.
	Err error `json:"-"`

	// Iterations counts model calls made by Agent, starting from 0 at
	// every handoff.
	Iterations int `json:"iterations"`

	Messages          *transcript.Log   `json:"messages"`
	TerminationReason TerminationReason `json:"terminationReason,omitempty"`
	Args              json.RawMessage   `json:"args,omitempty"`

	// Usage sums token usage across every agent in the chain.
	Usage        ai.Usage `json:"usage"`
	HandoffChain []string `json:"handoffChain"`
}

// Succeeded reports whether the run ended with a final answer.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.Status == StatusFinalAnswer
}
