// Package agent runs agents: named configurations of a system prompt, a
// model, a tool subset and handoff rules.
//
// A Runner drives one agent through a think-act-observe loop. Each iteration
// renders the system prompt, sends the transcript to the model through the
// gateway and interprets the reply as exactly one action: a tool call, a
// final answer, or a handoff to another agent. Tool results are appended to
// the transcript and the loop continues until a final answer, an error, the
// iteration budget or cancellation ends it.
//
// # Basic Usage
//
//	agents := agent.NewRegistry().MustRegister(agent.Definition{
//	    Name:         "support",
//	    SystemPrompt: "You answer questions about orders.",
//	    ToolNames:    []string{"lookup_order"},
//	})
//
//	runner, err := agent.NewRunner(gw, tools, agents)
//	if err != nil {
//	    return err
//	}
//
//	res, err := runner.Run(ctx, "support", agent.Input{
//	    Messages: []transcript.Message{transcript.User{Text: "Where is order 42?"}},
//	})
//
// Run returns an error only for configuration problems. Everything that
// goes wrong while running is reported in the result's Status,
// TerminationReason and ErrorText; the transcript in res.Messages always
// pairs every tool call with a result.
//
// # Handoffs
//
// A HandoffRule with TriggerToolCall offers the model a tool named
// handoff_to_<target>. Calling it transfers the transcript, optionally
// filtered to selected tool results, and the task arguments to the target,
// which starts over at iteration 0. A rule with TriggerMaxIterations fires
// when the agent exhausts its budget. The result of a handed-off run is the
// target's result, with HandoffChain naming every agent involved.
//
// # Prompts
//
// System prompts are text/template templates executed with PromptData.
// The runner appends the iteration count, the run context and the task
// arguments after rendering.
//
// # Events
//
// WithCollector receives start and end events for runs, model calls and
// tool calls, plus handoff events. See package event.
package agent
