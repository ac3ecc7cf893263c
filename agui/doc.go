// Package agui connects baton runs to AG-UI frontends.
//
// AG-UI (Agent-User Interface) is an event-based protocol that standardizes
// how agents stream progress to user-facing applications. This package
// converts baton observability events into AG-UI events and AG-UI run
// requests into runner input.
//
// # Usage
//
// Create a Mapper per run and attach a Stream as the run's collector. The
// runner reports events synchronously, so the stream must be drained while
// the run executes:
//
//	mapper := agui.NewMapper(input.ThreadID, input.RunID)
//	stream := agui.NewStream(mapper, 64)
//
//	go func() {
//	    defer stream.Close()
//	    runner.Run(ctx, agentName, prepared.Input(), agent.WithCollector(stream))
//	}()
//	for ev := range stream.Events() {
//	    writeSSE(w, ev)
//	}
//
// # Event Mapping
//
//   - outermost run_start → RUN_STARTED, then STEP_STARTED for the agent
//   - nested run_start (handoff target) → STEP_STARTED
//   - run_end → STEP_FINISHED, then RUN_FINISHED or RUN_ERROR for the outermost run
//   - generation_end with a final answer → TEXT_MESSAGE_START, _CONTENT, _END
//   - generation_end with a tool call → TOOL_CALL_START, _ARGS, _END
//   - tool_end and explicit handoffs → TOOL_CALL_RESULT
//
// A handed-off run fails with RUN_ERROR when the agent it was handed to
// failed.
//
// # Thread Safety
//
// The Mapper is NOT safe for concurrent use. A Stream serializes access to
// its Mapper. Message conversion functions are stateless.
package agui
