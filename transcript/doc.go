// Package transcript holds the message log of a single run.
//
// A [Message] is a closed union of four variants: [User], [ToolCall] (the
// model asked for a tool), [Final] (the model answered) and [ToolResult].
// Consumers switch over the concrete types; there is no other implementation
// of the interface.
//
// A [Log] is append-only and owned by exactly one run. It converts itself
// into provider wire messages with [Log.ToProviderFormat] and produces the
// subset handed to another agent with [Log.FilterForHandoff].
//
// Every ToolCall must be followed, before the next model message, by exactly
// one ToolResult with the same ToolCallID. [Log.CheckPairing] verifies this.
package transcript
