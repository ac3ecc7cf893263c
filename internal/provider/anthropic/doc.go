// Package anthropic adapts the Anthropic Messages API to [baton.ChatProvider].
//
// Only non-streaming chat with tool calling is supported. Extended thinking
// blocks are surfaced as [baton.Response.Reasoning].
//
//	client := anthropic.New(os.Getenv("ANTHROPIC_API_KEY"))
//	resp, err := client.Chat(ctx, messages, baton.WithModel("claude-sonnet-4-5"))
package anthropic
