// Package gateway normalizes model calls across providers.
//
// A [Gateway] resolves the provider from the model name, lazily creates the
// provider client, translates the request and returns a [Reply]. [Interpret]
// turns a reply into exactly one [Action]: a tool call, a final answer or an
// unparsable reply.
//
//	gw := gateway.New(gateway.Config{
//	    APIKeys:      gateway.APIKeys{Anthropic: os.Getenv("ANTHROPIC_API_KEY")},
//	    DefaultModel: "claude-sonnet-4-5",
//	})
//	reply, err := gw.Call(ctx, gateway.Request{
//	    SystemPrompt: "You are terse.",
//	    Messages:     log.ToProviderFormat(),
//	})
//	action := gateway.Interpret(reply)
package gateway
