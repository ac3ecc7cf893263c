package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/internal/provider/anthropic"
	"github.com/spetersoncode/baton/internal/provider/google"
	"github.com/spetersoncode/baton/internal/provider/openai"
	"github.com/spetersoncode/baton/internal/retry"
)

// APIKeys holds API keys for different providers.
// Only configure keys for providers you intend to use.
type APIKeys struct {
	Anthropic string
	OpenAI    string
	Google    string
}

// Config holds configuration for a Gateway.
type Config struct {
	APIKeys APIKeys

	// DefaultModel is used when a request names no model.
	DefaultModel string

	// MaxTokens is the default output budget. Zero leaves it to the provider.
	MaxTokens int

	// Routes overrides DefaultRoutes.
	Routes []Route

	// Providers supplies ready-made clients, bypassing API key lookup.
	Providers map[ai.Provider]ai.ChatProvider

	// Retry configures transport retries for a single call. Nil makes one
	// attempt.
	Retry *retry.Config

	Logger *slog.Logger
}

// Request is one model call.
type Request struct {
	Model        string
	SystemPrompt string
	Messages     []ai.Message
	Tools        []ai.Tool
	Temperature  *float64
	MaxTokens    int
}

// Reply is a normalized model reply.
type Reply struct {
	Text         string
	FunctionCall *ai.ToolCall
	Reasoning    string
	Usage        ai.Usage
	Provider     ai.Provider
	Model        string

	// Dropped holds tool calls beyond the first; a reply carries one action.
	Dropped []ai.ToolCall
}

// Gateway dispatches requests to provider clients, which are created lazily
// on first use.
type Gateway struct {
	apiKeys      APIKeys
	defaultModel string
	maxTokens    int
	routes       []Route
	retry        retry.Config
	logger       *slog.Logger

	mu        sync.RWMutex
	providers map[ai.Provider]ai.ChatProvider
}

// New creates a Gateway with the given configuration.
func New(cfg Config) *Gateway {
	routes := cfg.Routes
	if routes == nil {
		routes = DefaultRoutes
	}
	rc := retry.Disabled()
	if cfg.Retry != nil {
		rc = *cfg.Retry
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	providers := make(map[ai.Provider]ai.ChatProvider, len(cfg.Providers))
	for p, c := range cfg.Providers {
		providers[p] = c
	}
	return &Gateway{
		apiKeys:      cfg.APIKeys,
		defaultModel: cfg.DefaultModel,
		maxTokens:    cfg.MaxTokens,
		routes:       routes,
		retry:        rc,
		logger:       logger,
		providers:    providers,
	}
}

// DefaultModel returns the model used when a request names none.
func (g *Gateway) DefaultModel() string { return g.defaultModel }

// chatProvider returns the client for p, initializing it if needed.
func (g *Gateway) chatProvider(ctx context.Context, p ai.Provider, model string) (ai.ChatProvider, error) {
	g.mu.RLock()
	if c, ok := g.providers[p]; ok {
		g.mu.RUnlock()
		return c, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// double-check after acquiring the write lock
	if c, ok := g.providers[p]; ok {
		return c, nil
	}

	var c ai.ChatProvider
	switch p {
	case ai.ProviderAnthropic:
		if g.apiKeys.Anthropic == "" {
			return nil, &ErrMissingAPIKey{Provider: p, Model: model}
		}
		c = anthropic.New(g.apiKeys.Anthropic)
	case ai.ProviderOpenAI:
		if g.apiKeys.OpenAI == "" {
			return nil, &ErrMissingAPIKey{Provider: p, Model: model}
		}
		c = openai.New(g.apiKeys.OpenAI)
	case ai.ProviderGoogle:
		if g.apiKeys.Google == "" {
			return nil, &ErrMissingAPIKey{Provider: p, Model: model}
		}
		gc, err := google.New(ctx, g.apiKeys.Google)
		if err != nil {
			return nil, fmt.Errorf("initialize google client: %w", err)
		}
		c = gc
	default:
		return nil, fmt.Errorf("unsupported provider: %s", p)
	}
	g.providers[p] = c
	return c, nil
}

// Call sends req to the provider that serves its model. Every failure is
// returned as *Error.
func (g *Gateway) Call(ctx context.Context, req Request) (*Reply, error) {
	model := req.Model
	if model == "" {
		model = g.defaultModel
	}
	p, name, err := ResolveWith(g.routes, model)
	if err != nil {
		return nil, &Error{Model: model, Err: err}
	}
	client, err := g.chatProvider(ctx, p, name)
	if err != nil {
		return nil, &Error{Provider: p, Model: name, Err: err}
	}

	messages := req.Messages
	if req.SystemPrompt != "" {
		messages = append([]ai.Message{{Role: ai.RoleSystem, Content: req.SystemPrompt}}, req.Messages...)
	}

	opts := []ai.Option{ai.WithModel(name)}
	if len(req.Tools) > 0 {
		opts = append(opts, ai.WithTools(req.Tools...))
	}
	if req.Temperature != nil {
		opts = append(opts, ai.WithTemperature(*req.Temperature))
	}
	if n := req.MaxTokens; n > 0 {
		opts = append(opts, ai.WithMaxTokens(n))
	} else if g.maxTokens > 0 {
		opts = append(opts, ai.WithMaxTokens(g.maxTokens))
	}

	notify := func(e retry.Event) {
		g.logger.Warn("retrying model call",
			"provider", p, "model", name,
			"attempt", e.Attempt, "max_attempts", e.MaxAttempts,
			"delay", e.Delay, "error", e.Err)
	}
	resp, err := retry.DoNotify(ctx, g.retry, notify, func() (*ai.Response, error) {
		return client.Chat(ctx, messages, opts...)
	})
	if err != nil {
		return nil, &Error{Provider: p, Model: name, Err: err}
	}

	reply := &Reply{
		Text:      resp.Content,
		Reasoning: resp.Reasoning,
		Usage:     resp.Usage,
		Provider:  p,
		Model:     name,
	}
	if len(resp.ToolCalls) > 0 {
		call := resp.ToolCalls[0]
		reply.FunctionCall = &call
		reply.Dropped = append([]ai.ToolCall(nil), resp.ToolCalls[1:]...)
	}
	return reply, nil
}
