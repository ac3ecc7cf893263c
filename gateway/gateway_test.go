package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu       sync.Mutex
	replies  []*ai.Response
	errs     []error
	calls    int
	messages [][]ai.Message
	options  []*ai.Options
}

func (f *fakeProvider) Chat(_ context.Context, msgs []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.messages = append(f.messages, msgs)
	f.options = append(f.options, ai.ApplyOptions(opts...))
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return &ai.Response{}, nil
}

func TestResolve(t *testing.T) {
	tests := []struct {
		model    string
		provider ai.Provider
		name     string
	}{
		{"claude-sonnet-4-5", ai.ProviderAnthropic, "claude-sonnet-4-5"},
		{"gpt-4o", ai.ProviderOpenAI, "gpt-4o"},
		{"o3-mini", ai.ProviderOpenAI, "o3-mini"},
		{"chatgpt-4o-latest", ai.ProviderOpenAI, "chatgpt-4o-latest"},
		{"Gemini-2.5-Pro", ai.ProviderGoogle, "Gemini-2.5-Pro"},
		{"openai/my-finetune", ai.ProviderOpenAI, "my-finetune"},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			p, name, err := Resolve(tt.model)
			require.NoError(t, err)
			assert.Equal(t, tt.provider, p)
			assert.Equal(t, tt.name, name)
		})
	}

	_, _, err := Resolve("llama-3")
	assert.ErrorIs(t, err, ErrUnknownModel)

	_, _, err = Resolve("")
	assert.ErrorIs(t, err, ErrNoModel)
}

func TestResolveWithLongestPrefix(t *testing.T) {
	routes := []Route{
		{Prefix: "gpt", Provider: ai.ProviderOpenAI},
		{Prefix: "gpt-oss", Provider: ai.ProviderGoogle},
	}
	p, _, err := ResolveWith(routes, "gpt-oss-20b")
	require.NoError(t, err)
	assert.Equal(t, ai.ProviderGoogle, p)
}

func TestCall(t *testing.T) {
	fake := &fakeProvider{replies: []*ai.Response{{
		Content:   "thinking out loud",
		Reasoning: "because",
		Usage:     ai.Usage{InputTokens: 10, OutputTokens: 3},
		ToolCalls: []ai.ToolCall{
			{ID: "a", Name: "first", Arguments: "{}"},
			{ID: "b", Name: "second", Arguments: "{}"},
		},
	}}}
	gw := New(Config{
		DefaultModel: "claude-sonnet-4-5",
		MaxTokens:    512,
		Providers:    map[ai.Provider]ai.ChatProvider{ai.ProviderAnthropic: fake},
	})

	temp := 0.2
	reply, err := gw.Call(context.Background(), Request{
		SystemPrompt: "be terse",
		Messages:     []ai.Message{{Role: ai.RoleUser, Content: "hi"}},
		Tools:        []ai.Tool{{Name: "first"}},
		Temperature:  &temp,
	})
	require.NoError(t, err)

	require.NotNil(t, reply.FunctionCall)
	assert.Equal(t, "first", reply.FunctionCall.Name)
	require.Len(t, reply.Dropped, 1)
	assert.Equal(t, "second", reply.Dropped[0].Name)
	assert.Equal(t, "because", reply.Reasoning)
	assert.Equal(t, 13, reply.Usage.Total())
	assert.Equal(t, ai.ProviderAnthropic, reply.Provider)

	require.Len(t, fake.messages, 1)
	sent := fake.messages[0]
	require.Len(t, sent, 2)
	assert.Equal(t, ai.RoleSystem, sent[0].Role)
	assert.Equal(t, "be terse", sent[0].Content)

	opts := fake.options[0]
	assert.Equal(t, "claude-sonnet-4-5", opts.Model)
	assert.Equal(t, 512, opts.MaxTokens)
	require.NotNil(t, opts.Temperature)
	assert.Equal(t, 0.2, *opts.Temperature)
	assert.Len(t, opts.Tools, 1)
}

func TestCallErrors(t *testing.T) {
	t.Run("unknown model", func(t *testing.T) {
		gw := New(Config{})
		_, err := gw.Call(context.Background(), Request{Model: "mystery"})
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.ErrorIs(t, err, ErrUnknownModel)
	})

	t.Run("missing api key", func(t *testing.T) {
		gw := New(Config{})
		_, err := gw.Call(context.Background(), Request{Model: "gpt-4o"})
		var keyErr *ErrMissingAPIKey
		require.ErrorAs(t, err, &keyErr)
		assert.Equal(t, ai.ProviderOpenAI, keyErr.Provider)
		assert.Equal(t, `no API key configured for openai (required by model "gpt-4o")`, keyErr.Error())
	})

	t.Run("provider failure keeps category", func(t *testing.T) {
		fake := &fakeProvider{errs: []error{ai.NewUserInputError("bad request", 400, nil)}}
		gw := New(Config{Providers: map[ai.Provider]ai.ChatProvider{ai.ProviderGoogle: fake}})
		_, err := gw.Call(context.Background(), Request{Model: "gemini-2.5-flash"})
		var gerr *Error
		require.ErrorAs(t, err, &gerr)
		assert.Equal(t, ai.ErrorUserInput, gerr.Category())
		assert.True(t, ai.IsUserInput(err))
	})
}

func TestCallRetriesTransient(t *testing.T) {
	fake := &fakeProvider{
		errs:    []error{ai.NewTransientError("overloaded", 529, nil)},
		replies: []*ai.Response{nil, {Content: "done"}},
	}
	rc := retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, Multiplier: 1}
	gw := New(Config{
		Retry:     &rc,
		Providers: map[ai.Provider]ai.ChatProvider{ai.ProviderOpenAI: fake},
	})
	reply, err := gw.Call(context.Background(), Request{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "done", reply.Text)
	assert.Equal(t, 2, fake.calls)
}

func TestCallWithoutRetryConfigMakesOneAttempt(t *testing.T) {
	boom := errors.New("connection reset by peer")
	fake := &fakeProvider{errs: []error{boom, boom}}
	gw := New(Config{Providers: map[ai.Provider]ai.ChatProvider{ai.ProviderOpenAI: fake}})
	_, err := gw.Call(context.Background(), Request{Model: "gpt-4o"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, fake.calls)
}
