package gateway

import (
	"errors"
	"fmt"
	"strings"

	ai "github.com/spetersoncode/baton"
)

// ErrUnknownModel is returned when no route matches a model name.
var ErrUnknownModel = errors.New("unknown model")

// Route maps a model-name prefix to a provider.
type Route struct {
	Prefix   string
	Provider ai.Provider
}

// DefaultRoutes is the lookup table used when Config.Routes is nil.
var DefaultRoutes = []Route{
	{Prefix: "claude", Provider: ai.ProviderAnthropic},
	{Prefix: "gpt", Provider: ai.ProviderOpenAI},
	{Prefix: "chatgpt", Provider: ai.ProviderOpenAI},
	{Prefix: "o1", Provider: ai.ProviderOpenAI},
	{Prefix: "o3", Provider: ai.ProviderOpenAI},
	{Prefix: "o4", Provider: ai.ProviderOpenAI},
	{Prefix: "gemini", Provider: ai.ProviderGoogle},
}

// Resolve finds the provider for a model name using DefaultRoutes.
func Resolve(model string) (ai.Provider, string, error) {
	return ResolveWith(DefaultRoutes, model)
}

// ResolveWith finds the provider for a model name and returns the name the
// provider expects. An explicit "provider/model" form bypasses the table and
// the longest matching prefix wins.
func ResolveWith(routes []Route, model string) (ai.Provider, string, error) {
	if model == "" {
		return "", "", ErrNoModel
	}
	if name, rest, ok := strings.Cut(model, "/"); ok {
		if p, err := ai.ParseProvider(name); err == nil && rest != "" {
			return p, rest, nil
		}
	}

	lower := strings.ToLower(model)
	best := -1
	for i, r := range routes {
		if strings.HasPrefix(lower, strings.ToLower(r.Prefix)) {
			if best < 0 || len(r.Prefix) > len(routes[best].Prefix) {
				best = i
			}
		}
	}
	if best < 0 {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return routes[best].Provider, model, nil
}
