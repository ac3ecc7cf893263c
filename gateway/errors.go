package gateway

import (
	"errors"
	"fmt"

	ai "github.com/spetersoncode/baton"
)

// ErrNoModel is returned when a request names no model and no default is set.
var ErrNoModel = errors.New("no model specified and no default configured")

// ErrMissingAPIKey is returned when a model is used but no API key is
// configured for its provider.
type ErrMissingAPIKey struct {
	Provider ai.Provider
	Model    string
}

func (e *ErrMissingAPIKey) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("no API key configured for %s (required by model %q)", e.Provider, e.Model)
	}
	return fmt.Sprintf("no API key configured for %s", e.Provider)
}

// Error is a transport or provider failure during a model call. The
// provider's error category is reachable through Unwrap.
type Error struct {
	Provider ai.Provider
	Model    string
	Err      error
}

func (e *Error) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("gateway: %v", e.Err)
	}
	return fmt.Sprintf("gateway: %s %s: %v", e.Provider, e.Model, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Category returns the category of the underlying provider error.
func (e *Error) Category() ai.ErrorCategory { return ai.CategoryOf(e.Err) }
