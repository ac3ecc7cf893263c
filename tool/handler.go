package tool

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with raw JSON arguments. It may return any
// JSON-serializable value; the registry classifies it into an Outcome.
// A returned error, or a panic, becomes a Failure.
type Handler func(ctx context.Context, args json.RawMessage) (any, error)

// TypedHandler executes a tool with arguments decoded into T.
type TypedHandler[T any] func(ctx context.Context, args T) (any, error)

// typed adapts a TypedHandler to a Handler. Empty arguments decode as the
// zero value of T.
func typed[T any](fn TypedHandler[T]) Handler {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args T
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, &ErrInvalidArguments{Err: err}
			}
		}
		return fn(ctx, args)
	}
}
