package store

import (
	"context"
	"encoding/json"
)

// GetJSON decodes the value stored under key into a T. It returns
// ErrNotFound when the key is absent.
func GetJSON[T any](ctx context.Context, a Adapter, key string) (T, error) {
	var v T
	raw, ok, err := a.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, ErrNotFound
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, &SerializationError{Key: key, Err: err}
	}
	return v, nil
}

// SetJSON stores the JSON encoding of v under key.
func SetJSON[T any](ctx context.Context, a Adapter, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &SerializationError{Key: key, Err: err}
	}
	return a.Set(ctx, key, raw)
}
