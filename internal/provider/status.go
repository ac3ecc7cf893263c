// Package provider holds helpers shared by the provider adapters.
package provider

import (
	"net/http"
	"strconv"
	"time"

	ai "github.com/spetersoncode/baton"
)

// CategorizeStatusCode determines the error category from an HTTP status code.
func CategorizeStatusCode(code int) ai.ErrorCategory {
	switch {
	case code == 408 || code == 429:
		return ai.ErrorTransient // timeout or rate limited
	case code >= 500 && code < 600:
		return ai.ErrorTransient
	case code == 401 || code == 403:
		return ai.ErrorPermanent
	case code == 400 || code == 404 || code == 413 || code == 422:
		return ai.ErrorUserInput
	default:
		return ai.ErrorPermanent
	}
}

// WrapStatus attaches a category to err based on the HTTP status code.
// A positive retryAfter always yields a transient error.
func WrapStatus(err error, code int, retryAfter time.Duration) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if retryAfter > 0 {
		return ai.NewTransientErrorWithRetry(msg, code, retryAfter, err)
	}
	switch CategorizeStatusCode(code) {
	case ai.ErrorTransient:
		return ai.NewTransientError(msg, code, err)
	case ai.ErrorUserInput:
		return ai.NewUserInputError(msg, code, err)
	default:
		return ai.NewPermanentError(msg, code, err)
	}
}

// ParseRetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is missing or unparsable.
func ParseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}
	return 0
}
