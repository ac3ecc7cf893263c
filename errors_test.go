package baton

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("Error includes cause", func(t *testing.T) {
		err := NewTransientError("rate limited", 429, errors.New("slow down"))
		assert.Equal(t, "rate limited: slow down", err.Error())
	})

	t.Run("Error omits duplicate cause text", func(t *testing.T) {
		cause := errors.New("boom")
		err := NewPermanentError("boom", 401, cause)
		assert.Equal(t, "boom", err.Error())
		assert.True(t, errors.Is(err, cause))
	})
}

func TestCategoryHelpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		permanent bool
		userInput bool
	}{
		{"transient", NewTransientError("x", 503, nil), true, false, false},
		{"permanent", NewPermanentError("x", 403, nil), false, true, false},
		{"user input", NewUserInputError("x", 400, nil), false, false, true},
		{"wrapped transient", fmt.Errorf("call: %w", NewTransientError("x", 429, nil)), true, false, false},
		{"plain error", errors.New("x"), false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, IsTransient(tt.err))
			assert.Equal(t, tt.permanent, IsPermanent(tt.err))
			assert.Equal(t, tt.userInput, IsUserInput(tt.err))
		})
	}
}

func TestStatusAndRetryAfter(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewTransientErrorWithRetry("busy", 429, 3*time.Second, nil))
	assert.Equal(t, 429, StatusCodeOf(err))
	assert.Equal(t, 3*time.Second, RetryAfterOf(err))

	assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
	assert.Equal(t, time.Duration(0), RetryAfterOf(errors.New("plain")))
}

func TestUsageAdd(t *testing.T) {
	u := Usage{InputTokens: 10, OutputTokens: 5}.Add(Usage{InputTokens: 3, OutputTokens: 2})
	assert.Equal(t, Usage{InputTokens: 13, OutputTokens: 7}, u)
	assert.Equal(t, 20, u.Total())
}

func TestParseProvider(t *testing.T) {
	p, err := ParseProvider("openai")
	assert.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, p)

	_, err = ParseProvider("vertex")
	assert.Error(t, err)
}
