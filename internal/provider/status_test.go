package provider

import (
	"errors"
	"net/http"
	"testing"
	"time"

	ai "github.com/spetersoncode/baton"
	"github.com/stretchr/testify/assert"
)

func TestCategorizeStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ai.ErrorCategory
	}{
		{429, ai.ErrorTransient},
		{503, ai.ErrorTransient},
		{408, ai.ErrorTransient},
		{401, ai.ErrorPermanent},
		{403, ai.ErrorPermanent},
		{400, ai.ErrorUserInput},
		{404, ai.ErrorUserInput},
		{418, ai.ErrorPermanent},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeStatusCode(tt.code), "code %d", tt.code)
	}
}

func TestWrapStatus(t *testing.T) {
	assert.NoError(t, WrapStatus(nil, 500, 0))

	cause := errors.New("boom")
	err := WrapStatus(cause, 502, 0)
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 502, ai.StatusCodeOf(err))
	assert.ErrorIs(t, err, cause)

	err = WrapStatus(cause, 400, 2*time.Second)
	assert.True(t, ai.IsTransient(err))
	assert.Equal(t, 2*time.Second, ai.RetryAfterOf(err))

	assert.True(t, ai.IsUserInput(WrapStatus(cause, 422, 0)))
	assert.True(t, ai.IsPermanent(WrapStatus(cause, 401, 0)))
}

func TestParseRetryAfter(t *testing.T) {
	assert.Zero(t, ParseRetryAfter(nil))

	resp := &http.Response{Header: http.Header{}}
	assert.Zero(t, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "7")
	assert.Equal(t, 7*time.Second, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", "soon")
	assert.Zero(t, ParseRetryAfter(resp))

	resp.Header.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
	assert.Greater(t, ParseRetryAfter(resp), 50*time.Minute)
}
