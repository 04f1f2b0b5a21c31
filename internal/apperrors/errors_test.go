package apperrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigErrorIsInvalidConfig(t *testing.T) {
	err := fmt.Errorf("startup: %w", NewConfigError("OPENAI_API_KEY", "is required"))

	assert.True(t, IsConfig(err))
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestTransientWrapping(t *testing.T) {
	base := errors.New("429 too many requests")
	err := Transient("embed", base)

	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, base)
	assert.Nil(t, Transient("embed", nil))
	assert.False(t, IsTransient(base))
}

func TestIsRetryableStatus(t *testing.T) {
	for code, want := range map[int]bool{200: false, 400: false, 401: false, 408: true, 429: true, 500: true, 503: true} {
		assert.Equal(t, want, IsRetryableStatus(code), "code %d", code)
	}
}

func TestIsNetworkError(t *testing.T) {
	assert.True(t, IsNetworkError(context.DeadlineExceeded))
	assert.False(t, IsNetworkError(context.Canceled))
	assert.False(t, IsNetworkError(nil))
	assert.False(t, IsNetworkError(errors.New("bad request")))
}
