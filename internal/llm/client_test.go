package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/viral-factory/internal/errs"
)

func TestClassifyErrorTransient(t *testing.T) {
	cases := []error{
		errors.New("googleapi: Error 429: rate limit exceeded"),
		errors.New("googleapi: Error 503: service unavailable"),
		errors.New("request quota exhausted"),
		context.DeadlineExceeded,
	}
	for _, cause := range cases {
		classified := classifyError(cause)
		var tpe *errs.TransientProviderError
		assert.True(t, errors.As(classified, &tpe), "%v should classify as transient", cause)
		assert.True(t, errs.IsRetryable(classified))
	}
}

func TestClassifyErrorHardFailurePassesThrough(t *testing.T) {
	cause := errors.New("googleapi: Error 400: invalid argument")
	classified := classifyError(cause)

	var tpe *errs.TransientProviderError
	assert.False(t, errors.As(classified, &tpe))
	assert.ErrorIs(t, classified, cause)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), DefaultConfig(), "")

	var ce *errs.ConfigurationError
	assert.True(t, errors.As(err, &ce))
}
