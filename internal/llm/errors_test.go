package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRetryHint(t *testing.T) {
	hint, ok := ParseRetryHint("quota exceeded, please retry in 49s")
	require.True(t, ok)
	assert.Equal(t, 49*time.Second, hint)

	hint, ok = ParseRetryHint("retry in 3.5s")
	require.True(t, ok)
	assert.Equal(t, 3500*time.Millisecond, hint)

	_, ok = ParseRetryHint("service unavailable")
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	perr := Classify("model-a", errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED, retry in 12s"))
	assert.Equal(t, ErrKindRateLimited, perr.Kind)
	assert.Equal(t, 12*time.Second, perr.RetryAfter)

	perr = Classify("model-a", errors.New("Quota exceeded for requests"))
	assert.Equal(t, ErrKindRateLimited, perr.Kind)
	assert.Equal(t, time.Duration(0), perr.RetryAfter)

	perr = Classify("model-a", errors.New("googleapi: Error 404: model not found NOT_FOUND"))
	assert.Equal(t, ErrKindModelNotFound, perr.Kind)

	perr = Classify("model-a", errors.New("connection reset by peer"))
	assert.Equal(t, ErrKindTransient, perr.Kind)
}

func TestClassifyPassesThroughProviderErrors(t *testing.T) {
	original := &ProviderError{Kind: ErrKindRateLimited, Model: "model-a", RetryAfter: 7 * time.Second, Err: errors.New("429")}

	perr := Classify("model-b", original)
	assert.Same(t, original, perr)
}
