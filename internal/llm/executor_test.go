package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	responses []response
	calls     int
	models    []string
	requests  []Request
}

type response struct {
	text string
	err  error
}

func (f *fakeClient) Generate(ctx context.Context, model string, req Request) (string, error) {
	f.models = append(f.models, model)
	f.requests = append(f.requests, req)

	i := f.calls
	f.calls++
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i].text, f.responses[i].err
}

func rateLimited(model string, retryAfter time.Duration) error {
	return &ProviderError{Kind: ErrKindRateLimited, Model: model, RetryAfter: retryAfter, Err: errors.New("429 too many requests")}
}

func newTestExecutor(client Client) (*Executor, *[]time.Duration) {
	exec := NewExecutor(client)
	sleeps := new([]time.Duration)
	exec.sleep = func(ctx context.Context, d time.Duration) {
		*sleeps = append(*sleeps, d)
	}
	return exec, sleeps
}

func TestExecutorBackoffGrowsAcrossRateLimits(t *testing.T) {
	client := &fakeClient{responses: []response{{err: rateLimited("model-a", 0)}}}
	exec, sleeps := newTestExecutor(client)

	var progress []string
	_, err := exec.Generate(context.Background(), "model-a", "summary", Request{Instruction: "do it"}, func(msg string) {
		progress = append(progress, msg)
	})

	var exhausted *GenerationExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, "summary", exhausted.Stage)

	assert.Equal(t, 3, client.calls)
	// Wait is the current base scaled by the attempt number, and the base
	// grows after every rate-limit event.
	assert.Equal(t, []time.Duration{5 * time.Second, 20 * time.Second, 45 * time.Second}, *sleeps)

	require.Len(t, progress, 3)
	assert.Equal(t, "Rate limit hit on model-a. Waiting 5s...", progress[0])
	assert.Equal(t, "Rate limit hit on model-a. Waiting 20s...", progress[1])
	assert.Equal(t, "Rate limit hit on model-a. Waiting 45s...", progress[2])
}

func TestExecutorHonorsServerRetryHint(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: rateLimited("model-a", 49 * time.Second)},
		{text: "done"},
	}}
	exec, sleeps := newTestExecutor(client)

	text, err := exec.Generate(context.Background(), "model-a", "summary", Request{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", text)

	// Hinted wait plus the safety buffer replaces the computed backoff.
	assert.Equal(t, []time.Duration{51 * time.Second}, *sleeps)
}

func TestExecutorRetriesTransientErrors(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: errors.New("connection reset by peer")},
		{text: "recovered"},
	}}
	exec, sleeps := newTestExecutor(client)

	var progress []string
	text, err := exec.Generate(context.Background(), "model-a", "critique", Request{}, func(msg string) {
		progress = append(progress, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)

	assert.Equal(t, []time.Duration{2 * time.Second}, *sleeps)
	assert.Empty(t, progress, "transient retries should not surface progress messages")
}

func TestExecutorModelNotFoundIsFatal(t *testing.T) {
	client := &fakeClient{responses: []response{
		{err: &ProviderError{Kind: ErrKindModelNotFound, Model: "model-a", Err: errors.New("404 model not found")}},
	}}
	exec, sleeps := newTestExecutor(client)

	_, err := exec.Generate(context.Background(), "model-a", "summary", Request{}, nil)
	require.Error(t, err)

	var exhausted *GenerationExhaustedError
	assert.False(t, errors.As(err, &exhausted), "not-found should fail immediately, not exhaust retries")
	assert.Equal(t, 1, client.calls)
	assert.Empty(t, *sleeps)
}

func TestExecutorStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	client := &fakeClient{responses: []response{{err: rateLimited("model-a", 0)}}}
	exec := NewExecutor(client)
	exec.sleep = func(ctx context.Context, d time.Duration) {
		cancel()
	}

	_, err := exec.Generate(ctx, "model-a", "summary", Request{}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.calls)
}
