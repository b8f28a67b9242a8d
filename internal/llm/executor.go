package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultAttempts       = 3
	DefaultBaseDelay      = 5 * time.Second
	DefaultDelayGrowth    = 5 * time.Second
	DefaultTransientDelay = 2 * time.Second
	DefaultRetryBuffer    = 2 * time.Second
)

// Executor wraps a single generation request with bounded retries and
// rate-limit backoff. Rate-limit waits honor the server's retry hint plus a
// safety buffer when one is present; otherwise the wait is the base delay
// scaled by the attempt number, with the base growing after every rate-limit
// event so repeated throttling backs off monotonically.
type Executor struct {
	client Client

	attempts       int
	baseDelay      time.Duration
	delayGrowth    time.Duration
	transientDelay time.Duration
	retryBuffer    time.Duration

	// sleep is injectable for tests.
	sleep func(ctx context.Context, d time.Duration)
}

func NewExecutor(client Client) *Executor {
	return &Executor{
		client:         client,
		attempts:       DefaultAttempts,
		baseDelay:      DefaultBaseDelay,
		delayGrowth:    DefaultDelayGrowth,
		transientDelay: DefaultTransientDelay,
		retryBuffer:    DefaultRetryBuffer,
		sleep:          wait,
	}
}

func wait(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// Generate runs one generation request against the chosen model. Rate-limit
// waits are reported through onProgress before each suspension; exactly one
// notification is emitted per rate-limit retry. A mid-run model-not-found
// error is fatal immediately since the selector already verified the model.
func (e *Executor) Generate(ctx context.Context, model, stage string, req Request, onProgress func(string)) (string, error) {
	delay := e.baseDelay

	for attempt := 0; attempt < e.attempts; attempt++ {
		text, err := e.client.Generate(ctx, model, req)
		if err == nil {
			return text, nil
		}

		slog.Error("error generating content", "stage", stage, "attempt", attempt+1, "max_attempts", e.attempts, "error", err)

		perr := Classify(model, err)
		switch perr.Kind {
		case ErrKindRateLimited:
			waitFor := delay * time.Duration(attempt+1)
			if perr.RetryAfter > 0 {
				waitFor = perr.RetryAfter + e.retryBuffer
			}

			if onProgress != nil {
				onProgress(fmt.Sprintf("Rate limit hit on %s. Waiting %ds...", model, int(waitFor.Seconds())))
			}
			e.sleep(ctx, waitFor)
			delay += e.delayGrowth

		case ErrKindModelNotFound:
			return "", fmt.Errorf("model %s not found during execution, selector and executor disagree: %w", model, err)

		default:
			e.sleep(ctx, e.transientDelay)
		}

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", &GenerationExhaustedError{Stage: stage}
}
