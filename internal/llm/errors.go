package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrCredentialMissing is returned before any network call when no API key
	// is configured for the selected provider.
	ErrCredentialMissing = errors.New("generation API key not found in environment")

	// ErrNoModelAvailable is returned when every candidate model fails its probe.
	ErrNoModelAvailable = errors.New("all candidate models failed, check API key and quota")
)

type ErrorKind int

const (
	ErrKindTransient ErrorKind = iota
	ErrKindRateLimited
	ErrKindModelNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case ErrKindRateLimited:
		return "rate_limited"
	case ErrKindModelNotFound:
		return "model_not_found"
	default:
		return "transient"
	}
}

// ProviderError is the typed classification of a generation API failure.
// Provider clients classify at the boundary (status codes where available,
// message matching as a fallback) so that callers never inspect error text.
type ProviderError struct {
	Kind  ErrorKind
	Model string
	// RetryAfter is the server-suggested wait before retrying, zero if the
	// provider gave no hint.
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("model %s: %s: %v", e.Model, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// GenerationExhaustedError indicates a stage failed every attempt of its
// retry budget.
type GenerationExhaustedError struct {
	Stage string
}

func (e *GenerationExhaustedError) Error() string {
	return fmt.Sprintf("failed to generate %s after retries", e.Stage)
}

var retryHintPattern = regexp.MustCompile(`retry in (\d+\.?\d*)s`)

// ParseRetryHint extracts a server-suggested retry delay embedded in an error
// message, e.g. "... please retry in 49s".
func ParseRetryHint(msg string) (time.Duration, bool) {
	match := retryHintPattern.FindStringSubmatch(msg)
	if match == nil {
		return 0, false
	}
	secs, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}

// Classify converts an arbitrary provider error into a ProviderError by
// matching well-known markers in its message. Clients that see HTTP status
// codes directly should classify from those instead and only fall back to
// this for transport-level failures.
func Classify(model string, err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}

	msg := err.Error()
	classified := &ProviderError{Kind: ErrKindTransient, Model: model, Err: err}

	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "RESOURCE_EXHAUSTED"),
		strings.Contains(strings.ToLower(msg), "quota"):
		classified.Kind = ErrKindRateLimited
		if hint, ok := ParseRetryHint(msg); ok {
			classified.RetryAfter = hint
		}
	case strings.Contains(msg, "404"), strings.Contains(msg, "NOT_FOUND"):
		classified.Kind = ErrKindModelNotFound
	}

	return classified
}
