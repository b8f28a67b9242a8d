package llm

import (
	"context"
	"fmt"
)

// Request is a single generation request: an optional context block followed
// by an instruction block, sent as separate content parts.
type Request struct {
	Context     string
	Instruction string
	// System is the system instruction applied to the request.
	System string
	// JSONOutput asks the provider for strict JSON-framed output.
	JSONOutput bool
	// MaxOutputTokens caps the response size when > 0. Used by model probes
	// to keep their cost minimal.
	MaxOutputTokens int
}

// Client is a generation API client for one provider. Implementations must
// return *ProviderError for failures so callers can branch on the error kind
// without inspecting message text.
type Client interface {
	Generate(ctx context.Context, model string, req Request) (string, error)
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewClient creates a provider client by name. The API key is required for
// every provider; its absence is a fatal configuration error surfaced before
// any network call.
func NewClient(provider, apiKey string) (Client, error) {
	if apiKey == "" {
		return nil, ErrCredentialMissing
	}

	switch provider {
	case ProviderGemini, "":
		return NewGeminiClient(apiKey), nil
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", provider)
	}
}
