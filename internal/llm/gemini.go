package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient talks to the Google Generative Language REST API. Using the
// REST surface directly gives us HTTP status codes for error classification
// instead of matching on SDK error strings.
type GeminiClient struct {
	client *resty.Client
	apiKey string
}

var _ Client = (*GeminiClient)(nil)

func NewGeminiClient(apiKey string) *GeminiClient {
	return &GeminiClient{
		client: resty.New().SetBaseURL(geminiBaseURL),
		apiKey: apiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens  int    `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

func (g *GeminiClient) Generate(ctx context.Context, model string, req Request) (string, error) {
	var parts []geminiPart
	if req.Context != "" {
		parts = append(parts, geminiPart{Text: req.Context})
	}
	parts = append(parts, geminiPart{Text: req.Instruction})

	body := geminiRequest{
		Contents: []geminiContent{{Parts: parts}},
	}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if req.MaxOutputTokens > 0 || req.JSONOutput {
		cfg := &geminiGenerationConfig{MaxOutputTokens: req.MaxOutputTokens}
		if req.JSONOutput {
			cfg.ResponseMimeType = "application/json"
		}
		body.GenerationConfig = cfg
	}

	var result geminiResponse
	var apiErr geminiErrorResponse

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/models/%s:generateContent", model))
	if err != nil {
		return "", &ProviderError{Kind: ErrKindTransient, Model: model, Err: err}
	}

	if resp.IsError() {
		return "", g.classify(model, resp.StatusCode(), &apiErr)
	}

	if len(result.Candidates) == 0 {
		return "", &ProviderError{
			Kind:  ErrKindTransient,
			Model: model,
			Err:   fmt.Errorf("response contained no candidates"),
		}
	}

	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

func (g *GeminiClient) classify(model string, status int, apiErr *geminiErrorResponse) *ProviderError {
	perr := &ProviderError{
		Kind:  ErrKindTransient,
		Model: model,
		Err:   fmt.Errorf("%s (HTTP %d): %s", apiErr.Error.Status, status, apiErr.Error.Message),
	}

	switch status {
	case http.StatusTooManyRequests:
		perr.Kind = ErrKindRateLimited
		perr.RetryAfter = retryDelayFrom(apiErr)
	case http.StatusNotFound:
		perr.Kind = ErrKindModelNotFound
	}
	return perr
}

func retryDelayFrom(apiErr *geminiErrorResponse) time.Duration {
	for _, detail := range apiErr.Error.Details {
		if !strings.HasSuffix(detail.Type, "RetryInfo") || detail.RetryDelay == "" {
			continue
		}
		if d, err := time.ParseDuration(detail.RetryDelay); err == nil {
			return d
		}
	}
	if hint, ok := ParseRetryHint(apiErr.Error.Message); ok {
		return hint
	}
	return 0
}
